package main

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

func printOK(w io.Writer, format string, args ...any) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w, out.String("✔ "+fmt.Sprintf(format, args...)).Foreground(out.Color("#22c55e")))
}

func printFail(w io.Writer, format string, args ...any) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w, out.String("✘ "+fmt.Sprintf(format, args...)).Foreground(out.Color("#ef4444")))
}
