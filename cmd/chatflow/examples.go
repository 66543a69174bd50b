package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/meikuraledutech/chatflow"
	"github.com/spf13/cobra"
)

var examplesCmd = &cobra.Command{
	Use:   "examples [id]",
	Short: "List the built-in example flows",
	Long:  `Without an argument lists every example. With an id, shows the example and its diagram.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")

		var (
			md  string
			err error
		)
		if len(args) == 0 {
			md, err = examplesMarkdown()
		} else {
			md, err = exampleMarkdown(args[0])
		}
		if err != nil {
			return err
		}

		if raw {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			return err
		}
		out, err := r.Render(md)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(examplesCmd)
	examplesCmd.Flags().Bool("raw", false, "Print Markdown without rendering it")
}

func examplesMarkdown() (string, error) {
	examples, err := chatflow.Examples()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("# Example flows\n\n")
	b.WriteString("| ID | Title | Difficulty | Category |\n")
	b.WriteString("|----|-------|------------|----------|\n")
	for _, ex := range examples {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", ex.ID, ex.Title, ex.Difficulty, ex.Category)
	}
	return b.String(), nil
}

func exampleMarkdown(id string) (string, error) {
	ex, ok, err := chatflow.LookupExample(id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("unknown example %q", id)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", ex.Title, ex.Description)
	fmt.Fprintf(&b, "- **Difficulty:** %s\n- **Category:** %s\n- **Preview:** %s\n\n", ex.Difficulty, ex.Category, ex.Preview)
	fmt.Fprintf(&b, "```mermaid\n%s```\n", chatflow.Mermaid(ex.Flow))
	return b.String(), nil
}
