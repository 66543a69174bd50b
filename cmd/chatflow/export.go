package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meikuraledutech/chatflow"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export a valid flow as a versioned JSON document",
	Long:  `Validates the flow and writes chatbot-flow-<date>.json into the output directory. Nothing is written when the flow is invalid.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("out")

		f, err := chatflow.ReadFlowFile(args[0])
		if err != nil {
			return err
		}
		doc, err := chatflow.Export(f, time.Now())
		var invalid *chatflow.InvalidFlowError
		if errors.As(err, &invalid) {
			for _, msg := range invalid.Report.Errors {
				printFail(cmd.OutOrStdout(), "%s", msg)
			}
			return err
		}
		if err != nil {
			return err
		}

		path := filepath.Join(dir, doc.FileName())
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer out.Close()
		if err := doc.Encode(out); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}

		printOK(cmd.OutOrStdout(), "Exported %d nodes and %d edges to %s",
			doc.Metadata.NodeCount, doc.Metadata.EdgeCount, path)
		return out.Close()
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("out", "o", ".", "Directory to write the document into")
}
