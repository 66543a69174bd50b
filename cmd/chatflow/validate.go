package main

import (
	"github.com/meikuraledutech/chatflow"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a flow file for errors",
	Long:  `Loads a flow from a JSON or YAML file and reports every problem the validator finds. Exits 1 when the flow is invalid.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := chatflow.ReadFlowFile(args[0])
		if err != nil {
			return err
		}
		report := chatflow.Validate(f)
		w := cmd.OutOrStdout()
		if report.IsValid {
			printOK(w, "Flow is valid (%d nodes, %d edges)", len(f.Nodes), len(f.Edges))
			return nil
		}
		for _, msg := range report.Errors {
			printFail(w, "%s", msg)
		}
		return &chatflow.InvalidFlowError{Report: report}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
