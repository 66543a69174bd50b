package main

import (
	"fmt"

	"github.com/meikuraledutech/chatflow"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Print a flow as a Mermaid diagram",
	Long:  `Renders the flow in Mermaid syntax. Paste the output into a Mermaid live editor or a Markdown code block.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := chatflow.ReadFlowFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), chatflow.Mermaid(f))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
