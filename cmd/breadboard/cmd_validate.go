package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ThePyProgrammer/breadboards/pkg/circuit"
	"github.com/ThePyProgrammer/breadboards/pkg/netlist"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Report malformed components and floating nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := netlist.LoadFile(args[0])
			if err != nil {
				return err
			}
			issues := circuit.Validate(data.Components)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				if issues == nil {
					issues = []circuit.Issue{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"issues": issues,
					"count":  len(issues),
				})
			}

			if len(issues) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Circuit is valid - no issues found")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Found %d issue(s):\n", len(issues))
			for _, issue := range issues {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", issue)
			}
			return nil
		},
	}
}
