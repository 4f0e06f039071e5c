package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ThePyProgrammer/breadboards/pkg/netlist"
	"github.com/ThePyProgrammer/breadboards/pkg/util"
)

func newInductanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inductance <file>",
		Short: "Print the equivalent inductance seen by the first voltage source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			data, err := netlist.LoadFile(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("omega") {
				data.Omega, _ = cmd.Flags().GetFloat64("omega")
			}

			sim := newSimulator(cfg, logger, data)
			l := sim.CalculateEquivalentInductance()

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"inductance": l,
					"display":    util.FormatInductance(l),
					"omega":      sim.TestOmega(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "L_eq = %s (omega = %g rad/s)\n", util.FormatInductance(l), sim.TestOmega())
			return nil
		},
	}

	cmd.Flags().Float64("omega", 0, "Test angular frequency in rad/s")
	return cmd
}
