package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ThePyProgrammer/breadboards/pkg/netlist"
)

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <netlist> [output.yaml]",
		Short: "Convert a circuit file to a YAML document",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := netlist.LoadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := netlist.MarshalYAML(data)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				_, err = cmd.OutOrStdout().Write(doc)
				return err
			}
			if err := os.WriteFile(args[1], doc, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[1], err)
			}
			return nil
		},
	}
}
