package main

import (
	"github.com/spf13/cobra"

	"github.com/ThePyProgrammer/breadboards/internal/mcp"
	"github.com/ThePyProgrammer/breadboards/pkg/netlist"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve [file]",
		Aliases: []string{"mcp-server"},
		Short:   "Serve the simulator over MCP on stdio",
		Long: `Serve a simulator over the Model Context Protocol on stdin/stdout.

An optional circuit file is loaded before the first tool call.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			data := &netlist.NetlistData{}
			if len(args) == 1 {
				if data, err = netlist.LoadFile(args[0]); err != nil {
					return err
				}
			}

			server := mcp.NewServer(&mcp.Config{
				Name:          "breadboard",
				Version:       version,
				StepsPerFrame: cfg.Simulation.StepsPerFrame,
				Logger:        logger,
			}, newSimulator(cfg, logger, data))
			return server.Run(cmd.Context())
		},
	}
	return cmd
}
