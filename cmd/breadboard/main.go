package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ThePyProgrammer/breadboards/internal/config"
	"github.com/ThePyProgrammer/breadboards/internal/logging"
	"github.com/ThePyProgrammer/breadboards/pkg/netlist"
	"github.com/ThePyProgrammer/breadboards/pkg/simulator"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "breadboard",
		Short: "Breadboard circuit simulator",
		Long: `breadboard simulates R, C, L and voltage source circuits.

It steps transient analyses, sweeps the impedance seen by a source and
reports the equivalent inductance of a network. The same engine can be
driven by an agent over MCP.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.breadboard/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug, trace, warn, error")
	rootCmd.PersistentFlags().String("solver", "", "Matrix backend: dense, sparse or gonum")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newInductanceCmd(),
		newValidateCmd(),
		newConvertCmd(),
		newServeCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "breadboard version %s\n", version)
			}
		},
	}
}

// loadSettings resolves configuration (file, environment, then flags) and
// builds the logger. Logs go to stderr so stdout stays clean for results
// and the MCP transport.
func loadSettings(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if solver, _ := cmd.Flags().GetString("solver"); solver != "" {
		cfg.Simulation.Solver = solver
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, newLogger(cfg, cmd.ErrOrStderr()), nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if cfg.Logging.Format == "json" {
		return logging.NewJSONLogger(cfg.Logging.Level, w)
	}
	return logging.NewLogger(cfg.Logging.Level, w)
}

// newSimulator loads a circuit file into a fresh simulator. A nonzero
// .omega in the file overrides the configured test frequency.
func newSimulator(cfg *config.Config, logger *slog.Logger, data *netlist.NetlistData) *simulator.Simulator {
	omega := cfg.Simulation.TestOmega
	if data.Omega > 0 {
		omega = data.Omega
	}

	sim := simulator.New(
		simulator.WithTimeStep(cfg.Simulation.TimeStep),
		simulator.WithTestOmega(omega),
		simulator.WithBackend(cfg.Backend()),
		simulator.WithLogger(logger),
	)
	for _, comp := range data.Components {
		sim.AddComponent(comp)
	}

	for _, issue := range sim.Validate() {
		logger.Warn("circuit issue", "issue", issue.String())
	}
	return sim
}
