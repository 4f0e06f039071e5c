package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ThePyProgrammer/breadboards/pkg/analysis"
	"github.com/ThePyProgrammer/breadboards/pkg/netlist"
	"github.com/ThePyProgrammer/breadboards/pkg/util"
	"github.com/ThePyProgrammer/breadboards/pkg/waveform"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run the analyses of a netlist or YAML circuit",
		Long: `Run the .tran and .ac analyses named in a circuit file.

Files ending in .yaml or .yml are read as YAML documents, anything else
as a SPICE-style netlist.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			data, err := netlist.LoadFile(args[0])
			if err != nil {
				return err
			}
			if !data.Has(netlist.AnalysisTRAN) && !data.Has(netlist.AnalysisAC) {
				return fmt.Errorf("%s: no .tran or .ac analysis", args[0])
			}

			sim := newSimulator(cfg, logger, data)
			logger.Debug("circuit loaded", "title", data.Title, "components", len(data.Components), "solver", sim.Backend())

			jsonOut, _ := cmd.Flags().GetBool("json")
			plotPath, _ := cmd.Flags().GetString("plot")
			signals, _ := cmd.Flags().GetStringSlice("signals")
			out := cmd.OutOrStdout()
			report := map[string]any{"title": data.Title}

			if data.Has(netlist.AnalysisTRAN) {
				tran := analysis.NewTransient(data.TranParam.TStep, data.TranParam.TStop, sim.Backend(), logger)
				if err := tran.Setup(sim.Circuit()); err != nil {
					return err
				}
				if err := tran.Execute(); err != nil {
					return fmt.Errorf("transient analysis: %w", err)
				}
				results := tran.GetResults()
				if jsonOut {
					report["transient"] = jsonSeries(results)
				} else {
					printTransient(out, results)
				}
				if plotPath != "" {
					opts := waveform.Options{Title: data.Title, Signals: signals}
					if err := waveform.Save(results, plotPath, opts); err != nil {
						return fmt.Errorf("plot: %w", err)
					}
					logger.Info("waveform written", "path", plotPath)
				}
			}

			if data.Has(netlist.AnalysisAC) {
				p := data.ACParam
				sweep := analysis.NewImpedanceSweep(p.FStart, p.FStop, p.Points, p.Sweep, sim.Backend(), logger)
				if err := sweep.Setup(sim.Circuit()); err != nil {
					return err
				}
				if err := sweep.Execute(); err != nil {
					return fmt.Errorf("impedance sweep: %w", err)
				}
				results := sweep.GetResults()
				if jsonOut {
					report["impedance"] = jsonSeries(results)
				} else {
					printImpedance(out, results)
				}
				if plotPath != "" && !data.Has(netlist.AnalysisTRAN) {
					opts := waveform.Options{Title: data.Title, X: "FREQ", Signals: []string{"Z_MAG"}, LogX: true}
					if err := waveform.Save(results, plotPath, opts); err != nil {
						return fmt.Errorf("plot: %w", err)
					}
					logger.Info("impedance plot written", "path", plotPath)
				}
			}

			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return nil
		},
	}

	cmd.Flags().String("plot", "", "Write a chart of the results (png, svg or pdf by extension)")
	cmd.Flags().StringSlice("signals", nil, "Series to plot, every node voltage when empty")
	return cmd
}

// jsonSeries replaces non-finite samples with null.
func jsonSeries(results map[string][]float64) map[string][]*float64 {
	out := make(map[string][]*float64, len(results))
	for name, values := range results {
		series := make([]*float64, len(values))
		for i, v := range values {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				series[i] = &v
			}
		}
		out[name] = series
	}
	return out
}

func seriesNames(results map[string][]float64, prefix string) []string {
	var names []string
	for name := range results {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func printTransient(w io.Writer, results map[string][]float64) {
	times := results["TIME"]
	fmt.Fprintf(w, "\nTransient Analysis Results (%d time points):\n", len(times))
	fmt.Fprintln(w, "Time        Node Voltages        Branch Currents")
	fmt.Fprintln(w, "------------------------------------------------")

	voltageNames := seriesNames(results, "V(")
	currentNames := seriesNames(results, "I(")

	for i, t := range times {
		fmt.Fprintf(w, "%9s  ", util.FormatValueFactor(t, "s"))
		for _, name := range voltageNames {
			fmt.Fprintf(w, "%s=%s  ", name, util.FormatValueFactor(results[name][i], "V"))
		}
		for _, name := range currentNames {
			fmt.Fprintf(w, "%s=%s  ", name, util.FormatValueFactor(results[name][i], "A"))
		}
		fmt.Fprintln(w)
	}
}

func printImpedance(w io.Writer, results map[string][]float64) {
	freqs := results["FREQ"]
	fmt.Fprintf(w, "\nImpedance Sweep Results (%d frequency points):\n", len(freqs))
	fmt.Fprintln(w, "Frequency      |Z| (ohm)  Phase (deg)  Equivalent L")
	fmt.Fprintln(w, "---------------------------------------------------------")

	for i, freq := range freqs {
		mag, phase := results["Z_MAG"][i], results["Z_PHASE"][i]
		fmt.Fprintf(w, "%-13s", util.FormatFrequency(freq))
		if math.IsNaN(mag) {
			fmt.Fprintln(w, "  undetermined")
			continue
		}
		l := results["L_EQ"][i]
		fmt.Fprintf(w, "  %s   %s       %s\n", util.FormatMagnitude(mag), util.FormatPhase(phase), util.FormatInductance(&l))
	}
}
