package mcp

import (
	"context"
	"fmt"
	"math"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ThePyProgrammer/breadboards/pkg/analysis"
	"github.com/ThePyProgrammer/breadboards/pkg/circuit"
	"github.com/ThePyProgrammer/breadboards/pkg/device"
	"github.com/ThePyProgrammer/breadboards/pkg/netlist"
	"github.com/ThePyProgrammer/breadboards/pkg/util"
)

// maxSteps bounds one step_transient call.
const maxSteps = 100000

func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "add_component",
		Description: "Place a resistor, capacitor, inductor or voltage source between two nodes",
	}, s.handleAddComponent)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "remove_component",
		Description: "Remove a component and its transient state",
	}, s.handleRemoveComponent)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "clear",
		Description: "Remove every component and rewind simulated time to zero",
	}, s.handleClear)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "list_components",
		Description: "List the placed components in insertion order",
	}, s.handleListComponents)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "step_transient",
		Description: "Advance the transient simulation and return node voltages and component currents",
	}, s.handleStepTransient)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "equivalent_inductance",
		Description: "Equivalent inductance seen by the first voltage source at the test frequency",
	}, s.handleEquivalentInductance)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "validate",
		Description: "Report malformed components and floating nodes",
	}, s.handleValidate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sweep_impedance",
		Description: "Impedance seen by the first voltage source over a frequency range",
	}, s.handleSweepImpedance)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "load_netlist",
		Description: "Replace the circuit with one described as a netlist or YAML document. A .tran step and .omega in the document also set the transient step and test frequency",
	}, s.handleLoadNetlist)
}

func (s *Server) handleAddComponent(ctx context.Context, req *sdk.CallToolRequest, args AddComponentInput) (*sdk.CallToolResult, AddComponentOutput, error) {
	kind, err := device.ParseKind(args.Type)
	if err != nil {
		return nil, AddComponentOutput{}, err
	}
	if math.IsNaN(args.Value) || math.IsInf(args.Value, 0) {
		return nil, AddComponentOutput{}, fmt.Errorf("value must be finite")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, replaced := s.sim.Circuit().Component(args.ID)
	id := s.sim.AddComponent(device.Descriptor{
		ID:        args.ID,
		Type:      kind,
		NodeA:     args.NodeA,
		NodeB:     args.NodeB,
		Value:     args.Value,
		Frequency: args.Frequency,
	})
	s.logger.Debug("component added", "id", id, "type", kind, "replaced", replaced)

	return nil, AddComponentOutput{
		ID:       id,
		Replaced: replaced,
		Count:    len(s.sim.Components()),
		Warnings: issueStrings(s.sim.Validate()),
	}, nil
}

func (s *Server) handleRemoveComponent(ctx context.Context, req *sdk.CallToolRequest, args RemoveComponentInput) (*sdk.CallToolResult, RemoveComponentOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.sim.RemoveComponent(args.ID)
	return nil, RemoveComponentOutput{
		Removed: removed,
		Count:   len(s.sim.Components()),
	}, nil
}

func (s *Server) handleClear(ctx context.Context, req *sdk.CallToolRequest, args EmptyInput) (*sdk.CallToolResult, ClearOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sim.Clear()
	return nil, ClearOutput{Message: "circuit cleared"}, nil
}

func (s *Server) handleListComponents(ctx context.Context, req *sdk.CallToolRequest, args EmptyInput) (*sdk.CallToolResult, ListComponentsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	components := s.sim.Components()
	return nil, ListComponentsOutput{
		Components: components,
		Count:      len(components),
		Time:       s.sim.Time(),
	}, nil
}

func (s *Server) handleStepTransient(ctx context.Context, req *sdk.CallToolRequest, args StepTransientInput) (*sdk.CallToolResult, StepTransientOutput, error) {
	steps := args.Steps
	if steps == 0 {
		steps = s.stepsPerFrame
	}
	if steps < 0 || steps > maxSteps {
		return nil, StepTransientOutput{}, fmt.Errorf("steps must be between 1 and %d, got %d", maxSteps, steps)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.sim.StepTransientN(steps)
	return nil, StepTransientOutput{
		Time:     s.sim.Time(),
		Voltages: res.Voltages,
		Currents: res.Currents,
	}, nil
}

func (s *Server) handleEquivalentInductance(ctx context.Context, req *sdk.CallToolRequest, args EmptyInput) (*sdk.CallToolResult, EquivalentInductanceOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.sim.CalculateEquivalentInductance()
	return nil, EquivalentInductanceOutput{
		Inductance: l,
		Display:    util.FormatInductance(l),
		Omega:      s.sim.TestOmega(),
	}, nil
}

func (s *Server) handleValidate(ctx context.Context, req *sdk.CallToolRequest, args EmptyInput) (*sdk.CallToolResult, ValidateOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issues := s.sim.Validate()
	out := ValidateOutput{
		Issues: make([]IssueOutput, len(issues)),
		Count:  len(issues),
	}
	for i, issue := range issues {
		out.Issues[i] = IssueOutput{ID: issue.ID, Node: issue.Node, Message: issue.Message}
	}

	if len(issues) == 0 {
		out.Message = "Circuit is valid - no issues found"
	} else {
		out.Message = fmt.Sprintf("Found %d issue(s)", len(issues))
	}
	return nil, out, nil
}

func (s *Server) handleSweepImpedance(ctx context.Context, req *sdk.CallToolRequest, args SweepImpedanceInput) (*sdk.CallToolResult, SweepImpedanceOutput, error) {
	if args.Points > maxSteps {
		return nil, SweepImpedanceOutput{}, fmt.Errorf("at most %d points, got %d", maxSteps, args.Points)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sweep := analysis.NewImpedanceSweep(args.FStart, args.FStop, args.Points, args.Sweep, s.sim.Backend(), s.logger)
	if err := sweep.Setup(s.sim.Circuit()); err != nil {
		return nil, SweepImpedanceOutput{}, err
	}
	if err := sweep.Execute(); err != nil {
		return nil, SweepImpedanceOutput{}, err
	}

	results := sweep.GetResults()
	out := SweepImpedanceOutput{Points: make([]SweepPoint, len(results["FREQ"]))}
	for i, freq := range results["FREQ"] {
		out.Points[i] = SweepPoint{
			Frequency:  freq,
			Magnitude:  finitePtr(results["Z_MAG"][i]),
			Phase:      finitePtr(results["Z_PHASE"][i]),
			Inductance: finitePtr(results["L_EQ"][i]),
		}
	}
	return nil, out, nil
}

func (s *Server) handleLoadNetlist(ctx context.Context, req *sdk.CallToolRequest, args LoadNetlistInput) (*sdk.CallToolResult, LoadNetlistOutput, error) {
	var (
		data *netlist.NetlistData
		err  error
	)
	switch strings.ToLower(args.Format) {
	case "", "netlist", "spice":
		data, err = netlist.Parse(args.Source)
	case "yaml", "yml":
		data, err = netlist.ParseYAML([]byte(args.Source))
	default:
		return nil, LoadNetlistOutput{}, fmt.Errorf("unknown format %q", args.Format)
	}
	if err != nil {
		return nil, LoadNetlistOutput{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sim.Clear()
	for _, comp := range data.Components {
		s.sim.AddComponent(comp)
	}
	if data.Has(netlist.AnalysisTRAN) {
		s.sim.SetTimeStep(data.TranParam.TStep)
	}
	s.sim.SetTestOmega(data.Omega)

	return nil, LoadNetlistOutput{
		Title:     data.Title,
		Count:     len(s.sim.Components()),
		TimeStep:  s.sim.TimeStep(),
		TestOmega: s.sim.TestOmega(),
		Warnings:  issueStrings(s.sim.Validate()),
	}, nil
}

func issueStrings(issues []circuit.Issue) []string {
	if len(issues) == 0 {
		return nil
	}
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.String()
	}
	return out
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
