package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThePyProgrammer/breadboards/internal/consts"
	"github.com/ThePyProgrammer/breadboards/internal/logging"
	"github.com/ThePyProgrammer/breadboards/pkg/circuit"
	"github.com/ThePyProgrammer/breadboards/pkg/device"
	"github.com/ThePyProgrammer/breadboards/pkg/matrix"
)

// Result is the solution of one transient step: node voltages by label and
// component currents by ID.
type Result struct {
	Voltages map[string]float64 `json:"voltages"`
	Currents map[string]float64 `json:"currents"`
}

func emptyResult() Result {
	return Result{
		Voltages: make(map[string]float64),
		Currents: make(map[string]float64),
	}
}

// Transient advances a circuit with fixed-step backward Euler.
type Transient struct {
	BaseAnalysis
	time     float64
	timeStep float64
	stopTime float64
}

func NewTransient(tStep, tStop float64, backend matrix.Backend, logger *slog.Logger) *Transient {
	if tStep <= 0 {
		tStep = consts.DefaultTimeStep
	}
	return &Transient{
		BaseAnalysis: *NewBaseAnalysis(backend, logger),
		timeStep:     tStep,
		stopTime:     tStop,
	}
}

func (tr *Transient) Setup(ckt *circuit.Circuit) error {
	if ckt == nil {
		return fmt.Errorf("circuit not set")
	}
	tr.Circuit = ckt
	return nil
}

// Execute steps until the stop time and records every step as V(label) and
// I(id) series.
func (tr *Transient) Execute() error {
	if tr.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}

	for tr.time < tr.stopTime {
		before := tr.time
		res := tr.Step()
		if tr.time == before {
			return fmt.Errorf("circuit has no unknowns")
		}

		solution := make(map[string]float64, len(res.Voltages)+len(res.Currents))
		for label, v := range res.Voltages {
			solution[fmt.Sprintf("V(%s)", label)] = v
		}
		for id, i := range res.Currents {
			solution[fmt.Sprintf("I(%s)", id)] = i
		}
		tr.StoreTimeResult(tr.time, solution)
	}
	return nil
}

func (tr *Transient) Time() float64     { return tr.time }
func (tr *Transient) TimeStep() float64 { return tr.timeStep }
func (tr *Transient) Reset()            { tr.time = 0 }

// SetTimeStep changes dt for the following steps. Non-positive values are
// ignored.
func (tr *Transient) SetTimeStep(dt float64) {
	if dt > 0 {
		tr.timeStep = dt
	}
}

// StepN performs n steps and returns the last solution. Each step sees the
// state written by the one before it.
func (tr *Transient) StepN(n int) Result {
	res := emptyResult()
	for range n {
		res = tr.Step()
	}
	return res
}

// Step solves the circuit at the current time, updates the companion state
// and advances time by one step. An unsolvable system yields zeros.
func (tr *Transient) Step() Result {
	if tr.Circuit == nil || tr.Circuit.Len() == 0 {
		return emptyResult()
	}

	net, err := circuit.Bind(tr.Circuit.Components(), tr.Circuit.States())
	if err != nil {
		tr.Logger.Debug("transient step skipped", "error", err)
		return emptyResult()
	}

	size := net.Size()
	if size == 0 {
		return emptyResult()
	}
	tr.Logger.Log(context.Background(), logging.LevelTrace, "transient step",
		"time", tr.time, "nodes", net.Nodes.NumNodes(), "sources", len(net.Sources))

	status := &device.CircuitStatus{
		Time:     tr.time,
		TimeStep: tr.timeStep,
		Mode:     device.TransientAnalysis,
	}
	solution := tr.solve(net, status)

	res := Result{
		Voltages: make(map[string]float64, len(net.Nodes.Labels)),
		Currents: make(map[string]float64, len(net.Devices)),
	}
	for idx, label := range net.Nodes.Labels {
		res.Voltages[label] = solution[idx]
	}
	// A promoted ground keeps its own label, gnd is reported too.
	if _, ok := res.Voltages[consts.GroundLabel]; !ok {
		res.Voltages[consts.GroundLabel] = 0
	}
	for _, dev := range net.Devices {
		if td, ok := dev.(device.TimeDependent); ok {
			res.Currents[dev.GetID()] = finiteOrZero(td.UpdateState(solution, status))
		}
	}

	tr.time += tr.timeStep
	return res
}

// solve returns a clamped 1-based solution of length size+1.
func (tr *Transient) solve(net *circuit.Network, status *device.CircuitStatus) []float64 {
	zero := make([]float64, net.Size()+1)

	sys, err := circuit.BuildTransient(net, tr.Backend, status)
	if err != nil {
		tr.Logger.Debug("transient build failed", "time", status.Time, "error", err)
		return zero
	}
	solution, err := sys.Solve()
	if err != nil {
		tr.Logger.Debug("transient system unsolvable", "time", status.Time, "error", err)
		return zero
	}
	for i := range solution {
		solution[i] = finiteOrZero(solution[i])
	}
	return solution
}
