// Package simulator is the engine surface used by the breadboard editor:
// a component registry that can be stepped in time and queried for its
// equivalent inductance.
//
// A Simulator is not safe for concurrent use. Callers serialise access.
package simulator

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/ThePyProgrammer/breadboards/internal/consts"
	"github.com/ThePyProgrammer/breadboards/internal/logging"
	"github.com/ThePyProgrammer/breadboards/pkg/analysis"
	"github.com/ThePyProgrammer/breadboards/pkg/circuit"
	"github.com/ThePyProgrammer/breadboards/pkg/device"
	"github.com/ThePyProgrammer/breadboards/pkg/matrix"
)

// Result holds node voltages by label and component currents by ID.
type Result = analysis.Result

type Simulator struct {
	circuit   *circuit.Circuit
	transient *analysis.Transient
	testOmega float64
	backend   matrix.Backend
	logger    *slog.Logger
}

type Option func(*Simulator)

// WithTimeStep sets the transient step in seconds. Non-positive values keep
// the 1 ms default.
func WithTimeStep(dt float64) Option {
	return func(s *Simulator) { s.transient.SetTimeStep(dt) }
}

// WithTestOmega sets the angular frequency in rad/s used by
// CalculateEquivalentInductance. Non-positive values keep 1000 rad/s.
func WithTestOmega(omega float64) Option {
	return func(s *Simulator) {
		if omega > 0 {
			s.testOmega = omega
		}
	}
}

func WithBackend(backend matrix.Backend) Option {
	return func(s *Simulator) {
		s.backend = backend
		s.transient.Backend = backend
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
			s.transient.Logger = logger
		}
	}
}

func New(opts ...Option) *Simulator {
	ckt := circuit.New()
	s := &Simulator{
		circuit:   ckt,
		transient: analysis.NewTransient(consts.DefaultTimeStep, 0, matrix.BackendDense, nil),
		testOmega: consts.DefaultTestOmega,
		backend:   matrix.BackendDense,
		logger:    logging.Discard(),
	}
	// Setup only rejects a nil circuit.
	_ = s.transient.Setup(ckt)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddComponent registers a component and returns its ID. An empty ID is
// replaced by a fresh UUID. Adding an ID that already exists replaces that
// component in place and clears its transient state.
func (s *Simulator) AddComponent(desc device.Descriptor) string {
	if desc.ID == "" {
		desc.ID = uuid.NewString()
	}
	if s.circuit.Add(desc) {
		s.logger.Debug("component replaced, state reset", "id", desc.ID)
	}
	return desc.ID
}

// RemoveComponent deletes a component and its state. It reports whether the
// ID was registered.
func (s *Simulator) RemoveComponent(id string) bool {
	return s.circuit.Remove(id)
}

// Clear removes every component, discards all state and rewinds time.
func (s *Simulator) Clear() {
	s.circuit.Clear()
	s.transient.Reset()
}

// Components returns the registered components in insertion order.
func (s *Simulator) Components() []device.Descriptor {
	return s.circuit.Components()
}

func (s *Simulator) Time() float64      { return s.transient.Time() }
func (s *Simulator) TimeStep() float64  { return s.transient.TimeStep() }
func (s *Simulator) TestOmega() float64 { return s.testOmega }

// SetTimeStep changes the transient step for subsequent steps. Non-positive
// values are ignored.
func (s *Simulator) SetTimeStep(dt float64) { s.transient.SetTimeStep(dt) }

// SetTestOmega changes the equivalent-inductance test frequency. Non-positive
// values are ignored.
func (s *Simulator) SetTestOmega(omega float64) { WithTestOmega(omega)(s) }

// Backend is the linear solver used by every analysis of this simulator.
func (s *Simulator) Backend() matrix.Backend { return s.backend }

// StepTransient advances time by one step and returns the new solution.
func (s *Simulator) StepTransient() Result {
	return s.transient.Step()
}

// StepTransientN advances n steps and returns the last solution.
func (s *Simulator) StepTransientN(n int) Result {
	return s.transient.StepN(n)
}

// CalculateEquivalentInductance returns the inductance seen by the first
// voltage source, negative when the circuit is capacitive, or nil when it
// cannot be determined. Time and transient state are untouched.
func (s *Simulator) CalculateEquivalentInductance() *float64 {
	return analysis.EquivalentInductance(s.circuit.Components(), s.testOmega, s.backend, s.logger)
}

// Validate reports malformed components and floating nodes. The simulator
// runs regardless of what it reports.
func (s *Simulator) Validate() []circuit.Issue {
	return circuit.Validate(s.circuit.Components())
}

// Circuit exposes the underlying registry for analyses that run on it.
func (s *Simulator) Circuit() *circuit.Circuit {
	return s.circuit
}
