package device

import (
	"github.com/ThePyProgrammer/breadboards/pkg/matrix"
	"github.com/ThePyProgrammer/breadboards/pkg/util"
)

type Inductor struct {
	BaseDevice
	state *State
}

var _ TimeDependent = (*Inductor)(nil)

func NewInductor(id string, nodes []int, value float64, state *State) *Inductor {
	if state == nil {
		state = &State{}
	}
	return &Inductor{
		BaseDevice: BaseDevice{
			ID:    id,
			Nodes: nodes,
			Value: value,
		},
		state: state,
	}
}

func (l *Inductor) GetType() Kind { return KindInductor }

// Stamp loads the backward-Euler companion: geq = dt/L in parallel with the
// previous branch current flowing from A to B.
func (l *Inductor) Stamp(m matrix.DeviceMatrix[float64], status *CircuitStatus) error {
	n1, n2 := l.Nodes[0], l.Nodes[1]

	geq := 1.0 / (l.Value * util.BackwardEulerCoeff(status.TimeStep))
	stampAdmittance(m, n1, n2, geq)
	stampCurrent(m, n1, n2, -l.state.PrevIndCurrent)
	return nil
}

// StampAC loads y = -j/(ωL).
func (l *Inductor) StampAC(m matrix.DeviceMatrix[complex128], status *CircuitStatus) error {
	stampAdmittance(m, l.Nodes[0], l.Nodes[1], complex(0, -1.0/(status.Omega*l.Value)))
	return nil
}

func (l *Inductor) UpdateState(voltages []float64, status *CircuitStatus) float64 {
	vd := l.VoltageDiff(voltages)
	current := l.state.PrevIndCurrent + vd/(l.Value*util.BackwardEulerCoeff(status.TimeStep))
	l.state.PrevIndCurrent = current
	return current
}
