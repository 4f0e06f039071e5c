package device

import (
	"github.com/ThePyProgrammer/breadboards/pkg/matrix"
	"github.com/ThePyProgrammer/breadboards/pkg/util"
)

type Capacitor struct {
	BaseDevice
	state *State
}

var _ TimeDependent = (*Capacitor)(nil)

func NewCapacitor(id string, nodes []int, value float64, state *State) *Capacitor {
	if state == nil {
		state = &State{}
	}
	return &Capacitor{
		BaseDevice: BaseDevice{
			ID:    id,
			Nodes: nodes,
			Value: value,
		},
		state: state,
	}
}

func (c *Capacitor) GetType() Kind { return KindCapacitor }

// Stamp loads the backward-Euler companion: geq = C/dt in parallel with
// ieq = geq*v_prev flowing into node A.
func (c *Capacitor) Stamp(m matrix.DeviceMatrix[float64], status *CircuitStatus) error {
	n1, n2 := c.Nodes[0], c.Nodes[1]

	geq := c.Value * util.BackwardEulerCoeff(status.TimeStep)
	ieq := geq * c.state.PrevCapVoltage

	stampAdmittance(m, n1, n2, geq)
	stampCurrent(m, n1, n2, ieq)
	return nil
}

// StampAC loads y = jωC.
func (c *Capacitor) StampAC(m matrix.DeviceMatrix[complex128], status *CircuitStatus) error {
	stampAdmittance(m, c.Nodes[0], c.Nodes[1], complex(0, status.Omega*c.Value))
	return nil
}

func (c *Capacitor) UpdateState(voltages []float64, status *CircuitStatus) float64 {
	vd := c.VoltageDiff(voltages)
	current := c.Value * (vd - c.state.PrevCapVoltage) * util.BackwardEulerCoeff(status.TimeStep)
	c.state.PrevCapVoltage = vd
	return current
}
