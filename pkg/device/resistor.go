package device

import (
	"math"

	"github.com/ThePyProgrammer/breadboards/internal/consts"
	"github.com/ThePyProgrammer/breadboards/pkg/matrix"
)

type Resistor struct {
	BaseDevice
}

var _ TimeDependent = (*Resistor)(nil)

func NewResistor(id string, nodes []int, value float64) *Resistor {
	return &Resistor{
		BaseDevice: BaseDevice{
			ID:    id,
			Nodes: nodes,
			Value: value,
		},
	}
}

func (r *Resistor) GetType() Kind { return KindResistor }

// Resistance is the stamped value, floored to keep 1/R finite.
func (r *Resistor) Resistance() float64 {
	return math.Max(r.Value, consts.ResistanceFloor)
}

func (r *Resistor) Stamp(m matrix.DeviceMatrix[float64], status *CircuitStatus) error {
	stampAdmittance(m, r.Nodes[0], r.Nodes[1], 1.0/r.Resistance())
	return nil
}

func (r *Resistor) StampAC(m matrix.DeviceMatrix[complex128], status *CircuitStatus) error {
	stampAdmittance(m, r.Nodes[0], r.Nodes[1], complex(1.0/r.Resistance(), 0))
	return nil
}

// UpdateState has no state to carry; it returns V/R.
func (r *Resistor) UpdateState(voltages []float64, status *CircuitStatus) float64 {
	return r.VoltageDiff(voltages) / r.Resistance()
}
