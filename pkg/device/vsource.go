package device

import (
	"math"

	"github.com/ThePyProgrammer/breadboards/internal/consts"
	"github.com/ThePyProgrammer/breadboards/pkg/matrix"
)

type SourceType int

const (
	DC SourceType = iota
	SIN
)

type VoltageSource struct {
	BaseDevice
	vtype SourceType
	freq  float64
	// Branch index for MNA
	branchIdx int
}

var _ TimeDependent = (*VoltageSource)(nil)

func NewDCVoltageSource(id string, nodes []int, value float64) *VoltageSource {
	return &VoltageSource{
		BaseDevice: BaseDevice{
			ID:    id,
			Nodes: nodes,
			Value: value,
		},
		vtype: DC,
	}
}

// NewACVoltageSource creates value*sin(2*pi*freq*t). A zero frequency falls
// back to the mains default.
func NewACVoltageSource(id string, nodes []int, value, freq float64) *VoltageSource {
	if freq == 0 {
		freq = consts.DefaultACFrequency
	}
	return &VoltageSource{
		BaseDevice: BaseDevice{
			ID:    id,
			Nodes: nodes,
			Value: value,
		},
		vtype: SIN,
		freq:  freq,
	}
}

func (v *VoltageSource) GetType() Kind {
	if v.vtype == SIN {
		return KindACSource
	}
	return KindDCSource
}

func (v *VoltageSource) GetVoltage(t float64) float64 {
	switch v.vtype {
	case SIN:
		return v.Value * math.Sin(2.0*math.Pi*v.freq*t)
	default:
		return v.Value
	}
}

func (v *VoltageSource) Stamp(m matrix.DeviceMatrix[float64], status *CircuitStatus) error {
	stampBranch(m, v.Nodes[0], v.Nodes[1], v.branchIdx, 1.0)
	m.AddRHS(v.branchIdx, v.GetVoltage(status.Time))
	return nil
}

// StampAC drives the source under test with 1∠0 and shorts every other
// source.
func (v *VoltageSource) StampAC(m matrix.DeviceMatrix[complex128], status *CircuitStatus) error {
	stampBranch(m, v.Nodes[0], v.Nodes[1], v.branchIdx, complex(1.0, 0))
	if v.ID == status.Excited {
		m.AddRHS(v.branchIdx, complex(1.0, 0))
	}
	return nil
}

// UpdateState returns the branch current unknown.
func (v *VoltageSource) UpdateState(solution []float64, status *CircuitStatus) float64 {
	if v.branchIdx <= 0 || v.branchIdx >= len(solution) {
		return 0
	}
	return solution[v.branchIdx]
}

func (v *VoltageSource) BranchIndex() int {
	return v.branchIdx
}

func (v *VoltageSource) SetBranchIndex(idx int) {
	v.branchIdx = idx
}

// stampBranch couples the branch-current unknown to both terminals:
// v(n1) - v(n2) = E and the branch current leaves n1, enters n2.
func stampBranch[T matrix.Field](m matrix.DeviceMatrix[T], n1, n2, bIdx int, one T) {
	if n1 != 0 {
		m.AddElement(bIdx, n1, one)
		m.AddElement(n1, bIdx, one)
	}
	if n2 != 0 {
		m.AddElement(bIdx, n2, -one)
		m.AddElement(n2, bIdx, -one)
	}
}
