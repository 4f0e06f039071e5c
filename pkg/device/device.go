package device

import (
	"fmt"

	"github.com/ThePyProgrammer/breadboards/pkg/matrix"
)

type Kind string

const (
	KindResistor  Kind = "R"
	KindCapacitor Kind = "C"
	KindInductor  Kind = "L"
	KindDCSource  Kind = "V_DC"
	KindACSource  Kind = "V_AC"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindResistor, KindCapacitor, KindInductor, KindDCSource, KindACSource:
		return k, nil
	}
	return "", fmt.Errorf("unknown component type %q", s)
}

// IsSource reports whether the kind adds a branch-current unknown.
func (k Kind) IsSource() bool {
	return k == KindDCSource || k == KindACSource
}

// Unit is the SI unit of the component value.
func (k Kind) Unit() string {
	switch k {
	case KindResistor:
		return "ohm"
	case KindCapacitor:
		return "F"
	case KindInductor:
		return "H"
	default:
		return "V"
	}
}

// Descriptor is a placed component as handed over by the editor.
type Descriptor struct {
	ID        string  `json:"id" yaml:"id"`
	Type      Kind    `json:"type" yaml:"type"`
	NodeA     string  `json:"nodeA" yaml:"nodeA"`
	NodeB     string  `json:"nodeB" yaml:"nodeB"`
	Value     float64 `json:"value" yaml:"value"`
	Frequency float64 `json:"frequency,omitempty" yaml:"frequency,omitempty"`
}

// State is the per-element history carried between transient steps.
type State struct {
	PrevCapVoltage float64
	PrevIndCurrent float64
}

type AnalysisMode int

const (
	TransientAnalysis AnalysisMode = iota
	ACAnalysis
)

type CircuitStatus struct {
	Time     float64
	TimeStep float64
	Mode     AnalysisMode
	Omega    float64 // angular test frequency (AC)
	Excited  string  // ID of the source driven with 1∠0 (AC)
}

type Device interface {
	GetID() string
	GetType() Kind
	GetNodes() []int
	GetValue() float64
	Stamp(matrix matrix.DeviceMatrix[float64], status *CircuitStatus) error
}

type ACElement interface {
	StampAC(matrix matrix.DeviceMatrix[complex128], status *CircuitStatus) error
}

// TimeDependent devices update their state from a solved step and report
// their branch current.
type TimeDependent interface {
	UpdateState(voltages []float64, status *CircuitStatus) float64
}

type BaseDevice struct {
	ID    string
	Nodes []int
	Value float64
}

func (d *BaseDevice) GetID() string     { return d.ID }
func (d *BaseDevice) GetNodes() []int   { return d.Nodes }
func (d *BaseDevice) GetValue() float64 { return d.Value }

// VoltageDiff returns v(nodeA) - v(nodeB) from a 1-based solution.
func (d *BaseDevice) VoltageDiff(voltages []float64) float64 {
	return nodeVoltage(voltages, d.Nodes[0]) - nodeVoltage(voltages, d.Nodes[1])
}

func nodeVoltage(voltages []float64, idx int) float64 {
	if idx <= 0 || idx >= len(voltages) {
		return 0
	}
	return voltages[idx]
}

// stampAdmittance adds the four-quadrant two-terminal stamp.
func stampAdmittance[T matrix.Field](m matrix.DeviceMatrix[T], n1, n2 int, y T) {
	if n1 != 0 {
		m.AddElement(n1, n1, y)
		if n2 != 0 {
			m.AddElement(n1, n2, -y)
		}
	}
	if n2 != 0 {
		m.AddElement(n2, n2, y)
		if n1 != 0 {
			m.AddElement(n2, n1, -y)
		}
	}
}

// stampCurrent injects i into n1 and withdraws it from n2.
func stampCurrent(m matrix.DeviceMatrix[float64], n1, n2 int, i float64) {
	if n1 != 0 {
		m.AddRHS(n1, i)
	}
	if n2 != 0 {
		m.AddRHS(n2, -i)
	}
}

// New builds a device for a descriptor whose nodes are already resolved.
// state may be nil for devices without history.
func New(desc Descriptor, n1, n2 int, state *State) (Device, error) {
	nodes := []int{n1, n2}
	switch desc.Type {
	case KindResistor:
		return NewResistor(desc.ID, nodes, desc.Value), nil
	case KindCapacitor:
		return NewCapacitor(desc.ID, nodes, desc.Value, state), nil
	case KindInductor:
		return NewInductor(desc.ID, nodes, desc.Value, state), nil
	case KindDCSource:
		return NewDCVoltageSource(desc.ID, nodes, desc.Value), nil
	case KindACSource:
		return NewACVoltageSource(desc.ID, nodes, desc.Value, desc.Frequency), nil
	}
	return nil, fmt.Errorf("component %s: unknown type %q", desc.ID, desc.Type)
}
