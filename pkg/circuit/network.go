package circuit

import (
	"fmt"

	"github.com/ThePyProgrammer/breadboards/pkg/device"
	"github.com/ThePyProgrammer/breadboards/pkg/matrix"
)

// Network is a component list bound to node indices and branch unknowns.
// Voltage sources own the unknowns N+1..N+M in list order.
type Network struct {
	Nodes   *NodeMap
	Devices []device.Device
	Sources []*device.VoltageSource
}

// Bind creates devices for the components. states supplies the transient
// history by component ID and may be nil.
func Bind(components []device.Descriptor, states map[string]*device.State) (*Network, error) {
	nodes := ResolveNodes(components)
	net := &Network{
		Nodes:   nodes,
		Devices: make([]device.Device, 0, len(components)),
	}

	branchIdx := nodes.NumNodes() + 1
	for _, comp := range components {
		dev, err := device.New(comp, nodes.Lookup(comp.NodeA), nodes.Lookup(comp.NodeB), states[comp.ID])
		if err != nil {
			return nil, fmt.Errorf("binding network: %w", err)
		}
		if v, ok := dev.(*device.VoltageSource); ok {
			v.SetBranchIndex(branchIdx)
			branchIdx++
			net.Sources = append(net.Sources, v)
		}
		net.Devices = append(net.Devices, dev)
	}
	return net, nil
}

// Size is the number of MNA unknowns.
func (n *Network) Size() int {
	return n.Nodes.NumNodes() + len(n.Sources)
}

// BuildTransient stamps the companion-model system for one time step.
func BuildTransient(net *Network, backend matrix.Backend, status *device.CircuitStatus) (matrix.System[float64], error) {
	sys, err := matrix.New[float64](backend, net.Size())
	if err != nil {
		return nil, fmt.Errorf("creating matrix: %w", err)
	}
	for _, dev := range net.Devices {
		if err := dev.Stamp(sys, status); err != nil {
			return nil, fmt.Errorf("stamping device %s: %w", dev.GetID(), err)
		}
	}
	return sys, nil
}

// BuildAC stamps the phasor system at status.Omega with status.Excited as
// the only driven source.
func BuildAC(net *Network, backend matrix.Backend, status *device.CircuitStatus) (matrix.System[complex128], error) {
	sys, err := matrix.New[complex128](backend, net.Size())
	if err != nil {
		return nil, fmt.Errorf("creating matrix: %w", err)
	}
	for _, dev := range net.Devices {
		ac, ok := dev.(device.ACElement)
		if !ok {
			return nil, fmt.Errorf("device %s has no phasor model", dev.GetID())
		}
		if err := ac.StampAC(sys, status); err != nil {
			return nil, fmt.Errorf("stamping device %s: %w", dev.GetID(), err)
		}
	}
	return sys, nil
}
