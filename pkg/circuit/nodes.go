package circuit

import (
	"github.com/ThePyProgrammer/breadboards/internal/consts"
	"github.com/ThePyProgrammer/breadboards/pkg/device"
)

// NodeMap assigns every node label an MNA index. Labels[0] is ground.
type NodeMap struct {
	Index  map[string]int
	Labels []string
}

// NumNodes is the number of non-ground nodes.
func (m *NodeMap) NumNodes() int {
	if len(m.Labels) == 0 {
		return 0
	}
	return len(m.Labels) - 1
}

// Lookup returns the index of a label. Unknown labels are ground.
func (m *NodeMap) Lookup(label string) int {
	return m.Index[label]
}

// Ground returns the label resolved to index 0, or "" for an empty map.
func (m *NodeMap) Ground() string {
	if len(m.Labels) == 0 {
		return ""
	}
	return m.Labels[0]
}

// SelectGround picks the reference node: the literal ground label when any
// component touches it, otherwise node A of the first component.
func SelectGround(components []device.Descriptor) string {
	if len(components) == 0 {
		return ""
	}
	for _, comp := range components {
		if comp.NodeA == consts.GroundLabel || comp.NodeB == consts.GroundLabel {
			return consts.GroundLabel
		}
	}
	return components[0].NodeA
}

// ResolveNodes numbers the remaining labels from 1 in first-seen order,
// node A before node B for each component.
func ResolveNodes(components []device.Descriptor) *NodeMap {
	nodes := &NodeMap{Index: make(map[string]int)}
	if len(components) == 0 {
		return nodes
	}

	ground := SelectGround(components)
	nodes.Index[ground] = 0
	nodes.Labels = append(nodes.Labels, ground)

	for _, comp := range components {
		for _, label := range []string{comp.NodeA, comp.NodeB} {
			if _, exists := nodes.Index[label]; exists {
				continue
			}
			nodes.Index[label] = len(nodes.Labels)
			nodes.Labels = append(nodes.Labels, label)
		}
	}
	return nodes
}
