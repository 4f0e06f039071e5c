package circuit

import (
	"fmt"
	"math"

	"github.com/ThePyProgrammer/breadboards/internal/consts"
	"github.com/ThePyProgrammer/breadboards/pkg/device"
)

// Issue is a problem found in a component list. The engine still simulates
// lists with issues.
type Issue struct {
	ID      string `json:"id,omitempty"`
	Node    string `json:"node,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	switch {
	case i.ID != "" && i.Node != "":
		return fmt.Sprintf("%s (node %s): %s", i.ID, i.Node, i.Message)
	case i.ID != "":
		return fmt.Sprintf("%s: %s", i.ID, i.Message)
	case i.Node != "":
		return fmt.Sprintf("node %s: %s", i.Node, i.Message)
	}
	return i.Message
}

// Validate reports malformed components and floating nodes, in list order.
func Validate(components []device.Descriptor) []Issue {
	var issues []Issue
	seen := make(map[string]bool)
	degree := make(map[string]int)
	var order []string

	for _, comp := range components {
		report := func(format string, args ...any) {
			issues = append(issues, Issue{ID: comp.ID, Message: fmt.Sprintf(format, args...)})
		}

		if comp.ID == "" {
			report("component has no id")
		} else if seen[comp.ID] {
			report("duplicate id")
		}
		seen[comp.ID] = true

		kind, err := device.ParseKind(string(comp.Type))
		if err != nil {
			report("%v", err)
		}

		if comp.NodeA == "" || comp.NodeB == "" {
			report("terminal without node")
		} else if comp.NodeA == comp.NodeB {
			report("both terminals on node %s", comp.NodeA)
		}

		switch kind {
		case device.KindResistor, device.KindCapacitor, device.KindInductor:
			if !(comp.Value > 0) || math.IsInf(comp.Value, 0) {
				report("value must be positive and finite, got %g", comp.Value)
			}
		case device.KindACSource:
			if comp.Frequency < 0 || math.IsNaN(comp.Frequency) || math.IsInf(comp.Frequency, 0) {
				report("frequency must be positive, got %g", comp.Frequency)
			}
			fallthrough
		case device.KindDCSource:
			if math.IsNaN(comp.Value) || math.IsInf(comp.Value, 0) {
				report("value must be finite, got %g", comp.Value)
			}
		}

		for _, label := range []string{comp.NodeA, comp.NodeB} {
			if label == "" {
				continue
			}
			if degree[label] == 0 {
				order = append(order, label)
			}
			degree[label]++
		}
	}

	ground := SelectGround(components)
	for _, label := range order {
		if degree[label] == 1 && label != ground && label != consts.GroundLabel {
			issues = append(issues, Issue{Node: label, Message: "floating node, only one terminal connected"})
		}
	}
	return issues
}
