package circuit

import (
	"strings"
	"testing"

	"github.com/ThePyProgrammer/breadboards/pkg/device"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		components []device.Descriptor
		want       []string // substrings, in order
	}{
		{
			name: "clean divider",
			components: []device.Descriptor{
				comp("V1", device.KindDCSource, "in", "gnd", 10),
				comp("R1", device.KindResistor, "in", "out", 1000),
				comp("R2", device.KindResistor, "out", "gnd", 1000),
			},
		},
		{
			name: "floating node",
			components: []device.Descriptor{
				comp("V1", device.KindDCSource, "a", "gnd", 5),
				comp("R1", device.KindResistor, "a", "gnd", 10),
				comp("R2", device.KindResistor, "a", "dangling", 10),
			},
			want: []string{"node dangling: floating"},
		},
		{
			name: "bad values",
			components: []device.Descriptor{
				comp("R1", device.KindResistor, "a", "gnd", 0),
				comp("R1", device.KindCapacitor, "a", "gnd", 1e-6),
				comp("X1", "D", "a", "gnd", 1),
				comp("L1", device.KindInductor, "a", "a", 1),
			},
			want: []string{
				"R1: value must be positive",
				"R1: duplicate id",
				"X1: unknown component type",
				"L1: both terminals on node a",
			},
		},
		{
			name: "negative source frequency",
			components: []device.Descriptor{
				{ID: "V1", Type: device.KindACSource, NodeA: "a", NodeB: "gnd", Value: 5, Frequency: -1},
				comp("R1", device.KindResistor, "a", "gnd", 10),
			},
			want: []string{"V1: frequency must be positive"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Validate(tt.components)
			if len(issues) != len(tt.want) {
				t.Fatalf("Validate() = %v, want %d issues", issues, len(tt.want))
			}
			for i, want := range tt.want {
				if got := issues[i].String(); !strings.Contains(got, want) {
					t.Errorf("issue %d = %q, want substring %q", i, got, want)
				}
			}
		})
	}
}
