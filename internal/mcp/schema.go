// Package mcp exposes a breadboard simulator over the Model Context Protocol.
package mcp

import (
	"github.com/ThePyProgrammer/breadboards/pkg/device"
)

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

type AddComponentInput struct {
	ID        string  `json:"id,omitempty" jsonschema:"Component id. A random id is assigned when empty. An existing id is replaced in place."`
	Type      string  `json:"type" jsonschema:"One of R, C, L, V_DC, V_AC"`
	NodeA     string  `json:"nodeA" jsonschema:"Label of the first terminal's node. The label gnd is ground."`
	NodeB     string  `json:"nodeB" jsonschema:"Label of the second terminal's node"`
	Value     float64 `json:"value" jsonschema:"Ohms, farads, henries or volts depending on type"`
	Frequency float64 `json:"frequency,omitempty" jsonschema:"V_AC frequency in Hz, 60 when omitted"`
}

type AddComponentOutput struct {
	ID       string   `json:"id" jsonschema:"Id of the registered component"`
	Replaced bool     `json:"replaced" jsonschema:"Whether an existing component was replaced"`
	Count    int      `json:"count" jsonschema:"Number of registered components"`
	Warnings []string `json:"warnings,omitempty" jsonschema:"Validation issues of the circuit after the change"`
}

type RemoveComponentInput struct {
	ID string `json:"id" jsonschema:"Id of the component to remove"`
}

type RemoveComponentOutput struct {
	Removed bool `json:"removed" jsonschema:"Whether the id was registered"`
	Count   int  `json:"count" jsonschema:"Number of registered components"`
}

type ClearOutput struct {
	Message string `json:"message"`
}

type ListComponentsOutput struct {
	Components []device.Descriptor `json:"components"`
	Count      int                 `json:"count"`
	Time       float64             `json:"time" jsonschema:"Simulated time in seconds"`
}

type StepTransientInput struct {
	Steps int `json:"steps,omitempty" jsonschema:"Number of time steps to advance, the configured steps per frame when omitted"`
}

type StepTransientOutput struct {
	Time     float64            `json:"time" jsonschema:"Simulated time after the last step in seconds"`
	Voltages map[string]float64 `json:"voltages" jsonschema:"Node voltages by label"`
	Currents map[string]float64 `json:"currents" jsonschema:"Component currents by id"`
}

type EquivalentInductanceOutput struct {
	Inductance *float64 `json:"inductance" jsonschema:"Equivalent inductance in henries seen by the first voltage source, negative when capacitive, null when undetermined"`
	Display    string   `json:"display" jsonschema:"Human readable form"`
	Omega      float64  `json:"omega" jsonschema:"Test angular frequency in rad/s"`
}

type ValidateOutput struct {
	Issues  []IssueOutput `json:"issues"`
	Count   int           `json:"count"`
	Message string        `json:"message"`
}

type IssueOutput struct {
	ID      string `json:"id,omitempty"`
	Node    string `json:"node,omitempty"`
	Message string `json:"message"`
}

type SweepImpedanceInput struct {
	Sweep  string  `json:"sweep" jsonschema:"DEC, OCT or LIN"`
	Points int     `json:"points" jsonschema:"Number of frequency points"`
	FStart float64 `json:"fstart" jsonschema:"Start frequency in Hz"`
	FStop  float64 `json:"fstop" jsonschema:"Stop frequency in Hz"`
}

type SweepImpedanceOutput struct {
	Points []SweepPoint `json:"points"`
}

// SweepPoint values are null where the impedance could not be determined.
type SweepPoint struct {
	Frequency  float64  `json:"frequency"`
	Magnitude  *float64 `json:"magnitude"`
	Phase      *float64 `json:"phase" jsonschema:"Degrees"`
	Inductance *float64 `json:"inductance"`
}

type LoadNetlistInput struct {
	Source string `json:"source" jsonschema:"Circuit text"`
	Format string `json:"format,omitempty" jsonschema:"netlist (default) or yaml"`
}

type LoadNetlistOutput struct {
	Title     string   `json:"title,omitempty"`
	Count     int      `json:"count"`
	TimeStep  float64  `json:"timeStep" jsonschema:"Transient step in seconds after the load"`
	TestOmega float64  `json:"testOmega" jsonschema:"Equivalent inductance test frequency in rad/s after the load"`
	Warnings  []string `json:"warnings,omitempty"`
}
