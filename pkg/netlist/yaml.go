package netlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ThePyProgrammer/breadboards/pkg/device"
)

// Document is the YAML form of a circuit.
type Document struct {
	Title      string              `yaml:"title,omitempty"`
	Components []device.Descriptor `yaml:"components"`
	Analysis   AnalysisSpec        `yaml:"analysis,omitempty"`
}

type AnalysisSpec struct {
	Tran  *TranSpec `yaml:"tran,omitempty"`
	AC    *ACSpec   `yaml:"ac,omitempty"`
	Omega float64   `yaml:"omega,omitempty"`
}

type TranSpec struct {
	TStep float64 `yaml:"tstep"`
	TStop float64 `yaml:"tstop"`
}

type ACSpec struct {
	Sweep  string  `yaml:"sweep"`
	Points int     `yaml:"points"`
	FStart float64 `yaml:"fstart"`
	FStop  float64 `yaml:"fstop"`
}

// ParseYAML reads a YAML circuit document. Components without an id get a
// random one.
func ParseYAML(data []byte) (*NetlistData, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	netlistData := &NetlistData{
		Title:      doc.Title,
		Components: make([]device.Descriptor, 0, len(doc.Components)),
		Omega:      doc.Analysis.Omega,
	}
	for i, comp := range doc.Components {
		if _, err := device.ParseKind(string(comp.Type)); err != nil {
			return nil, fmt.Errorf("%w: component %d: %v", ErrSyntax, i, err)
		}
		if comp.ID == "" {
			comp.ID = uuid.NewString()
		}
		netlistData.Components = append(netlistData.Components, comp)
	}

	if tran := doc.Analysis.Tran; tran != nil {
		if tran.TStep <= 0 || tran.TStop <= 0 {
			return nil, fmt.Errorf("%w: tstep and tstop must be positive", ErrSyntax)
		}
		netlistData.TranParam.TStep = tran.TStep
		netlistData.TranParam.TStop = tran.TStop
		netlistData.Analyses = append(netlistData.Analyses, AnalysisTRAN)
	}
	if ac := doc.Analysis.AC; ac != nil {
		netlistData.ACParam.Sweep = strings.ToUpper(ac.Sweep)
		netlistData.ACParam.Points = ac.Points
		netlistData.ACParam.FStart = ac.FStart
		netlistData.ACParam.FStop = ac.FStop
		netlistData.Analyses = append(netlistData.Analyses, AnalysisAC)
	}
	return netlistData, nil
}

// MarshalYAML renders a parsed circuit as a YAML document.
func MarshalYAML(netlistData *NetlistData) ([]byte, error) {
	var doc Document
	doc.Title = netlistData.Title
	doc.Components = netlistData.Components
	doc.Analysis.Omega = netlistData.Omega
	if netlistData.Has(AnalysisTRAN) {
		doc.Analysis.Tran = &TranSpec{
			TStep: netlistData.TranParam.TStep,
			TStop: netlistData.TranParam.TStop,
		}
	}
	if netlistData.Has(AnalysisAC) {
		doc.Analysis.AC = &ACSpec{
			Sweep:  netlistData.ACParam.Sweep,
			Points: netlistData.ACParam.Points,
			FStart: netlistData.ACParam.FStart,
			FStop:  netlistData.ACParam.FStop,
		}
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("encoding circuit: %w", err)
	}
	return data, nil
}

// LoadFile reads a circuit from disk. .yaml and .yml files are YAML
// documents, anything else is a netlist.
func LoadFile(path string) (*NetlistData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading circuit file: %w", err)
	}

	var netlistData *NetlistData
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		netlistData, err = ParseYAML(data)
	default:
		netlistData, err = Parse(string(data))
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return netlistData, nil
}
