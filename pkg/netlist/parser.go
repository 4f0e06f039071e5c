package netlist

import (
	"bufio"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ThePyProgrammer/breadboards/internal/consts"
	"github.com/ThePyProgrammer/breadboards/pkg/device"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("netlist syntax error")

type AnalysisType int

const (
	AnalysisNone AnalysisType = iota
	AnalysisTRAN
	AnalysisAC
)

type NetlistData struct {
	Title      string              // Circuit title
	Components []device.Descriptor // Circuit elements in file order
	Analyses   []AnalysisType      // Requested analyses in file order
	Omega      float64             // test angular frequency for the equivalent-inductance test, 0 = default
	TranParam  struct {
		TStep float64 // timestep
		TStop float64 // stop time
	}
	ACParam struct {
		Sweep  string  // DEC, OCT, LIN
		FStart float64 // start frequency
		Points int     // number of points
		FStop  float64 // stop frequency
	}
}

// Has reports whether an analysis was requested.
func (n *NetlistData) Has(a AnalysisType) bool {
	for _, got := range n.Analyses {
		if got == a {
			return true
		}
	}
	return false
}

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"M":   1e-3,  // milli, as in SPICE
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var (
	valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)((?i:meg)|[TGMKkmunpf])?[a-zA-Z]*$`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Parse reads a SPICE-like netlist. The first line is the title. Lines
// starting with '*' are comments, text after a '*' elsewhere is ignored and
// lines starting with '+' continue the previous line.
func Parse(input string) (*NetlistData, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	netlistData := &NetlistData{}

	// Title or comment
	if scanner.Scan() {
		netlistData.Title = strings.TrimPrefix(scanner.Text(), "*")
		netlistData.Title = strings.TrimSpace(netlistData.Title)
	}

	var currentLine string
	lineNo, startLine := 1, 1
	flush := func() error {
		if currentLine == "" {
			return nil
		}
		if err := parseLine(netlistData, currentLine); err != nil {
			return fmt.Errorf("line %d: %w", startLine, err)
		}
		currentLine = ""
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Strip comments
		if idx := strings.Index(line, "*"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if len(line) == 0 {
			continue
		}

		if strings.HasPrefix(line, "+") { // Line continue
			if currentLine == "" {
				return nil, fmt.Errorf("line %d: %w: continuation without a line to continue", lineNo, ErrSyntax)
			}
			currentLine += " " + strings.TrimSpace(line[1:])
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		currentLine = line
		startLine = lineNo
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading netlist: %w", err)
	}

	// Process final line if exists
	if err := flush(); err != nil {
		return nil, err
	}
	return netlistData, nil
}

func parseLine(netlistData *NetlistData, line string) error {
	line = spaceRe.ReplaceAllString(line, " ")

	if strings.HasPrefix(line, ".") {
		return parseDotOperator(netlistData, line)
	}

	desc, err := parseElement(line)
	if err != nil {
		return err
	}
	netlistData.Components = append(netlistData.Components, *desc)
	return nil
}

// Parse .tran, .ac, .omega, .end
func parseDotOperator(netlistData *NetlistData, line string) error {
	var err error

	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ".end":

	case ".tran":
		if len(fields) < 3 {
			return fmt.Errorf("%w: insufficient tran parameters, need tstep and tstop", ErrSyntax)
		}
		netlistData.TranParam.TStep, err = ParseValue(fields[1])
		if err != nil {
			return fmt.Errorf("invalid tstep: %w", err)
		}
		netlistData.TranParam.TStop, err = ParseValue(fields[2])
		if err != nil {
			return fmt.Errorf("invalid tstop: %w", err)
		}
		if netlistData.TranParam.TStep <= 0 || netlistData.TranParam.TStop <= 0 {
			return fmt.Errorf("%w: tstep and tstop must be positive", ErrSyntax)
		}
		netlistData.Analyses = append(netlistData.Analyses, AnalysisTRAN)

	case ".ac":
		if len(fields) < 5 {
			return fmt.Errorf("%w: insufficient AC parameters, need sweep type, points, fstart, and fstop", ErrSyntax)
		}

		// DEC, OCT, LIN
		sweep := strings.ToUpper(fields[1])
		if sweep != "DEC" && sweep != "OCT" && sweep != "LIN" {
			return fmt.Errorf("%w: invalid sweep type: %s", ErrSyntax, fields[1])
		}
		netlistData.ACParam.Sweep = sweep

		netlistData.ACParam.Points, err = strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("%w: invalid points number: %v", ErrSyntax, err)
		}
		netlistData.ACParam.FStart, err = ParseValue(fields[3])
		if err != nil {
			return fmt.Errorf("invalid fstart: %w", err)
		}
		netlistData.ACParam.FStop, err = ParseValue(fields[4])
		if err != nil {
			return fmt.Errorf("invalid fstop: %w", err)
		}
		netlistData.Analyses = append(netlistData.Analyses, AnalysisAC)

	case ".omega":
		if len(fields) < 2 {
			return fmt.Errorf("%w: missing omega value", ErrSyntax)
		}
		netlistData.Omega, err = ParseValue(fields[1])
		if err != nil {
			return fmt.Errorf("invalid omega: %w", err)
		}
		if netlistData.Omega <= 0 {
			return fmt.Errorf("%w: omega must be positive", ErrSyntax)
		}

	default:
		return fmt.Errorf("%w: unsupported control line: %s", ErrSyntax, fields[0])
	}

	return nil
}

func parseElement(line string) (*device.Descriptor, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: invalid element format: %s", ErrSyntax, line)
	}

	desc := &device.Descriptor{
		ID:    fields[0],
		NodeA: nodeLabel(fields[1]),
		NodeB: nodeLabel(fields[2]),
	}

	switch strings.ToUpper(fields[0][:1]) {
	case "V":
		if err := parseVoltageSource(desc, fields[3:]); err != nil {
			return nil, fmt.Errorf("%s: %w", desc.ID, err)
		}
		return desc, nil

	case "R":
		desc.Type = device.KindResistor
	case "C":
		desc.Type = device.KindCapacitor
	case "L":
		desc.Type = device.KindInductor
	default:
		return nil, fmt.Errorf("%w: unsupported element %s", ErrSyntax, fields[0])
	}

	if len(fields) != 4 {
		return nil, fmt.Errorf("%w: %s takes two nodes and a value", ErrSyntax, desc.ID)
	}
	value, err := ParseValue(fields[3])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", desc.ID, err)
	}
	desc.Value = value
	return desc, nil
}

// nodeLabel maps the SPICE ground node 0 onto the ground label.
func nodeLabel(node string) string {
	if node == "0" {
		return consts.GroundLabel
	}
	return node
}

// parseVoltageSource accepts "DC v", a bare "v", "AC amplitude [freq]" and
// "SIN(0 amplitude freq)".
func parseVoltageSource(desc *device.Descriptor, fields []string) error {
	remaining := strings.Join(fields, " ")
	remaining = strings.ReplaceAll(remaining, "(", " ( ") // Append whitespace around parentheses
	remaining = strings.ReplaceAll(remaining, ")", " ) ")
	words := strings.Fields(remaining)

	var err error
	switch strings.ToUpper(words[0]) {
	case "DC":
		if len(words) < 2 {
			return fmt.Errorf("%w: missing DC value", ErrSyntax)
		}
		desc.Type = device.KindDCSource
		desc.Value, err = ParseValue(words[1])
		return err

	case "AC":
		if len(words) < 2 {
			return fmt.Errorf("%w: missing AC amplitude", ErrSyntax)
		}
		desc.Type = device.KindACSource
		desc.Value, err = ParseValue(words[1])
		if err != nil {
			return fmt.Errorf("invalid AC amplitude: %w", err)
		}
		if len(words) > 2 {
			desc.Frequency, err = ParseValue(words[2])
			if err != nil {
				return fmt.Errorf("invalid AC frequency: %w", err)
			}
		}
		return nil

	case "SIN":
		offset, amplitude, freq, phase, err := parseSinParams(strings.Trim(strings.Join(words[1:], " "), "() "))
		if err != nil {
			return err
		}
		if offset != 0 || phase != 0 {
			return fmt.Errorf("%w: SIN offset and phase are not supported", ErrSyntax)
		}
		desc.Type = device.KindACSource
		desc.Value = amplitude
		desc.Frequency = freq
		return nil

	default:
		desc.Type = device.KindDCSource
		desc.Value, err = ParseValue(words[0])
		if err != nil {
			return fmt.Errorf("%w: unsupported voltage source type: %s", ErrSyntax, words[0])
		}
		return nil
	}
}

// ParseValue - Parse value and factor. 1k -> 1000, 10uF -> 1e-5
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("%w: invalid value format: %s", ErrSyntax, val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	// factor
	factor := matches[2]
	if strings.EqualFold(factor, "meg") {
		factor = "meg"
	}
	if multiplier, ok := unitMap[factor]; ok {
		num *= multiplier
	}
	return num, nil
}

func parseSinParams(params string) (offset, amplitude, freq, phase float64, err error) {
	sinParams := strings.Fields(params)
	if len(sinParams) < 3 {
		return 0, 0, 0, 0, fmt.Errorf("%w: insufficient SIN parameters", ErrSyntax)
	}

	// DC offset
	offset, err = ParseValue(sinParams[0])
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid SIN offset: %w", err)
	}

	// Amplitude
	amplitude, err = ParseValue(sinParams[1])
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid SIN amplitude: %w", err)
	}

	// Frequency
	freq, err = ParseValue(sinParams[2])
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid SIN frequency: %w", err)
	}

	// Phase
	if len(sinParams) > 3 {
		phase, err = ParseValue(sinParams[3])
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("invalid SIN phase: %w", err)
		}
	}

	return offset, amplitude, freq, phase, nil
}
