package analysis

import (
	"fmt"
	"log/slog"
	"math"
	"math/cmplx"
	"strings"

	"github.com/ThePyProgrammer/breadboards/internal/consts"
	"github.com/ThePyProgrammer/breadboards/internal/logging"
	"github.com/ThePyProgrammer/breadboards/pkg/circuit"
	"github.com/ThePyProgrammer/breadboards/pkg/device"
	"github.com/ThePyProgrammer/breadboards/pkg/matrix"
)

// Impedance solves the phasor system at omega with the first voltage source
// driven by 1∠0 and returns the impedance it sees. ok is false when there is
// no source or the impedance cannot be determined.
func Impedance(components []device.Descriptor, omega float64, backend matrix.Backend, logger *slog.Logger) (z complex128, ok bool) {
	if logger == nil {
		logger = logging.Discard()
	}

	net, err := circuit.Bind(components, nil)
	if err != nil {
		logger.Debug("impedance analysis skipped", "error", err)
		return 0, false
	}
	if len(net.Sources) == 0 {
		return 0, false
	}
	src := net.Sources[0]

	sys, err := circuit.BuildAC(net, backend, &device.CircuitStatus{
		Mode:    device.ACAnalysis,
		Omega:   omega,
		Excited: src.GetID(),
	})
	if err != nil {
		logger.Debug("impedance build failed", "omega", omega, "error", err)
		return 0, false
	}
	solution, err := sys.Solve()
	if err != nil {
		logger.Debug("impedance system unsolvable", "omega", omega, "error", err)
		return 0, false
	}

	// The branch unknown flows into node A; the source delivers its negative.
	current := -solution[src.BranchIndex()]
	if current == 0 || !matrix.IsFinite(current) {
		return 0, false
	}
	z = 1 / current
	if !matrix.IsFinite(z) {
		return 0, false
	}
	return z, true
}

// EquivalentInductance converts the reactance seen by the first voltage
// source at omega into henries. A negative result means the circuit is net
// capacitive. It returns nil when there is nothing to measure. Transient
// state is neither read nor written.
func EquivalentInductance(components []device.Descriptor, omega float64, backend matrix.Backend, logger *slog.Logger) *float64 {
	if omega <= 0 || math.IsNaN(omega) || math.IsInf(omega, 0) {
		omega = consts.DefaultTestOmega
	}
	z, ok := Impedance(components, omega, backend, logger)
	if !ok {
		return nil
	}
	l := imag(z) / omega
	if math.IsNaN(l) || math.IsInf(l, 0) {
		return nil
	}
	return &l
}

// ImpedanceSweep repeats the single-source impedance measurement over a
// range of frequencies. Each point is an independent solve.
type ImpedanceSweep struct {
	BaseAnalysis
	startFreq   float64
	stopFreq    float64
	numPoints   int
	pointsType  string // "DEC", "OCT", "LIN"
	frequencies []float64
}

func NewImpedanceSweep(fStart, fStop float64, nPoints int, pType string, backend matrix.Backend, logger *slog.Logger) *ImpedanceSweep {
	return &ImpedanceSweep{
		BaseAnalysis: *NewBaseAnalysis(backend, logger),
		startFreq:    fStart,
		stopFreq:     fStop,
		numPoints:    nPoints,
		pointsType:   strings.ToUpper(pType),
	}
}

func (ac *ImpedanceSweep) Setup(ckt *circuit.Circuit) error {
	if ckt == nil {
		return fmt.Errorf("circuit not set")
	}
	if ac.numPoints < 1 {
		return fmt.Errorf("sweep needs at least one point, got %d", ac.numPoints)
	}
	if ac.startFreq <= 0 || ac.stopFreq < ac.startFreq {
		return fmt.Errorf("invalid sweep range %g..%g Hz", ac.startFreq, ac.stopFreq)
	}
	switch ac.pointsType {
	case "DEC", "OCT", "LIN":
	default:
		return fmt.Errorf("unknown sweep type %q", ac.pointsType)
	}

	ac.Circuit = ckt
	ac.generateFrequencyPoints()
	return nil
}

// Execute stores FREQ, Z_MAG, Z_PHASE and L_EQ series. Points that cannot be
// solved are stored as NaN so the series stay aligned.
func (ac *ImpedanceSweep) Execute() error {
	if ac.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}
	components := ac.Circuit.Components()

	for _, freq := range ac.frequencies {
		omega := 2 * math.Pi * freq
		z, ok := Impedance(components, omega, ac.Backend, ac.Logger)
		if !ok {
			z = cmplx.NaN()
		}
		ac.StoreACResult(freq, map[string]complex128{"Z": z})
		ac.StoreResult("L_EQ", imag(z)/omega)
	}
	return nil
}

func (ac *ImpedanceSweep) Frequencies() []float64 {
	return ac.frequencies
}

func (ac *ImpedanceSweep) generateFrequencyPoints() {
	ac.frequencies = make([]float64, ac.numPoints)
	if ac.numPoints == 1 {
		ac.frequencies[0] = ac.startFreq
		return
	}

	switch ac.pointsType {
	case "DEC": // Decade
		logStart := math.Log10(ac.startFreq)
		logStop := math.Log10(ac.stopFreq)
		step := (logStop - logStart) / float64(ac.numPoints-1)
		for i := range ac.numPoints {
			ac.frequencies[i] = math.Pow(10, logStart+float64(i)*step)
		}

	case "OCT": // Octave
		logStart := math.Log2(ac.startFreq)
		logStop := math.Log2(ac.stopFreq)
		step := (logStop - logStart) / float64(ac.numPoints-1)
		for i := range ac.numPoints {
			ac.frequencies[i] = math.Pow(2, logStart+float64(i)*step)
		}

	case "LIN": // Linear
		step := (ac.stopFreq - ac.startFreq) / float64(ac.numPoints-1)
		for i := range ac.numPoints {
			ac.frequencies[i] = ac.startFreq + float64(i)*step
		}
	}
}
