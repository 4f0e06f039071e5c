package analysis

import (
	"log/slog"
	"math"
	"math/cmplx"

	"github.com/ThePyProgrammer/breadboards/internal/logging"
	"github.com/ThePyProgrammer/breadboards/pkg/circuit"
	"github.com/ThePyProgrammer/breadboards/pkg/matrix"
)

type Analysis interface {
	Setup(ckt *circuit.Circuit) error
	Execute() error
	GetResults() map[string][]float64
}

type BaseAnalysis struct {
	Circuit *circuit.Circuit
	Backend matrix.Backend
	Logger  *slog.Logger
	results map[string][]float64 // key: variable name, value: result by time or frequency
}

func NewBaseAnalysis(backend matrix.Backend, logger *slog.Logger) *BaseAnalysis {
	if logger == nil {
		logger = logging.Discard()
	}
	return &BaseAnalysis{
		Backend: backend,
		Logger:  logger,
		results: make(map[string][]float64),
	}
}

func (a *BaseAnalysis) StoreTimeResult(time float64, solution map[string]float64) {
	// Ignore same time
	if times := a.results["TIME"]; len(times) > 0 && times[len(times)-1] == time {
		return
	}

	a.results["TIME"] = append(a.results["TIME"], time)
	for name, value := range solution {
		a.results[name] = append(a.results[name], value)
	}
}

func (a *BaseAnalysis) StoreACResult(freq float64, solution map[string]complex128) {
	a.results["FREQ"] = append(a.results["FREQ"], freq)

	for name, value := range solution {
		a.results[name+"_MAG"] = append(a.results[name+"_MAG"], cmplx.Abs(value))

		// Phase - degree
		phase := cmplx.Phase(value) * 180.0 / math.Pi
		a.results[name+"_PHASE"] = append(a.results[name+"_PHASE"], phase)
	}
}

// StoreResult appends a plain series value.
func (a *BaseAnalysis) StoreResult(name string, value float64) {
	a.results[name] = append(a.results[name], value)
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}

// finiteOrZero clamps NaN and infinities to 0.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
