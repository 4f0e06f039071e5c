package util

import (
	"fmt"
	"math"
)

type siScale struct {
	factor float64
	prefix string
}

var valuePrefixes = []siScale{
	{1, ""},
	{1e-3, "m"},
	{1e-6, "u"},
	{1e-9, "n"},
	{1e-12, "p"},
}

var frequencyPrefixes = []siScale{
	{1e6, "M"},
	{1e3, "k"},
}

// FormatValueFactor scales sub-unit values to the m, u, n or p prefix with
// three decimals. Anything below a pico unit, zero included, falls back to
// exponent form.
func FormatValueFactor(value float64, unit string) string {
	abs := math.Abs(value)
	for _, s := range valuePrefixes {
		if abs >= s.factor {
			return fmt.Sprintf("%.3f %s%s", value/s.factor, s.prefix, unit)
		}
	}
	return fmt.Sprintf("%.3e %s", value, unit)
}

// FormatFrequency is fixed width so sweep tables line up.
func FormatFrequency(freq float64) string {
	for _, s := range frequencyPrefixes {
		if freq >= s.factor {
			return fmt.Sprintf("%7.3f %sHz", freq/s.factor, s.prefix)
		}
	}
	return fmt.Sprintf("%7.3f Hz ", freq)
}

// FormatMagnitude switches to exponent form outside [1e-3, 1e3).
func FormatMagnitude(value float64) string {
	if value >= 1000 || (value < 0.001 && value != 0) {
		return fmt.Sprintf("%8.2e", value)
	}
	return fmt.Sprintf("%8.3g", value)
}

func FormatPhase(degrees float64) string {
	return fmt.Sprintf("%6.1f", degrees)
}

// FormatInductance renders an equivalent inductance the way the editor
// overlay shows it: millihenries, "Capacitive" for negative values and "N/A"
// when there is no result.
func FormatInductance(l *float64) string {
	switch {
	case l == nil:
		return "N/A"
	case *l < 0:
		return "Capacitive"
	default:
		return fmt.Sprintf("%.2f mH", *l*1e3)
	}
}
