package util

// BackwardEulerCoeff returns the first-order BDF coefficient 1/dt used by the
// capacitor and inductor companion models.
func BackwardEulerCoeff(dt float64) float64 {
	if dt <= 0 {
		dt = 1e-9
	}
	return 1.0 / dt
}
