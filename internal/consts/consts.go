package consts

const (
	GroundLabel        = "gnd"  // literal label always resolved to node 0
	DefaultTimeStep    = 1e-3   // transient step (s)
	DefaultACFrequency = 60.0   // V_AC frequency when none is given (Hz)
	DefaultTestOmega   = 1000.0 // equivalent-inductance test frequency (rad/s)
	ResistanceFloor    = 1e-6   // smallest resistance stamped (ohm)
)
