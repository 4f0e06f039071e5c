package analysis

import (
	"math"
	"testing"

	"github.com/ThePyProgrammer/breadboards/pkg/circuit"
	"github.com/ThePyProgrammer/breadboards/pkg/device"
	"github.com/ThePyProgrammer/breadboards/pkg/matrix"
)

var backends = []matrix.Backend{matrix.BackendDense, matrix.BackendSparse, matrix.BackendGonum}

func comp(id string, kind device.Kind, a, b string, value float64) device.Descriptor {
	return device.Descriptor{ID: id, Type: kind, NodeA: a, NodeB: b, Value: value}
}

func newCircuit(components ...device.Descriptor) *circuit.Circuit {
	ckt := circuit.New()
	for _, c := range components {
		ckt.Add(c)
	}
	return ckt
}

func newTransient(t *testing.T, ckt *circuit.Circuit, dt float64, backend matrix.Backend) *Transient {
	t.Helper()
	tr := NewTransient(dt, 0, backend, nil)
	if err := tr.Setup(ckt); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	return tr
}

func assertNear(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %.12g, want %.12g (tol %g)", name, got, want, tol)
	}
}

func TestSingleResistor(t *testing.T) {
	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			ckt := newCircuit(
				comp("V1", device.KindDCSource, "a", "gnd", 5),
				comp("R1", device.KindResistor, "a", "gnd", 100),
			)
			res := newTransient(t, ckt, 1e-3, backend).Step()

			assertNear(t, "V(a)", res.Voltages["a"], 5, 1e-9)
			assertNear(t, "I(R1)", res.Currents["R1"], 0.05, 1e-12)
			assertNear(t, "I(V1)", res.Currents["V1"], -0.05, 1e-12)
			if v, ok := res.Voltages["gnd"]; !ok || v != 0 {
				t.Errorf("V(gnd) = %v, %v; want 0, true", v, ok)
			}
		})
	}
}

func TestDuplicatedResistor(t *testing.T) {
	ckt := newCircuit(
		comp("V1", device.KindDCSource, "a", "gnd", 12),
		comp("R1", device.KindResistor, "a", "gnd", 60),
		comp("R2", device.KindResistor, "a", "gnd", 60),
	)
	res := newTransient(t, ckt, 1e-3, matrix.BackendDense).Step()

	assertNear(t, "I(R1)", res.Currents["R1"], 0.2, 1e-12)
	assertNear(t, "I(R2)", res.Currents["R2"], 0.2, 1e-12)
	assertNear(t, "I(V1)", res.Currents["V1"], -0.4, 1e-12)
}

func TestKirchhoffCurrentLaw(t *testing.T) {
	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			ckt := newCircuit(
				comp("V1", device.KindDCSource, "in", "gnd", 10),
				comp("R1", device.KindResistor, "in", "m", 100),
				comp("R2", device.KindResistor, "m", "gnd", 200),
				comp("R3", device.KindResistor, "m", "out", 300),
				comp("R4", device.KindResistor, "out", "gnd", 400),
				comp("R5", device.KindResistor, "in", "out", 500),
			)
			res := newTransient(t, ckt, 1e-3, backend).Step()
			i := res.Currents

			// currents leaving through R are positive from node A to node B
			assertNear(t, "KCL(in)", -i["V1"]-i["R1"]-i["R5"], 0, 1e-12)
			assertNear(t, "KCL(m)", i["R1"]-i["R2"]-i["R3"], 0, 1e-12)
			assertNear(t, "KCL(out)", i["R3"]+i["R5"]-i["R4"], 0, 1e-12)
		})
	}
}

func TestRCCharging(t *testing.T) {
	const (
		v   = 5.0
		r   = 1000.0
		c   = 1e-6
		dt  = 1e-5
		tau = r * c
	)
	ckt := newCircuit(
		comp("V1", device.KindDCSource, "in", "gnd", v),
		comp("R1", device.KindResistor, "in", "out", r),
		comp("C1", device.KindCapacitor, "out", "gnd", c),
	)
	tr := newTransient(t, ckt, dt, matrix.BackendDense)

	a := dt / tau
	for n := 1; n <= 100; n++ {
		res := tr.Step()
		// backward Euler: v_n = V(1 - (1+dt/RC)^-n)
		want := v * (1 - math.Pow(1+a, -float64(n)))
		assertNear(t, "V(out)", res.Voltages["out"], want, 1e-9)
	}
	assertNear(t, "time", tr.Time(), tau, 1e-12)

	// within discretisation error of the continuous curve at t = RC
	got := ckt.State("C1").PrevCapVoltage
	assertNear(t, "V(out) at tau", got, v*(1-math.Exp(-1)), 0.02)

	res := tr.StepN(900)
	assertNear(t, "V(out) at 10 tau", res.Voltages["out"], v, 1e-3)
	assertNear(t, "I(C1) at 10 tau", res.Currents["C1"], 0, 1e-5)
}

func TestInductorRamp(t *testing.T) {
	const (
		v  = 2.0
		l  = 0.5
		dt = 1e-3
	)
	ckt := newCircuit(
		comp("V1", device.KindDCSource, "a", "gnd", v),
		comp("L1", device.KindInductor, "a", "gnd", l),
	)
	tr := newTransient(t, ckt, dt, matrix.BackendDense)

	for n := 1; n <= 10; n++ {
		res := tr.Step()
		assertNear(t, "I(L1)", res.Currents["L1"], v/l*float64(n)*dt, 1e-12)
		assertNear(t, "I(V1)", res.Currents["V1"], -v/l*float64(n-1)*dt-v/l*dt, 1e-9)
	}
}

func TestACSourceFollowsSine(t *testing.T) {
	ckt := newCircuit(
		device.Descriptor{ID: "V1", Type: device.KindACSource, NodeA: "a", NodeB: "gnd", Value: 10, Frequency: 50},
		comp("R1", device.KindResistor, "a", "gnd", 10),
	)
	tr := newTransient(t, ckt, 1e-3, matrix.BackendDense)

	for n := 0; n < 20; n++ {
		tm := tr.Time()
		res := tr.Step()
		assertNear(t, "V(a)", res.Voltages["a"], 10*math.Sin(2*math.Pi*50*tm), 1e-9)
	}
}

func TestRemoveAndReAddStartsFromZero(t *testing.T) {
	rc := []device.Descriptor{
		comp("V1", device.KindDCSource, "in", "gnd", 5),
		comp("R1", device.KindResistor, "in", "out", 1000),
	}
	fresh := newCircuit(append(rc, comp("C2", device.KindCapacitor, "out", "gnd", 1e-6))...)
	want := newTransient(t, fresh, 1e-4, matrix.BackendDense).Step()

	ckt := newCircuit(append(rc, comp("C1", device.KindCapacitor, "out", "gnd", 1e-6))...)
	tr := newTransient(t, ckt, 1e-4, matrix.BackendDense)
	tr.StepN(50)
	if ckt.State("C1").PrevCapVoltage == 0 {
		t.Fatal("capacitor did not charge")
	}

	ckt.Remove("C1")
	ckt.Add(comp("C2", device.KindCapacitor, "out", "gnd", 1e-6))
	got := tr.Step()

	assertNear(t, "V(out)", got.Voltages["out"], want.Voltages["out"], 1e-12)
	assertNear(t, "I(C2)", got.Currents["C2"], want.Currents["C2"], 1e-12)
}

func TestEmptyNetwork(t *testing.T) {
	tr := newTransient(t, circuit.New(), 1e-3, matrix.BackendDense)
	res := tr.Step()

	if len(res.Voltages) != 0 || len(res.Currents) != 0 {
		t.Errorf("Step() = %+v, want empty maps", res)
	}
	if res.Voltages == nil || res.Currents == nil {
		t.Error("Step() returned nil maps")
	}
	if tr.Time() != 0 {
		t.Errorf("Time() = %v, want 0", tr.Time())
	}
}

func TestTrivialSystem(t *testing.T) {
	// a resistor with both ends on ground has no unknowns
	tr := newTransient(t, newCircuit(comp("R1", device.KindResistor, "gnd", "gnd", 1)), 1e-3, matrix.BackendDense)
	res := tr.Step()
	if len(res.Voltages) != 0 || len(res.Currents) != 0 || tr.Time() != 0 {
		t.Errorf("Step() = %+v at t=%v, want empty result without advancing", res, tr.Time())
	}
}

func TestFloatingNodeYieldsZeros(t *testing.T) {
	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			ckt := newCircuit(
				comp("V1", device.KindDCSource, "a", "gnd", 5),
				comp("R1", device.KindResistor, "a", "gnd", 10),
				comp("C1", device.KindCapacitor, "x", "y", 1e-6),
			)
			tr := newTransient(t, ckt, 1e-3, backend)
			res := tr.Step()

			for label, v := range res.Voltages {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Errorf("V(%s) = %v, want finite", label, v)
				}
			}
			if backend == matrix.BackendDense {
				for label, v := range res.Voltages {
					if v != 0 {
						t.Errorf("V(%s) = %v, want 0", label, v)
					}
				}
			}
			assertNear(t, "time", tr.Time(), 1e-3, 0)
		})
	}
}

func TestJumperWithHighValueDivider(t *testing.T) {
	// The 0 ohm jumper is floored to 1e-6 ohm, nineteen decades above the
	// divider's conductance. The system is still well posed.
	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			ckt := newCircuit(
				comp("V1", device.KindDCSource, "a", "gnd", 1),
				comp("R0", device.KindResistor, "a", "b", 0),
				comp("R1", device.KindResistor, "b", "c", 1e11),
				comp("R2", device.KindResistor, "c", "gnd", 1e11),
			)
			res := newTransient(t, ckt, 1e-3, backend).Step()

			assertNear(t, "V(a)", res.Voltages["a"], 1, 1e-9)
			assertNear(t, "V(b)", res.Voltages["b"], 1, 1e-9)
			assertNear(t, "V(c)", res.Voltages["c"], 0.5, 1e-9)
			assertNear(t, "I(R1)", res.Currents["R1"], 5e-12, 1e-15)
		})
	}
}

func TestPromotedGroundAlsoReportsGnd(t *testing.T) {
	ckt := newCircuit(
		comp("V1", device.KindDCSource, "a", "b", 5),
		comp("R1", device.KindResistor, "a", "b", 10),
	)
	res := newTransient(t, ckt, 1e-3, matrix.BackendDense).Step()

	v, ok := res.Voltages["gnd"]
	if !ok || v != 0 {
		t.Errorf("V(gnd) = %v (present %v), want 0", v, ok)
	}
	assertNear(t, "V(a)", res.Voltages["a"], 0, 0)
	assertNear(t, "V(b)", res.Voltages["b"], -5, 1e-12)
	if len(res.Voltages) != 3 {
		t.Errorf("Voltages = %v, want a, b and gnd", res.Voltages)
	}
}

func TestUnknownTypeIsSkipped(t *testing.T) {
	ckt := newCircuit(comp("Q1", "Q", "a", "gnd", 1))
	tr := newTransient(t, ckt, 1e-3, matrix.BackendDense)
	res := tr.Step()
	if len(res.Voltages) != 0 || tr.Time() != 0 {
		t.Errorf("Step() = %+v, want empty result", res)
	}
}

func TestBackendsAgree(t *testing.T) {
	components := []device.Descriptor{
		device.Descriptor{ID: "V1", Type: device.KindACSource, NodeA: "in", NodeB: "gnd", Value: 3, Frequency: 100},
		comp("R1", device.KindResistor, "in", "m", 47),
		comp("L1", device.KindInductor, "m", "out", 10e-3),
		comp("C1", device.KindCapacitor, "out", "gnd", 22e-6),
		comp("R2", device.KindResistor, "out", "gnd", 1000),
	}
	dense := newTransient(t, newCircuit(components...), 1e-4, matrix.BackendDense)
	sparse := newTransient(t, newCircuit(components...), 1e-4, matrix.BackendSparse)
	lu := newTransient(t, newCircuit(components...), 1e-4, matrix.BackendGonum)

	for n := 0; n < 50; n++ {
		d, s, g := dense.Step(), sparse.Step(), lu.Step()
		for label, v := range d.Voltages {
			assertNear(t, "sparse V("+label+")", s.Voltages[label], v, 1e-9)
			assertNear(t, "gonum V("+label+")", g.Voltages[label], v, 1e-9)
		}
		for id, i := range d.Currents {
			assertNear(t, "sparse I("+id+")", s.Currents[id], i, 1e-9)
			assertNear(t, "gonum I("+id+")", g.Currents[id], i, 1e-9)
		}
	}
}

func TestTransientExecute(t *testing.T) {
	ckt := newCircuit(
		comp("V1", device.KindDCSource, "a", "gnd", 1),
		comp("R1", device.KindResistor, "a", "gnd", 2),
	)
	tr := NewTransient(0.25, 1, matrix.BackendDense, nil)
	if err := tr.Setup(ckt); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if err := tr.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	results := tr.GetResults()
	wantTimes := []float64{0.25, 0.5, 0.75, 1}
	if len(results["TIME"]) != len(wantTimes) {
		t.Fatalf("TIME = %v, want %v", results["TIME"], wantTimes)
	}
	for i, want := range wantTimes {
		if results["TIME"][i] != want {
			t.Errorf("TIME[%d] = %v, want %v", i, results["TIME"][i], want)
		}
		assertNear(t, "I(R1)", results["I(R1)"][i], 0.5, 1e-12)
		assertNear(t, "V(a)", results["V(a)"][i], 1, 1e-12)
	}
}

func TestTransientExecuteEmpty(t *testing.T) {
	tr := NewTransient(1e-3, 1e-2, matrix.BackendDense, nil)
	tr.Setup(circuit.New())
	if err := tr.Execute(); err == nil {
		t.Error("Execute on empty circuit returned no error")
	}
}

func TestResetAndTimeStep(t *testing.T) {
	tr := NewTransient(0, 0, matrix.BackendDense, nil)
	if tr.TimeStep() != 1e-3 {
		t.Errorf("default TimeStep() = %v, want 1e-3", tr.TimeStep())
	}
	tr.SetTimeStep(-1)
	if tr.TimeStep() != 1e-3 {
		t.Errorf("TimeStep() after SetTimeStep(-1) = %v, want 1e-3", tr.TimeStep())
	}

	tr.Setup(newCircuit(
		comp("V1", device.KindDCSource, "a", "gnd", 1),
		comp("R1", device.KindResistor, "a", "gnd", 1),
	))
	tr.StepN(3)
	tr.Reset()
	if tr.Time() != 0 {
		t.Errorf("Time() after Reset = %v, want 0", tr.Time())
	}
}
