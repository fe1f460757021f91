package platform

import "testing"

func TestSimulatedRoundTrip(t *testing.T) {
	s := NewSimulated()
	s.SetReadings(400, 200)

	if v := s.MeasureVCC(); v != 400 {
		t.Fatalf("MeasureVCC() = %d, want 400", v)
	}
	if v := s.MeasureSensor(); v != 200 {
		t.Fatalf("MeasureSensor() = %d, want 200", v)
	}

	s.SetPWM(2248)
	running, period := s.PWMState()
	if !running || period != 2248 {
		t.Fatalf("PWMState() = (%v, %d), want (true, 2248)", running, period)
	}

	s.StopPWM()
	running, _ = s.PWMState()
	if running {
		t.Fatal("PWMState() running after StopPWM")
	}

	set, stop := s.Calls()
	if set != 1 || stop != 1 {
		t.Fatalf("Calls() = (%d, %d), want (1, 1)", set, stop)
	}
}

func TestSimulatedIndicator(t *testing.T) {
	s := NewSimulated()
	s.Indicator(true)
	if !s.IndicatorState() {
		t.Fatal("IndicatorState() = false after Indicator(true)")
	}
	s.Indicator(false)
	if s.IndicatorState() {
		t.Fatal("IndicatorState() = true after Indicator(false)")
	}
}
