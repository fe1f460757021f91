package platform

import "testing"

func TestNewPeriphRequiresMOSFETPin(t *testing.T) {
	_, err := NewPeriph(PeriphConfig{IndicatorPin: "GPIO6"})
	if err == nil {
		t.Fatal("expected error when MOSFET pin is missing")
	}
}

func TestNewPeriphRequiresIndicatorPin(t *testing.T) {
	_, err := NewPeriph(PeriphConfig{MOSFETPin: "GPIO2"})
	if err == nil {
		t.Fatal("expected error when indicator pin is missing")
	}
}
