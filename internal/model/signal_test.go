package model

import "testing"

func TestNewSignal_Clamping(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		position   float64
		wantConf   float64
		wantPos    float64
	}{
		{"in range", 0.7, 0.8, 0.7, 0.8},
		{"confidence above one", 1.5, 0.5, 1.0, 0.5},
		{"confidence below zero", -0.2, 0.5, 0.0, 0.5},
		{"position above one", 0.5, 2.3, 0.5, 1.0},
		{"position below zero", 0.5, -1.0, 0.5, 0.0},
		{"both extreme", 99, -99, 1.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := NewSignal(ActionBuy, tt.confidence, tt.position, "test")
			if sig.Confidence != tt.wantConf {
				t.Errorf("confidence = %.2f, want %.2f", sig.Confidence, tt.wantConf)
			}
			if sig.Position != tt.wantPos {
				t.Errorf("position = %.2f, want %.2f", sig.Position, tt.wantPos)
			}
		})
	}
}

func TestCloses(t *testing.T) {
	bars := []Bar{{Close: 10}, {Close: 11}, {Close: 12}}
	closes := Closes(bars)
	if len(closes) != 3 || closes[0] != 10 || closes[2] != 12 {
		t.Errorf("unexpected closes: %v", closes)
	}
}
