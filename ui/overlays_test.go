package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestOverlayDefaults(t *testing.T) {
	reg := NewOverlayRegistry()

	tests := []struct {
		id   OverlayID
		want bool
	}{
		{OverlayDebug, false},
		{OverlayHands, true},
		{OverlayLattice, true},
		{OverlayLoop, true},
	}
	for _, tt := range tests {
		if got := reg.IsEnabled(tt.id); got != tt.want {
			t.Errorf("%s enabled = %v, want %v", tt.id, got, tt.want)
		}
	}
	if len(reg.All()) != 4 {
		t.Errorf("expected 4 overlays, got %d", len(reg.All()))
	}
}

func TestOverlayHandleKeyPress(t *testing.T) {
	reg := NewOverlayRegistry()

	id, on, ok := reg.HandleKeyPress(rl.KeyD)
	if !ok || id != OverlayDebug || !on {
		t.Errorf("D: got (%s, %v, %v), want (debug, true, true)", id, on, ok)
	}
	if _, on, _ := reg.HandleKeyPress(rl.KeyD); on {
		t.Error("second D press should switch debug off")
	}

	if _, _, ok := reg.HandleKeyPress(rl.KeyZ); ok {
		t.Error("unbound key should not toggle anything")
	}
}

func TestOverlayUnknownID(t *testing.T) {
	reg := NewOverlayRegistry()
	if reg.Toggle("nope") {
		t.Error("toggling an unknown overlay should report false")
	}
	reg.SetEnabled("nope", true)
	if reg.IsEnabled("nope") {
		t.Error("unknown overlay should stay disabled")
	}
}
