package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720)

	if cx, cy := cam.Center(); cx != 640 || cy != 360 {
		t.Errorf("expected centre (640, 360), got (%f, %f)", cx, cy)
	}
	if !cam.Mirror {
		t.Error("expected landmarks to be mirrored by default")
	}
}

func TestCurveOriginIsScreenCenter(t *testing.T) {
	cam := New(1280, 720)

	sx, sy := cam.CurveToScreen(r2.Vec{})
	if sx != 640 || sy != 360 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestScreenToCurveRoundtrip(t *testing.T) {
	cam := New(1280, 720)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		p := cam.ScreenToCurve(tc.sx, tc.sy)
		sx, sy := cam.CurveToScreen(p)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> %v -> (%f,%f)", tc.sx, tc.sy, p, sx, sy)
		}
	}
}

func TestLandmarkToScreen(t *testing.T) {
	tests := []struct {
		name         string
		mirror       bool
		x, y         float64
		wantX, wantY float32
	}{
		{"mirrored left edge", true, 0, 0.5, 1280, 360},
		{"mirrored right edge", true, 1, 0, 0, 0},
		{"plain", false, 0.25, 1, 320, 720},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := New(1280, 720)
			cam.Mirror = tt.mirror
			sx, sy := cam.LandmarkToScreen(tt.x, tt.y)
			if sx != tt.wantX || sy != tt.wantY {
				t.Errorf("got (%f, %f), want (%f, %f)", sx, sy, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestResize(t *testing.T) {
	cam := New(1280, 720)
	cam.Resize(800, 600)

	sx, sy := cam.CurveToScreen(r2.Vec{X: 10, Y: -10})
	if sx != 410 || sy != 290 {
		t.Errorf("expected (410, 290) after resize, got (%f, %f)", sx, sy)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720)

	tests := []struct {
		name    string
		x, y, r float32
		want    bool
	}{
		{"center", 640, 360, 5, true},
		{"overlapping left edge", -3, 100, 5, true},
		{"off left", -10, 100, 5, false},
		{"off bottom", 100, 730, 5, false},
	}
	for _, tt := range tests {
		if got := cam.IsVisible(tt.x, tt.y, tt.r); got != tt.want {
			t.Errorf("%s: IsVisible = %v, want %v", tt.name, got, tt.want)
		}
	}
}
