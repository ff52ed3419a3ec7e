package ui

import (
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the debug panel.
type HUDData struct {
	State         string
	FPS           int32
	Frame         int
	Cursor        int
	NPoints       int
	Particles     int
	Capacity      int
	Hands         int
	SessionID     string
	SessionLeft   time.Duration
	TickDuration  time.Duration
	TrackingShare float64
}

// HUD renders the debug panel.
type HUD struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		x:        10,
		y:        10,
		width:    260,
	}
}

// Draw renders the debug panel and its overlay toggles. Toggling a
// checkbox updates the registry.
func (h *HUD) Draw(data HUDData, overlays *OverlayRegistry) {
	r := h.renderer
	pad := r.Theme.Padding
	line := r.Theme.LineHeight

	rows := int32(9 + len(overlays.All()))
	height := rows*line + pad*3 + r.Theme.HeaderFontSize
	r.DrawPanel(h.x, h.y, h.width, height)

	x := h.x + pad
	y := r.DrawSectionHeader(x, h.y+pad, "cyberloops")
	y = r.DrawLabelValue(x, y, "State", data.State)
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))
	y = r.DrawLabelValue(x, y, "Tick", data.TickDuration.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "Frame", fmt.Sprintf("%d", data.Frame))
	y = r.DrawLabelValue(x, y, "Hands", fmt.Sprintf("%d", data.Hands))
	y = r.DrawLabelValue(x, y, "Particles", fmt.Sprintf("%d / %d", data.Particles, data.Capacity))
	y = r.DrawLabelValue(x, y, "Reset in", FormatRemaining(data.SessionLeft))

	inner := h.width - 2*pad
	if data.NPoints > 0 {
		y = r.DrawBar(x, y, "Cursor", float32(data.Cursor)/float32(data.NPoints), inner)
	}
	y = r.DrawBar(x, y, "Tracking", float32(data.TrackingShare), inner)

	for _, desc := range overlays.All() {
		bounds := rl.Rectangle{X: float32(x), Y: float32(y), Width: 12, Height: 12}
		label := fmt.Sprintf("%s [%s]", desc.Name, desc.KeyLabel)
		checked := gui.CheckBox(bounds, label, overlays.IsEnabled(desc.ID))
		overlays.SetEnabled(desc.ID, checked)
		y += line
	}

	rl.DrawText(data.SessionID, x, y+2, 10, r.Theme.LabelColor)
}

// DrawStatus draws a status line centred on the screen.
func (h *HUD) DrawStatus(text string, screenWidth, screenHeight int32) {
	r := h.renderer
	r.DrawCenteredText(text, screenWidth/2, screenHeight/2, r.Theme.StatusFontSize, r.Theme.StatusColor)
}

// FormatRemaining renders a duration as MM:SS, clamping negatives to zero.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Logo draws the "LF" monogram in the bottom-right corner.
type Logo struct {
	size   int32
	border int32
	color  rl.Color
}

// NewLogo creates a logo of the given size and margin.
func NewLogo(size, border int32, grey uint8) *Logo {
	return &Logo{
		size:   size,
		border: border,
		color:  rl.Color{R: grey, G: grey, B: grey, A: 255},
	}
}

// Draw renders the logo for the given screen size.
func (l *Logo) Draw(screenWidth, screenHeight int32) {
	for _, rect := range l.Rects(screenWidth, screenHeight) {
		rl.DrawRectangleRec(rect, l.color)
	}
}

// Rects returns the glyph's rectangles in screen space. The glyph is
// centred on the point size+border in from the bottom-right corner.
func (l *Logo) Rects(screenWidth, screenHeight int32) []rl.Rectangle {
	s := float32(l.size)
	u := s / 5
	ox := float32(screenWidth-l.size-l.border) - s/2
	oy := float32(screenHeight-l.size-l.border) - s/2

	cells := [][4]float32{
		// L
		{0, 0, 1, 5},
		{0, 4, 3, 1},
		// F
		{4, 0, 1, 5},
		{2, 0, 3, 1},
		// centre
		{2, 2, 1, 1},
	}
	rects := make([]rl.Rectangle, len(cells))
	for i, c := range cells {
		rects[i] = rl.Rectangle{X: ox + c[0]*u, Y: oy + c[1]*u, Width: c[2] * u, Height: c[3] * u}
	}
	return rects
}
