// Package ui draws the pipeline's on-screen chrome: the debug panel, status
// text, overlay toggles and the logo.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme defines colors and sizing for UI elements.
type Theme struct {
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	BarBg         rl.Color
	BarFill       rl.Color
	StatusColor   rl.Color

	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
	StatusFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 10, G: 12, B: 16, A: 200},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Color{R: 3, G: 186, B: 252, A: 255},
		LabelColor:     rl.LightGray,
		ValueColor:     rl.White,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 3, G: 186, B: 252, A: 255},
		StatusColor:    rl.White,
		Padding:        10,
		LineHeight:     18,
		LabelWidth:     90,
		BarHeight:      12,
		FontSize:       14,
		HeaderFontSize: 16,
		StatusFontSize: 32,
	}
}
