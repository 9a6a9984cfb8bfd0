package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// BadgeColor is the accent used for the counter and the active auto button.
var BadgeColor = color.NRGBA{R: 0xe5, G: 0x39, B: 0x35, A: 0xff}

// CustomTheme overrides the primary color of the default theme.
type CustomTheme struct {
	fyne.Theme
	accent color.Color
}

// NewCustomTheme creates a new instance of the custom theme.
func NewCustomTheme(accent color.Color) fyne.Theme {
	return &CustomTheme{Theme: theme.DefaultTheme(), accent: accent}
}

// Color returns the accent for primary elements and defers to the default
// theme otherwise.
func (t *CustomTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if name == theme.ColorNamePrimary {
		return t.accent
	}
	return t.Theme.Color(name, variant)
}
