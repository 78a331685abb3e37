package domain

import "fmt"

type ColorTheme string

const (
	ThemeProfessional ColorTheme = "professional"
	ThemeHighContrast ColorTheme = "high_contrast"
	ThemeDark         ColorTheme = "dark"
)

type RGB [3]uint8

// Hex returns the colour as an OOXML srgbClr value, e.g. "F0F5FA".
func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c[0], c[1], c[2])
}

type Palette struct {
	Background RGB
	Title      RGB
	Body       RGB
	Accent     RGB
}

var palettes = map[ColorTheme]Palette{
	ThemeHighContrast: {
		Background: RGB{255, 255, 255},
		Title:      RGB{0, 0, 0},
		Body:       RGB{50, 50, 50},
		Accent:     RGB{0, 51, 102},
	},
	ThemeProfessional: {
		Background: RGB{240, 245, 250},
		Title:      RGB{0, 51, 102},
		Body:       RGB{40, 40, 40},
		Accent:     RGB{0, 102, 204},
	},
	ThemeDark: {
		Background: RGB{45, 45, 48},
		Title:      RGB{255, 255, 255},
		Body:       RGB{220, 220, 220},
		Accent:     RGB{100, 200, 255},
	},
}

func (t ColorTheme) Valid() bool {
	_, ok := palettes[t]
	return ok
}

// Palette falls back to professional for unknown themes.
func (t ColorTheme) Palette() Palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[ThemeProfessional]
}
