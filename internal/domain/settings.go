package domain

import (
	"fmt"
	"strings"
)

const (
	MinSlides = 5
	MaxSlides = 100
)

type SummarizationLevel string

const (
	LevelLow    SummarizationLevel = "low"
	LevelMedium SummarizationLevel = "medium"
	LevelHigh   SummarizationLevel = "high"
)

var summaryRatios = map[SummarizationLevel]float64{
	LevelLow:    0.3,
	LevelMedium: 0.5,
	LevelHigh:   0.7,
}

func (l SummarizationLevel) Valid() bool {
	_, ok := summaryRatios[l]
	return ok
}

// Ratio is the target share of the source kept by the summary.
func (l SummarizationLevel) Ratio() float64 {
	return summaryRatios[l]
}

// Percent is Ratio as a whole percentage, e.g. 50.
func (l SummarizationLevel) Percent() int {
	return int(l.Ratio()*100 + 0.5)
}

// Label renders the level the way statistics show it: "medium (50%)".
func (l SummarizationLevel) Label() string {
	return fmt.Sprintf("%s (%d%%)", l, l.Percent())
}

type FarsiFont string

const (
	FontVazir    FarsiFont = "Vazir"
	FontYekan    FarsiFont = "Yekan"
	FontIRANSans FarsiFont = "IRANSans"
	FontSamim    FarsiFont = "Samim"
)

func (f FarsiFont) Valid() bool {
	switch f {
	case FontVazir, FontYekan, FontIRANSans, FontSamim:
		return true
	}
	return false
}

type EnglishFont string

const (
	FontCalibri EnglishFont = "Calibri"
	FontArial   EnglishFont = "Arial"
	FontRoboto  EnglishFont = "Roboto"
)

func (f EnglishFont) Valid() bool {
	switch f {
	case FontCalibri, FontArial, FontRoboto:
		return true
	}
	return false
}

// FontSizes are the point sizes offered by the settings form.
var FontSizes = []int{12, 14, 16, 18, 20, 22, 24, 28}

func validFontSize(size int) bool {
	for _, s := range FontSizes {
		if s == size {
			return true
		}
	}
	return false
}

// GenerationSettings is validated once at the boundary and then passed by
// value through the pipeline.
type GenerationSettings struct {
	PaperName          string
	NumSlides          int
	SummarizationLevel SummarizationLevel
	FarsiFont          FarsiFont
	EnglishFont        EnglishFont
	FontSize           int
	ColorTheme         ColorTheme
}

// RawSettings is the loosely typed form input.
type RawSettings struct {
	PaperName          string
	NumSlides          int
	SummarizationLevel string
	FarsiFont          string
	EnglishFont        string
	FontSize           int
	ColorTheme         string
}

// DefaultRawSettings mirrors the initial state of the settings form.
func DefaultRawSettings() RawSettings {
	return RawSettings{
		NumSlides:          25,
		SummarizationLevel: string(LevelMedium),
		FarsiFont:          string(FontIRANSans),
		EnglishFont:        string(FontCalibri),
		FontSize:           18,
		ColorTheme:         string(ThemeProfessional),
	}
}

func NewGenerationSettings(raw RawSettings) (GenerationSettings, error) {
	s := GenerationSettings{
		PaperName:          strings.TrimSpace(raw.PaperName),
		NumSlides:          raw.NumSlides,
		SummarizationLevel: SummarizationLevel(strings.ToLower(strings.TrimSpace(raw.SummarizationLevel))),
		FarsiFont:          FarsiFont(strings.TrimSpace(raw.FarsiFont)),
		EnglishFont:        EnglishFont(strings.TrimSpace(raw.EnglishFont)),
		FontSize:           raw.FontSize,
		ColorTheme:         ColorTheme(strings.ToLower(strings.TrimSpace(raw.ColorTheme))),
	}
	if err := s.Validate(); err != nil {
		return GenerationSettings{}, err
	}
	return s, nil
}

func (s GenerationSettings) Validate() error {
	switch {
	case s.PaperName == "":
		return ValidationError("paper name is required")
	case s.NumSlides < MinSlides || s.NumSlides > MaxSlides:
		return ValidationError(fmt.Sprintf("number of slides must be between %d and %d", MinSlides, MaxSlides))
	case !s.SummarizationLevel.Valid():
		return ValidationError(fmt.Sprintf("unknown summarization level %q", s.SummarizationLevel))
	case !s.FarsiFont.Valid():
		return ValidationError(fmt.Sprintf("unknown farsi font %q", s.FarsiFont))
	case !s.EnglishFont.Valid():
		return ValidationError(fmt.Sprintf("unknown english font %q", s.EnglishFont))
	case !validFontSize(s.FontSize):
		return ValidationError(fmt.Sprintf("unsupported font size %d", s.FontSize))
	case !s.ColorTheme.Valid():
		return ValidationError(fmt.Sprintf("unknown color theme %q", s.ColorTheme))
	}
	return nil
}
