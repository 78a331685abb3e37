package domain

import "time"

const DefaultField = "Scientific Article"

// SlideContent is one English slide unit produced by summarization.
type SlideContent struct {
	SlideNumber     int      `json:"slide_number"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	KeyPoints       []string `json:"key_points"`
	OriginalSection string   `json:"original_section"`
}

// SlidePlan is the ordered summarization output.
type SlidePlan struct {
	Field  string
	Slides []SlideContent
}

// TranslatedSlideContent carries both language variants of one slide.
type TranslatedSlideContent struct {
	SlideNumber     int
	OriginalSection string

	TitleEN     string
	ContentEN   string
	KeyPointsEN []string

	TitleFA     string
	ContentFA   string
	KeyPointsFA []string
}

type AIModel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Statistics struct {
	Source       string `json:"source"`
	Field        string `json:"field"`
	PDFPages     int    `json:"pdfPages"`
	Slides       int    `json:"slides"`
	SummaryLevel string `json:"summaryLevel"`
	Duration     string `json:"duration"`
	ModelUsed    string `json:"modelUsed"`
}

type GenerationResult struct {
	Statistics      Statistics `json:"statistics"`
	PresentationURL string     `json:"presentationUrl"`
	PresenterURL    string     `json:"presenterUrl"`
}

const PPTXContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Artifact is a rendered file waiting for its single download.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}
