package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Vovarama1992/paper2deck/internal/domain"
)

// DefaultMaxChars bounds the article text sent for summarization. Text past
// the budget is dropped, not summarized.
const DefaultMaxChars = 25000

type Builder struct {
	MaxChars int
}

func NewBuilder(maxChars int) *Builder {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Builder{MaxChars: maxChars}
}

// Truncate keeps the first MaxChars runes of text.
func (b *Builder) Truncate(text string) string {
	max := b.MaxChars
	if max <= 0 {
		max = DefaultMaxChars
	}
	if len(text) <= max {
		return text
	}
	n := 0
	for i := range text {
		if n == max {
			return text[:i]
		}
		n++
	}
	return text
}

func (b *Builder) Summarization(text string, numSlides int, level domain.SummarizationLevel, paperName string) string {
	return fmt.Sprintf(`You are an expert academic researcher and presentation creator. Summarize the following scientific article and divide it into exactly %[1]d distinct sections, each suitable for one presentation slide.

Article Name: %[2]s
Target Number of Slides: %[1]d
Summarization Detail Level: %[3]s (summarize to approx. %[4]d%% of the original content)

Instructions:
- The summarization ratio should be approximately %[4]d%% (detail level: %[3]s).
- Maintain scientific accuracy and use key terminology from the text.
- Ensure a logical flow from one slide to the next.
- Number the slides sequentially starting at 1.
- For each slide, provide a title, a paragraph of content, 3-5 bullet points (key_points) and a short reference to the section of the article it is based on (original_section).
- Identify the scientific field of the article (for example "Ophthalmology").
- Return ONLY a single valid JSON object. Do not include any text or markdown before or after it.

JSON Output Format:
{
  "field": "Scientific field of the article",
  "slide_summaries": [
    {
      "slide_number": 1,
      "title": "Slide Title in English",
      "content": "Summarized content paragraph in English.",
      "key_points": ["Key point 1 in English", "Key point 2 in English"],
      "original_section": "Reference to the original section of the text"
    }
  ]
}

Article Text:
---
%[5]s
---
`, numSlides, paperName, level, level.Percent(), b.Truncate(text))
}

type translationInput struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	KeyPoints []string `json:"key_points"`
}

func (b *Builder) Translation(slides []domain.SlideContent) (string, error) {
	in := make([]translationInput, len(slides))
	for i, s := range slides {
		in[i] = translationInput{Title: s.Title, Content: s.Content, KeyPoints: s.KeyPoints}
	}

	payload, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal slides: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `You are an expert translator specializing in scientific and academic texts. Translate the following JSON array of %d slides from English to Farsi.

Input JSON:
%s

Instructions:
- Provide a professional, accurate and fluent Farsi translation.
- Translate "title", "content" and every string in "key_points".
- Keep scientific terms that have no common Farsi equivalent in English.
- Return exactly %d entries, in the same order as the input. Do not merge, split, add or drop slides.
- Return ONLY a single valid JSON object. Do not include any text or markdown before or after it.

JSON Output Format:
{
  "translated_slides": [
    {
      "title_fa": "Translated title in Farsi",
      "content_fa": "Translated content paragraph in Farsi.",
      "key_points_fa": ["Translated key point 1 in Farsi", "Translated key point 2 in Farsi"]
    }
  ]
}
`, len(slides), payload, len(slides))

	return sb.String(), nil
}
