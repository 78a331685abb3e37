package prompts_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/paper2deck/internal/domain"
	"github.com/Vovarama1992/paper2deck/internal/prompts"
)

func TestSummarization_EmbedsCountAndRatio(t *testing.T) {
	b := prompts.NewBuilder(0)

	cases := map[domain.SummarizationLevel]string{
		domain.LevelLow:    "30%",
		domain.LevelMedium: "50%",
		domain.LevelHigh:   "70%",
	}
	for level, ratio := range cases {
		p := b.Summarization("some article text", 17, level, "Paper")
		assert.Contains(t, p, "exactly 17 distinct sections")
		assert.Contains(t, p, "Target Number of Slides: 17")
		assert.Contains(t, p, ratio)
		assert.Contains(t, p, string(level))
		assert.Contains(t, p, `"slide_summaries"`)
		assert.Contains(t, p, "some article text")
	}
}

func TestSummarization_TruncatesToBudget(t *testing.T) {
	b := prompts.NewBuilder(100)
	text := strings.Repeat("a", 100) + "TAIL"

	p := b.Summarization(text, 5, domain.LevelMedium, "Paper")
	assert.Contains(t, p, strings.Repeat("a", 100))
	assert.NotContains(t, p, "TAIL")
}

func TestTruncate_RuneSafe(t *testing.T) {
	b := prompts.NewBuilder(3)
	assert.Equal(t, "سلا", b.Truncate("سلام"))
	assert.Equal(t, "ab", b.Truncate("ab"))
	assert.Equal(t, prompts.DefaultMaxChars, prompts.NewBuilder(-1).MaxChars)
}

func TestTranslation_OnlyEnglishFieldsInOrder(t *testing.T) {
	slides := []domain.SlideContent{
		{SlideNumber: 1, Title: "First", Content: "Alpha", KeyPoints: []string{"a1"}, OriginalSection: "SECRET-SECTION"},
		{SlideNumber: 2, Title: "Second", Content: "Beta", KeyPoints: []string{"b1", "b2"}},
	}

	p, err := prompts.NewBuilder(0).Translation(slides)
	require.NoError(t, err)

	assert.Contains(t, p, `"title": "First"`)
	assert.Contains(t, p, `"key_points": [`)
	assert.NotContains(t, p, "SECRET-SECTION")
	assert.NotContains(t, p, "slide_number\": 1")
	assert.Less(t, strings.Index(p, "First"), strings.Index(p, "Second"))
	assert.Contains(t, p, "Return exactly 2 entries")
	assert.Contains(t, p, `"translated_slides"`)
}
