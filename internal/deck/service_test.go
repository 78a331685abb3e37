package deck_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vovarama1992/paper2deck/internal/deck"
	"github.com/Vovarama1992/paper2deck/internal/domain"
)

var fixedNow = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

func newRenderer() *deck.Renderer {
	r := deck.NewRenderer(zap.NewNop().Sugar())
	r.Now = func() time.Time { return fixedNow }
	return r
}

func records(n int) []domain.TranslatedSlideContent {
	out := make([]domain.TranslatedSlideContent, n)
	for i := range out {
		out[i] = domain.TranslatedSlideContent{
			SlideNumber:     i + 1,
			OriginalSection: fmt.Sprintf("Section %d", i+1),
			TitleEN:         fmt.Sprintf("English Title %d", i+1),
			ContentEN:       fmt.Sprintf("English content %d", i+1),
			KeyPointsEN:     []string{fmt.Sprintf("en point %d", i+1)},
			TitleFA:         fmt.Sprintf("عنوان %d", i+1),
			ContentFA:       fmt.Sprintf("محتوا %d", i+1),
			KeyPointsFA:     []string{fmt.Sprintf("نکته %d", i+1)},
		}
	}
	return out
}

func settings(theme domain.ColorTheme) domain.GenerationSettings {
	raw := domain.DefaultRawSettings()
	raw.PaperName = "Retina <&> Study"
	raw.ColorTheme = string(theme)
	s, err := domain.NewGenerationSettings(raw)
	if err != nil {
		panic(err)
	}
	return s
}

func readPart(t *testing.T, pptx []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(pptx), int64(len(pptx)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func TestRender_SlideCountParity(t *testing.T) {
	for _, n := range []int{1, 5, 12} {
		decks, err := newRenderer().Render(context.Background(), records(n), settings(domain.ThemeProfessional))
		require.NoError(t, err)

		pres, err := deck.CountSlides(decks.Presentation)
		require.NoError(t, err)
		presenter, err := deck.CountSlides(decks.Presenter)
		require.NoError(t, err)
		notes, err := deck.CountNotes(decks.Presenter)
		require.NoError(t, err)

		assert.Equal(t, n+1, pres)
		assert.Equal(t, n, presenter)
		assert.Equal(t, presenter, pres-1)
		assert.Equal(t, n, notes)
	}
}

func TestRender_Deterministic(t *testing.T) {
	s := settings(domain.ThemeDark)
	a, err := newRenderer().Render(context.Background(), records(4), s)
	require.NoError(t, err)
	b, err := newRenderer().Render(context.Background(), records(4), s)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(a.Presentation, b.Presentation))
	assert.True(t, bytes.Equal(a.Presenter, b.Presenter))

	core := readPart(t, a.Presentation, "docProps/core.xml")
	assert.Contains(t, core, "2024-03-01T10:30:00Z")
}

func TestRender_PaletteAndTypography(t *testing.T) {
	cases := map[domain.ColorTheme]string{
		domain.ThemeProfessional: "F0F5FA",
		domain.ThemeHighContrast: "FFFFFF",
		domain.ThemeDark:         "2D2D30",
	}
	for theme, bg := range cases {
		t.Run(string(theme), func(t *testing.T) {
			s := settings(theme)
			decks, err := newRenderer().Render(context.Background(), records(2), s)
			require.NoError(t, err)

			slide := readPart(t, decks.Presentation, "ppt/slides/slide2.xml")
			assert.Contains(t, slide, `<a:srgbClr val="`+bg+`"/></a:solidFill><a:effectLst/></p:bgPr>`)
			assert.Contains(t, slide, `val="`+theme.Palette().Accent.Hex()+`"`)
			assert.Contains(t, slide, `<p:fade/>`)
			assert.Contains(t, slide, `algn="r" rtl="1"`)
			assert.Contains(t, slide, fmt.Sprintf(`sz="%d" b="1"`, (s.FontSize+8)*100))
			assert.Contains(t, slide, `typeface="IRANSans"`)
			assert.Contains(t, slide, "• نکته 1")
		})
	}
}

func TestRender_TitleSlide(t *testing.T) {
	decks, err := newRenderer().Render(context.Background(), records(1), settings(domain.ThemeProfessional))
	require.NoError(t, err)

	title := readPart(t, decks.Presentation, "ppt/slides/slide1.xml")
	assert.Contains(t, title, "Retina &lt;&amp;&gt; Study")
	assert.Contains(t, title, "Generated by SlideCraft AI")
	assert.Contains(t, title, `sz="3600" b="1"`)
	assert.Contains(t, title, `typeface="Calibri"`)
}

func TestRender_PresenterNotes(t *testing.T) {
	decks, err := newRenderer().Render(context.Background(), records(2), settings(domain.ThemeDark))
	require.NoError(t, err)

	slide := readPart(t, decks.Presenter, "ppt/slides/slide2.xml")
	assert.Contains(t, slide, `<a:srgbClr val="FFFFFF"/></a:solidFill><a:effectLst/>`)
	assert.Contains(t, slide, `sz="3200" b="1"`)
	assert.Contains(t, slide, `sz="2000"`)
	assert.NotContains(t, slide, "<p:transition")

	notes := readPart(t, decks.Presenter, "ppt/notesSlides/notesSlide2.xml")
	for _, want := range []string{"SPEAKER NOTES", "English Title 2", "نکته 2", "English content 2", "en point 2"} {
		assert.Contains(t, notes, want)
	}
	assert.Less(t, strings.Index(notes, "Key Points (FA)"), strings.Index(notes, "Original Content (EN)"))
	assert.Less(t, strings.Index(notes, "Original Content (EN)"), strings.Index(notes, "Key Points (EN)"))
}

func TestRender_WellFormedParts(t *testing.T) {
	decks, err := newRenderer().Render(context.Background(), records(3), settings(domain.ThemeProfessional))
	require.NoError(t, err)

	for _, pkg := range [][]byte{decks.Presentation, decks.Presenter} {
		zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
		require.NoError(t, err)
		for _, f := range zr.File {
			rc, err := f.Open()
			require.NoError(t, err)
			dec := xml.NewDecoder(rc)
			for {
				_, err := dec.Token()
				if errors.Is(err, io.EOF) {
					break
				}
				require.NoError(t, err, f.Name)
			}
			rc.Close()
		}
	}
}

func TestRender_EmptyInput(t *testing.T) {
	_, err := newRenderer().Render(context.Background(), nil, settings(domain.ThemeProfessional))
	assert.Equal(t, domain.KindRender, domain.KindOf(err))
}

func TestRender_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	decks, err := newRenderer().Render(ctx, records(2), settings(domain.ThemeProfessional))
	assert.Equal(t, domain.KindRender, domain.KindOf(err))
	assert.Nil(t, decks.Presentation)
	assert.Nil(t, decks.Presenter)
}
