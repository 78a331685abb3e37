package delivery_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vovarama1992/paper2deck/internal/artifacts"
	"github.com/Vovarama1992/paper2deck/internal/deck"
	"github.com/Vovarama1992/paper2deck/internal/delivery"
	"github.com/Vovarama1992/paper2deck/internal/domain"
	"github.com/Vovarama1992/paper2deck/internal/generation"
	"github.com/Vovarama1992/paper2deck/internal/notificator"
	"github.com/Vovarama1992/paper2deck/internal/pdf"
	"github.com/Vovarama1992/paper2deck/internal/pdf/pdftest"
	"github.com/Vovarama1992/paper2deck/internal/prompts"
	"github.com/Vovarama1992/paper2deck/internal/slides"
)

type countingCompleter struct {
	calls atomic.Int32
	err   error
}

func (c *countingCompleter) Complete(ctx context.Context, prompt, credential, modelID string) (json.RawMessage, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	if strings.Contains(prompt, `"slide_summaries"`) {
		var entries []string
		for i := 1; i <= 5; i++ {
			entries = append(entries, fmt.Sprintf(`{"slide_number":%d,"title":"T%d","content":"C%d","key_points":["k"]}`, i, i, i))
		}
		return json.RawMessage(`{"field":"Optics","slide_summaries":[` + strings.Join(entries, ",") + `]}`), nil
	}
	var entries []string
	for i := 1; i <= 5; i++ {
		entries = append(entries, `{"title_fa":"عنوان","content_fa":"محتوا","key_points_fa":["نکته"]}`)
	}
	return json.RawMessage(`{"translated_slides":[` + strings.Join(entries, ",") + `]}`), nil
}

type stubKeys struct {
	models []domain.AIModel
	err    error
}

func (s stubKeys) Validate(ctx context.Context, credential string) ([]domain.AIModel, error) {
	return s.models, s.err
}

type server struct {
	router http.Handler
	ai     *countingCompleter
	saver  *artifacts.Service
}

func newServer(t *testing.T, ai *countingCompleter, keys delivery.KeyValidator, ratePerMinute int) *server {
	t.Helper()
	log := zap.NewNop().Sugar()
	builder := prompts.NewBuilder(0)
	saver := artifacts.NewService(artifacts.NewMemoryStore(0, time.Minute), time.Minute, log)

	svc := generation.NewService(
		pdf.NewPDFService(pdf.NewLedongthucExtractor(), log),
		slides.NewPlanner(ai, builder, log),
		slides.NewTranslator(ai, builder, log),
		deck.NewRenderer(log),
		saver,
		notificator.NewService(notificator.NopInfra{}),
		time.Minute,
		log,
	)

	h := delivery.NewHandler(svc, saver, keys, 5<<20, logger.NewZapLogger(log))
	r := chi.NewRouter()
	delivery.RegisterRoutes(r, h, ratePerMinute)
	return &server{router: r, ai: ai, saver: saver}
}

func multipartRequest(t *testing.T, fields map[string]string, pdfData []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if pdfData != nil {
		fw, err := mw.CreateFormFile("pdfFile", "paper.pdf")
		require.NoError(t, err)
		_, err = fw.Write(pdfData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/generate-presentation", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func formFields(numSlides string) map[string]string {
	return map[string]string{
		"paperName":          "Optics Paper",
		"numSlides":          numSlides,
		"summarizationLevel": "medium",
		"farsiFont":          "Vazir",
		"englishFont":        "Arial",
		"fontSize":           "18",
		"colorTheme":         "dark",
		"apiKey":             "key",
		"selectedModel":      "gemini-1.5-flash",
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestGenerate_ThenDownloadOnce(t *testing.T) {
	s := newServer(t, &countingCompleter{}, stubKeys{}, 0)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, multipartRequest(t, formFields("5"), pdftest.Build("Some optics text")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decode(t, rec)
	require.True(t, env.Success)
	var result domain.GenerationResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 5, result.Statistics.Slides)
	assert.Equal(t, "medium (50%)", result.Statistics.SummaryLevel)
	assert.EqualValues(t, 2, s.ai.calls.Load())

	first := httptest.NewRecorder()
	s.router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, result.PresentationURL, nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, domain.PPTXContentType, first.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Presentation_Optics_Paper.pptx"`, first.Header().Get("Content-Disposition"))
	n, err := deck.CountSlides(first.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	second := httptest.NewRecorder()
	s.router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, result.PresentationURL, nil))
	assert.Equal(t, http.StatusNotFound, second.Code)
	env = decode(t, second)
	assert.False(t, env.Success)
	assert.Equal(t, "File not found or expired.", env.Error)
}

func TestDownload_UnknownID(t *testing.T) {
	s := newServer(t, &countingCompleter{}, stubKeys{}, 0)

	for _, id := range []string{"nope", "00000000-0000-0000-0000-000000000000"} {
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/download/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
}

func TestGenerate_RejectsBeforeAnyAICall(t *testing.T) {
	cases := map[string]struct {
		fields map[string]string
		pdf    []byte
	}{
		"too few slides": {formFields("3"), pdftest.Build("text")},
		"too many":       {formFields("101"), pdftest.Build("text")},
		"not a number":   {formFields("ten"), pdftest.Build("text")},
		"missing file":   {formFields("5"), nil},
		"not a pdf":      {formFields("5"), []byte("hello")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := newServer(t, &countingCompleter{}, stubKeys{}, 0)
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, multipartRequest(t, tc.fields, tc.pdf))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.True(t, strings.HasPrefix(env.Error, "Generation failed: "), env.Error)
			assert.Zero(t, s.ai.calls.Load())
		})
	}
}

func TestGenerate_MissingCredential(t *testing.T) {
	s := newServer(t, &countingCompleter{}, stubKeys{}, 0)
	fields := formFields("5")
	delete(fields, "apiKey")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, multipartRequest(t, fields, pdftest.Build("text")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, s.ai.calls.Load())
}

func TestGenerate_StatusByKind(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
		msg    string
	}{
		"auth":     {domain.AuthError("API key not valid. Please pass a valid API key.", nil), http.StatusUnauthorized, "Generation failed: API key not valid. Please pass a valid API key."},
		"upstream": {domain.UpstreamError("model overloaded", nil), http.StatusBadGateway, "Generation failed: model overloaded"},
		"parse":    {domain.ParseError("AI response is not valid JSON", nil), http.StatusBadGateway, "Generation failed: AI response is not valid JSON"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := newServer(t, &countingCompleter{err: tc.err}, stubKeys{}, 0)
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, multipartRequest(t, formFields("5"), pdftest.Build("text")))

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.msg, decode(t, rec).Error)
		})
	}
}

func TestGenerate_UnreadablePDF(t *testing.T) {
	s := newServer(t, &countingCompleter{}, stubKeys{}, 0)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, multipartRequest(t, formFields("5"), []byte("%PDF-1.4 truncated")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, s.ai.calls.Load())
}

func TestGenerate_RateLimited(t *testing.T) {
	s := newServer(t, &countingCompleter{}, stubKeys{}, 1)

	first := httptest.NewRecorder()
	s.router.ServeHTTP(first, multipartRequest(t, formFields("3"), pdftest.Build("text")))
	assert.Equal(t, http.StatusBadRequest, first.Code)

	second := httptest.NewRecorder()
	s.router.ServeHTTP(second, multipartRequest(t, formFields("3"), pdftest.Build("text")))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestValidateKey(t *testing.T) {
	models := []domain.AIModel{{ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash"}}

	t.Run("ok", func(t *testing.T) {
		s := newServer(t, &countingCompleter{}, stubKeys{models: models}, 0)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/validate-key", strings.NewReader(`{"apiKey":"k"}`)))

		require.Equal(t, http.StatusOK, rec.Code)
		env := decode(t, rec)
		assert.True(t, env.Success)
		assert.JSONEq(t, `{"models":[{"id":"gemini-1.5-flash","name":"Gemini 1.5 Flash"}]}`, string(env.Data))
	})

	t.Run("missing key", func(t *testing.T) {
		s := newServer(t, &countingCompleter{}, stubKeys{models: models}, 0)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/validate-key", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejected", func(t *testing.T) {
		s := newServer(t, &countingCompleter{}, stubKeys{err: domain.AuthError("API key not valid.", nil)}, 0)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/validate-key", strings.NewReader(`{"apiKey":"bad"}`)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Validation Failed: API key not valid.", decode(t, rec).Error)
	})
}

func TestPing(t *testing.T) {
	s := newServer(t, &countingCompleter{}, stubKeys{}, 0)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "pong", rec.Body.String())
}
