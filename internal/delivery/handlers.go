package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/Vovarama1992/paper2deck/internal/domain"
	"github.com/Vovarama1992/paper2deck/internal/generation"
)

type Generator interface {
	Generate(ctx context.Context, req generation.Request) (generation.Outcome, error)
}

type ArtifactTaker interface {
	Take(ctx context.Context, id string) (domain.Artifact, error)
}

type KeyValidator interface {
	Validate(ctx context.Context, credential string) ([]domain.AIModel, error)
}

type Handler struct {
	generator   Generator
	artifacts   ArtifactTaker
	keys        KeyValidator
	maxPDFBytes int64
	log         *logger.ZapLogger
}

func NewHandler(generator Generator, artifacts ArtifactTaker, keys KeyValidator, maxPDFBytes int64, log *logger.ZapLogger) *Handler {
	return &Handler{
		generator:   generator,
		artifacts:   artifacts,
		keys:        keys,
		maxPDFBytes: maxPDFBytes,
		log:         log,
	}
}

// ValidateKey lists the models a credential can use.
func (h *Handler) ValidateKey(w http.ResponseWriter, r *http.Request) {
	var req validateKeyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "API key is required.")
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		writeError(w, http.StatusBadRequest, "API key is required.")
		return
	}

	models, err := h.keys.Validate(r.Context(), req.APIKey)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "key validation failed", Error: err})
		writeError(w, statusFor(err), "Validation Failed: "+publicMessage(err))
		return
	}

	writeData(w, modelsResponse{Models: models})
}

func (h *Handler) GeneratePresentation(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseGenerateRequest(w, r)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid generation request", Error: err})
		writeError(w, statusFor(err), "Generation failed: "+publicMessage(err))
		return
	}

	out, err := h.generator.Generate(r.Context(), req)
	if err != nil {
		level := "warn"
		if statusFor(err) >= http.StatusInternalServerError {
			level = "error"
		}
		h.log.Log(logger.LogEntry{Level: level, Message: "generation failed", Error: err})
		writeError(w, statusFor(err), "Generation failed: "+publicMessage(err))
		return
	}

	writeData(w, out.Result)
}

func (h *Handler) parseGenerateRequest(w http.ResponseWriter, r *http.Request) (generation.Request, error) {
	// multipart overhead on top of the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.maxPDFBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return generation.Request{}, domain.ValidationError(fmt.Sprintf("PDF file is too large (max %s)", humanize.IBytes(uint64(h.maxPDFBytes))))
		}
		return generation.Request{}, domain.ValidationError("invalid multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("pdfFile")
	if err != nil {
		return generation.Request{}, domain.ValidationError("PDF file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxPDFBytes+1))
	if err != nil {
		return generation.Request{}, domain.ValidationError("PDF file could not be read")
	}
	if int64(len(data)) > h.maxPDFBytes {
		return generation.Request{}, domain.ValidationError(fmt.Sprintf("PDF file is too large (max %s)", humanize.IBytes(uint64(h.maxPDFBytes))))
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF")) {
		return generation.Request{}, domain.ValidationError("uploaded file is not a PDF")
	}

	raw := domain.DefaultRawSettings()
	raw.PaperName = r.FormValue("paperName")
	if v := r.FormValue("numSlides"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return generation.Request{}, domain.ValidationError("number of slides must be a whole number")
		}
		raw.NumSlides = n
	}
	if v := r.FormValue("fontSize"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return generation.Request{}, domain.ValidationError("font size must be a whole number")
		}
		raw.FontSize = n
	}
	setIfPresent(&raw.SummarizationLevel, r.FormValue("summarizationLevel"))
	setIfPresent(&raw.FarsiFont, r.FormValue("farsiFont"))
	setIfPresent(&raw.EnglishFont, r.FormValue("englishFont"))
	setIfPresent(&raw.ColorTheme, r.FormValue("colorTheme"))

	settings, err := domain.NewGenerationSettings(raw)
	if err != nil {
		return generation.Request{}, err
	}

	req := generation.Request{
		PDF:        data,
		Settings:   settings,
		Credential: strings.TrimSpace(r.FormValue("apiKey")),
		ModelID:    strings.TrimSpace(r.FormValue("selectedModel")),
	}
	return req, req.Validate()
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// Download serves an artifact once; the id is spent after the first hit.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, err := h.artifacts.Take(r.Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			h.log.Log(logger.LogEntry{Level: "error", Message: "download failed", Error: err})
		}
		writeError(w, http.StatusNotFound, "File not found or expired.")
		return
	}

	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", contentDisposition(a.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data)
}

// contentDisposition adds an RFC 5987 name when the filename is not ASCII.
func contentDisposition(name string) string {
	ascii := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	if ascii == name {
		return fmt.Sprintf(`attachment; filename="%s"`, name)
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, ascii, url.PathEscape(name))
}
