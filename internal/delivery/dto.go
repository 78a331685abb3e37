package delivery

import (
	"encoding/json"
	"net/http"

	"github.com/Vovarama1992/paper2deck/internal/domain"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type modelsResponse struct {
	Models []domain.AIModel `json:"models"`
}

type validateKeyRequest struct {
	APIKey string `json:"apiKey"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

// statusFor maps an error kind onto the HTTP status of the response.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindExtraction:
		return http.StatusUnprocessableEntity
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindUpstream, domain.KindParse, domain.KindConsistency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides unclassified errors from clients.
func publicMessage(err error) string {
	if domain.KindOf(err) == domain.KindInternal {
		return "internal error"
	}
	return domain.MessageOf(err)
}
