package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alexanderramin/planpilot/internal/audio"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/intelligence"
	"github.com/alexanderramin/planpilot/internal/llm"
	"github.com/alexanderramin/planpilot/internal/repository"
	"github.com/alexanderramin/planpilot/internal/service"
)

// errBadRequest marks request bodies and parameters that fail to parse.
var errBadRequest = errors.New("bad request")

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	var statusErr *llm.StatusError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrNoSchedule),
		errors.Is(err, domain.ErrInvalidSchedule),
		errors.Is(err, audio.ErrMalformedAudio),
		errors.Is(err, intelligence.ErrMissingPrerequisite),
		errors.Is(err, intelligence.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrMissingAPIKey),
		errors.Is(err, llm.ErrUnknownProvider):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrRetryExhausted),
		errors.Is(err, llm.ErrTimeout),
		errors.Is(err, llm.ErrProviderUnavailable),
		errors.Is(err, llm.ErrInvalidOutput),
		errors.Is(err, intelligence.ErrEmptyResult),
		errors.As(err, &statusErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError hides internal error text behind a generic message.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
