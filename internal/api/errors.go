package api

import (
	"encoding/json"
	"net/http"

	"github.com/julianstephens/pjournal/internal/errors"
	"github.com/julianstephens/pjournal/internal/logger"
)

type errorBody struct {
	Error  string         `json:"error"`
	Kind   errors.Kind    `json:"kind"`
	Issues []errors.Issue `json:"issues,omitempty"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind errors.Kind) int {
	switch kind {
	case errors.KindValidation:
		return http.StatusUnprocessableEntity
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindConflict:
		return http.StatusConflict
	case errors.KindInvalid, errors.KindEmptySubmission, errors.KindNoTemplate:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind := errors.KindOf(err)
	status := StatusFor(kind)
	body := errorBody{Error: err.Error(), Kind: kind}
	if e, ok := errors.As(err); ok {
		body.Issues = e.Issues
	}
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}
