package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/docxreader/internal/apperr"
	"github.com/starford/docxreader/internal/docservice"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps domain errors to status codes. Unexpected errors are logged
// under op and reported as 500.
func writeError(w http.ResponseWriter, op string, err error) {
	var (
		qe  *apperr.QueryError
		pe  *apperr.PackageError
		fe  *apperr.FormatError
		ves validation.Errors
	)
	switch {
	case errors.As(err, &qe):
		writeJSON(w, http.StatusBadRequest, errorBody(qe.Error()))
	case errors.As(err, &ves):
		writeJSON(w, http.StatusBadRequest, errorBody(ves.Error()))
	case errors.As(err, &pe), errors.As(err, &fe), errors.Is(err, docservice.ErrNotDocx):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrNoDocument):
		writeJSON(w, http.StatusNotFound, errorBody(apperr.ErrNoDocument.Error()))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
