package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/gymsession/internal/api"
	"github.com/dmitrijs2005/gymsession/internal/common"
	"github.com/dmitrijs2005/gymsession/internal/server/users"
)

const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, api.ErrorResponse{Message: message})
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

// mapDomainError returns the status and the message shown to the caller.
func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, users.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, users.ErrEmailTaken):
		return http.StatusConflict, err.Error()
	case errors.Is(err, users.ErrOldPasswordMismatch),
		errors.Is(err, users.ErrOldPasswordRequired),
		errors.Is(err, users.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "user not found"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
