package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"Articulate/apperr"
	"Articulate/cache"
	"Articulate/core/auth"
	"Articulate/logger"

	"github.com/getsentry/sentry-go"
)

const maxBodyBytes = 1 << 20

// errorBody 统一的错误响应
type errorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("写入响应失败", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string, details map[string]string) {
	writeJSON(w, status, errorBody{Error: message, Details: details})
}

// handleError maps a service error onto the response envelope.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *apperr.ValidationError
	var nf *apperr.NotFoundError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message, verr.Details)
	case errors.Is(err, apperr.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, apperr.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, nf.Error(), nil)
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", nil)
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, cache.ErrLockTimeout):
		writeError(w, http.StatusConflict, "Conflict, please retry", map[string]string{"_": err.Error()})
	default:
		logger.Error("请求处理失败",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.ErrorField(err))
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
	}
}

// decodeJSON reads the request body into dst; numbers in untyped fields stay json.Number.
// An empty body decodes as an empty object.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &apperr.ValidationError{
			Message: "Invalid JSON body",
			Details: map[string]string{"_": err.Error()},
		}
	}
	return nil
}

// ownerFrom returns the caller placed on the context by AuthMiddleware.
func ownerFrom(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, err := auth.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return auth.Identity{}, false
	}
	return id, true
}

// parseLimit reads ?limit=, falling back to def when absent.
func parseLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &apperr.ValidationError{
			Message: "Invalid query",
			Details: map[string]string{"limit": "must be an integer"},
		}
	}
	return n, nil
}

func deleted(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
