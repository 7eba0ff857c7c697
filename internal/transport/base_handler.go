package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/pkg/logger"
)

const maxBodyBytes = 1 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, status, data, h.Logger)
}

// WriteError writes the failure envelope {success:false,error:message}.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Debug("http error", "status", status, "message", message)
	h.WriteJSON(w, status, internal.APIResponse{Success: false, Error: message})
}

// WriteAppError answers with the status and message carried by an AppError.
// Anything else is logged and reported as a generic 500.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *internal.AppError
	if errors.As(err, &appErr) && appErr.Type != internal.ErrorTypeInternal {
		status, body := appErr.ToHTTPResponse()
		h.WriteJSON(w, status, body)
		return
	}
	logger.From(r.Context()).Error("request failed", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "Internal server error")
}

// DecodeJSON reads a bounded JSON body into dst.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// WriteJSON is shared with middleware that has no BaseHandler at hand.
func WriteJSON(w http.ResponseWriter, status int, data interface{}, lg *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil && lg != nil {
		lg.Error("failed to encode JSON response", "error", err)
	}
}
