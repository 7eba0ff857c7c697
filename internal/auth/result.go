package auth

import (
	"errors"
	"net/http"

	"github.com/frahmantamala/hr-portal/internal"
)

// Result is the uniform outcome of every auth operation. Code and Token are
// for the transport layer only and never serialized.
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`

	Code  int    `json:"-"`
	Token string `json:"-"`
}

func succeeded(code int, data interface{}, message string) Result {
	return Result{Success: true, Data: data, Message: message, Code: code}
}

// failed converts an error into a failure result. Business failures keep
// their message and use failureCode; anything else becomes a generic 500.
func failed(err error, failureCode int) Result {
	var appErr *internal.AppError
	if errors.As(err, &appErr) && appErr.Type != internal.ErrorTypeInternal {
		return Result{Success: false, Error: appErr.GetDetailedMessage(), Code: failureCode}
	}
	return Result{Success: false, Error: "Internal server error", Code: http.StatusInternalServerError}
}
