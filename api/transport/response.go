package transport

import (
	"encoding/json"

	"github.com/Matrix-I/todo-backend/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status  string      `json:"status"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	Warning string      `json:"warning,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewSuccessWithWarning returns a success envelope carrying a non-fatal
// side-effect failure. The mutation itself succeeded; the warning tells
// the client its reminder may lag until the next reconcile.
func NewSuccessWithWarning(data interface{}, warning string, meta interface{}) Envelope {
	return Envelope{
		Status:  "success",
		Data:    data,
		Warning: warning,
		Meta:    meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// AuthResponse pairs a device session with its bearer token.
type AuthResponse struct {
	Session *domain.DeviceSession `json:"session"`
	Token   string                `json:"token"`
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
