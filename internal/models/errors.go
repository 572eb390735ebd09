package models

import (
	"encoding/json"
)

// FieldError is one entry of an array-shaped upstream error: a validation
// failure bound to a specific form field.
type FieldError struct {
	Property string `json:"property"`
	Message  string `json:"message"`
}

// ErrorEnvelope is the upstream error contract. "message" is either a plain
// string (general/business error) or an array of field errors; both decode
// into this one type.
type ErrorEnvelope struct {
	Message string
	Fields  []FieldError
}

const UnknownErrorMessage = "An unknown error occurred"

func (e *ErrorEnvelope) UnmarshalJSON(b []byte) error {
	var probe struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	if len(probe.Message) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(probe.Message, &s); err == nil {
		e.Message = s
		return nil
	}
	var fields []FieldError
	if err := json.Unmarshal(probe.Message, &fields); err == nil {
		e.Fields = fields
		return nil
	}
	// unanticipated shape: keep the envelope empty so callers fall back to
	// the generic message instead of failing silently
	return nil
}

func (e ErrorEnvelope) MarshalJSON() ([]byte, error) {
	if len(e.Fields) > 0 {
		return json.Marshal(map[string]interface{}{"message": e.Fields})
	}
	msg := e.Message
	if msg == "" {
		msg = UnknownErrorMessage
	}
	return json.Marshal(map[string]interface{}{"message": msg})
}

// IsFieldErrors reports whether the envelope carries per-field messages.
func (e ErrorEnvelope) IsFieldErrors() bool { return len(e.Fields) > 0 }

// Text returns the general error message, substituting the unknown-error
// fallback when the upstream sent nothing usable.
func (e ErrorEnvelope) Text() string {
	if e.Message == "" {
		return UnknownErrorMessage
	}
	return e.Message
}

// FormatFields folds field errors into a property->message map for form
// binding on the client.
func FormatFields(fields []FieldError) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Property] = f.Message
	}
	return out
}
