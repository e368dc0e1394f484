package models

import "strings"

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is returned when a request body fails field constraints.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Message is the body of simple responses and errors.
type Message struct {
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}
