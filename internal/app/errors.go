package app

import (
	"errors"
	"strings"

	"recipe-planner/internal/llm"
	"recipe-planner/internal/recipe"
)

var (
	// ErrUnauthenticated is returned by every action called without a user.
	ErrUnauthenticated = errors.New("Not authenticated")
	// ErrNotFound is returned when the target row does not exist for the user.
	ErrNotFound = errors.New("Not found")
)

// ValidationError rejects an input before any side effect.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Kind classifies an Error.
type Kind int

const (
	KindStorage Kind = iota
	KindInference
)

// Error is a failure shown to the user as Message. Err keeps the cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func storageError(message string, err error) error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

func inferenceError(prefix string, err error) error {
	return &Error{Kind: KindInference, Message: InferenceMessage(prefix, err), Err: err}
}

// InferenceMessage turns a model failure into the message shown to the user.
// Unrecognized failures read "<prefix>: <cause>".
func InferenceMessage(prefix string, err error) string {
	msg := err.Error()
	switch {
	case errors.Is(err, llm.ErrInvalidAPIKey) || strings.Contains(msg, "API key"):
		return "Gemini API key is invalid or missing"
	case errors.Is(err, llm.ErrQuotaExceeded) || strings.Contains(strings.ToLower(msg), "quota"):
		return "API quota exceeded. Please try again later."
	case errors.Is(err, llm.ErrEmptyResponse):
		return "AI returned empty response"
	case errors.Is(err, recipe.ErrParseResponse) || strings.Contains(msg, "JSON"):
		return "Failed to parse AI response. Please try again."
	default:
		return prefix + ": " + msg
	}
}

// Message is the user-facing text of any action error.
func Message(err error) string {
	var ve *ValidationError
	var ae *Error
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &ae):
		return ae.Message
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrNotFound):
		return err.Error()
	default:
		return "Something went wrong"
	}
}
