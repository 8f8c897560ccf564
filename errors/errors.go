package errors

import (
	"fmt"
	"net/http"
)

// Kind categorizes failures for the digest pipeline. Collaborators map
// kinds to HTTP statuses; internal retry/fallback decisions key off them.
type Kind string

const (
	KindInvalidIdentifier  Kind = "invalid_identifier"
	KindEmptyTranscript    Kind = "empty_transcript"
	KindStrategyExhausted  Kind = "strategy_exhausted"
	KindProviderTransient  Kind = "provider_transient"
	KindAllProvidersFailed Kind = "all_providers_failed"
	KindInternal           Kind = "internal"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, code int, op string, err error, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidIdentifier(op string, err error, message string) *AppError {
	return New(KindInvalidIdentifier, http.StatusBadRequest, op, err, message)
}

func EmptyTranscript(op string, message string) *AppError {
	return New(KindEmptyTranscript, http.StatusInternalServerError, op, nil, message)
}

func StrategyExhausted(op string, message string) *AppError {
	return New(KindStrategyExhausted, http.StatusNotFound, op, nil, message)
}

func ProviderTransient(op string, err error, message string) *AppError {
	return New(KindProviderTransient, http.StatusBadGateway, op, err, message)
}

func AllProvidersFailed(op string, err error, message string) *AppError {
	return New(KindAllProvidersFailed, http.StatusBadGateway, op, err, message)
}

func Internal(op string, err error, message string) *AppError {
	return New(KindInternal, http.StatusInternalServerError, op, err, message)
}

// IsKind reports whether err or any error in its chain is an AppError of
// the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func IsInvalidIdentifier(err error) bool { return IsKind(err, KindInvalidIdentifier) }

func IsEmptyTranscript(err error) bool { return IsKind(err, KindEmptyTranscript) }

func IsStrategyExhausted(err error) bool { return IsKind(err, KindStrategyExhausted) }

func IsProviderTransient(err error) bool { return IsKind(err, KindProviderTransient) }

func IsAllProvidersFailed(err error) bool { return IsKind(err, KindAllProvidersFailed) }
