package session

import (
	"errors"
	"fmt"
)

// SessionError represents a press the session could not take.
//
// A SessionError never changes state: the press is rejected before the
// engine sees it, or its journal write is rolled back.
type SessionError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// SessionID identifies the affected session.
	SessionID string

	// Key is the raw label that was pressed, if any.
	Key string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes session errors.
type ErrorCode string

const (
	// ErrCodeSessionClosed indicates a press after Close.
	ErrCodeSessionClosed ErrorCode = "SESSION_CLOSED"

	// ErrCodeUnknownKey indicates a label that maps to no button.
	ErrCodeUnknownKey ErrorCode = "UNKNOWN_KEY"

	// ErrCodeJournalFailed indicates the press could not be journaled.
	ErrCodeJournalFailed ErrorCode = "JOURNAL_FAILED"
)

// Error implements the error interface.
func (e *SessionError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Key != "" {
		msg += fmt.Sprintf(" (key=%q)", e.Key)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// IsUnknownKey returns true if err is an unknown key rejection.
// Uses errors.As to handle wrapped errors.
func IsUnknownKey(err error) bool {
	return codeOf(err) == ErrCodeUnknownKey
}

// IsClosed returns true if err is a press after Close.
func IsClosed(err error) bool {
	return codeOf(err) == ErrCodeSessionClosed
}

// IsJournalFailure returns true if err is a failed journal write.
func IsJournalFailure(err error) bool {
	return codeOf(err) == ErrCodeJournalFailed
}

func codeOf(err error) ErrorCode {
	var se *SessionError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
