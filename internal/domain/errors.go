package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrCodeEmptyResultSet     ErrorCode = "EMPTY_RESULT_SET"
	ErrCodeMissingTeamName    ErrorCode = "MISSING_TEAM_NAME"
	ErrCodeInvalidKills       ErrorCode = "INVALID_KILLS"
	ErrCodeInvalidKillCount   ErrorCode = "INVALID_KILL_COUNT"
	ErrCodeInvalidPlacement   ErrorCode = "INVALID_PLACEMENT"
	ErrCodeDuplicatePlacement ErrorCode = "DUPLICATE_PLACEMENT"
	ErrCodeDuplicateTeamName  ErrorCode = "DUPLICATE_TEAM_NAME"
	ErrCodeInvalidState       ErrorCode = "INVALID_STATE"
	ErrCodeInvalidLimit       ErrorCode = "INVALID_QUALIFICATION_LIMIT"
	ErrCodeInvalidAudio       ErrorCode = "INVALID_AUDIO_ACTION"
)

// ValidationError reports malformed input. It is always raised before any
// state is mutated. Index is the offending result entry, or -1 when the
// error is not tied to a single entry.
type ValidationError struct {
	Code    ErrorCode
	Message string
	Index   int
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (entry %d)", e.Code, e.Message, e.Index)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(code ErrorCode, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message, Index: -1}
}

func NewEntryError(code ErrorCode, index int, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message, Index: index}
}

type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// HasCode reports whether err, or any error joined into it, is a
// ValidationError with the given code.
func HasCode(err error, code ErrorCode) bool {
	switch e := err.(type) {
	case nil:
		return false
	case *ValidationError:
		return e.Code == code
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if HasCode(inner, code) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return HasCode(e.Unwrap(), code)
	}
	return false
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
