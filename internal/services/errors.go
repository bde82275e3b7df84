package services

import (
	"errors"

	apperrors "github.com/learnloop/activity-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Activity specific errors
	ErrActivityNotFound       = errors.New("activity not found")
	ErrActivityDuplicateTitle = errors.New("activity title already exists")
	ErrActivityNotDeletable   = errors.New("activity cannot be deleted - has existing attempts")
	ErrContentUnavailable     = errors.New("activity content could not be fetched")
	ErrContentInvalid         = errors.New("activity content could not be parsed")

	// Session specific errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionWrongDialect = errors.New("operation does not apply to this activity dialect")
	ErrSessionFinished     = errors.New("session already finished")

	// Attempt specific errors
	ErrAttemptNotFound = errors.New("attempt not found")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrActivityNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrContentInvalid) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrActivityDuplicateTitle) ||
		errors.Is(err, ErrActivityNotDeletable) ||
		errors.Is(err, ErrSessionFinished)
}
