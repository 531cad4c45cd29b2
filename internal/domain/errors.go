package domain

import (
	"errors"
	"fmt"
)

// KeyPrefix namespaces every key the service writes to the key-value store.
var KeyPrefix = "matchmaker:"

var (
	// ErrUserNotFound signals a missing user profile.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidProfile signals a profile that failed validation on save.
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrInvalidPreferences signals matching preferences that failed validation on save.
	ErrInvalidPreferences = errors.New("invalid preferences")
	// ErrVectorDimMismatch signals taste vectors of different lengths.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrTasteUnavailable signals a failed, timed out or short-circuited taste extraction.
	ErrTasteUnavailable = errors.New("taste extraction unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrStoreUnavailable signals that the profile store could not be read in time.
	ErrStoreUnavailable = errors.New("profile store unavailable")
)

// CandidateError marks a single candidate as unscorable.
// The matching service demotes such candidates instead of failing the request.
type CandidateError struct {
	UserID string
	Err    error
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("candidate %s: %s", e.UserID, e.Err.Error())
}

func (e *CandidateError) Unwrap() error { return e.Err }

// NewCandidateError wraps err with the candidate it belongs to.
func NewCandidateError(userID string, err error) error {
	return &CandidateError{UserID: userID, Err: err}
}
