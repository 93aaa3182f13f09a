package reconcile

import (
	"errors"
	"fmt"

	"github.com/SurakshaKumari/gt-3D-backend/internal/store"
)

// Wire error codes reported to the originator.
const (
	CodeValidation       = "validation"
	CodeNotFound         = "not_found"
	CodeStoreUnavailable = "store_unavailable"
	CodeInternal         = "internal"
)

// ValidationError reports a malformed mutation payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Code maps err to its wire code. A nil error maps to "ok".
func Code(err error) string {
	if err == nil {
		return "ok"
	}
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return CodeValidation
	case errors.Is(err, store.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, store.ErrUnavailable):
		return CodeStoreUnavailable
	default:
		return CodeInternal
	}
}
