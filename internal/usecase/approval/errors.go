package approval

import (
	"errors"

	domain "hr-admin-backend/internal/domain/approval"
	"hr-admin-backend/internal/domain/validation"
)

const msgInternal = "internal error"

var publicErrors = []error{
	domain.ErrNotFound,
	domain.ErrAlreadyDecided,
	domain.ErrInvalidTransition,
	domain.ErrInvalidDecision,
	domain.ErrVersionConflict,
	domain.ErrForbidden,
	domain.ErrInvariant,
}

// PublicMessage returns a message safe to show a client for err.
func PublicMessage(err error) string {
	var ve *validation.Error
	if errors.As(err, &ve) {
		return ve.Error()
	}
	for _, target := range publicErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return msgInternal
}
