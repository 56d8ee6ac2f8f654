package validators

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidUserID     = errors.New("invalid user ID")
	ErrInvalidKey        = errors.New("invalid entity key")
	ErrInvalidCollection = errors.New("invalid collection")
	ErrInvalidPayload    = errors.New("payload must be a JSON object")
	ErrInvalidHash       = errors.New("hash does not match payload")

	// ErrNonCanonicalPayload is an [ErrInvalidPayload] whose bytes would
	// change on the wire, so its hash could not be checked on the other side.
	ErrNonCanonicalPayload = fmt.Errorf("%w: payload is not compact canonical JSON", ErrInvalidPayload)

	ErrInvalidStatus    = errors.New("invalid sync status")
	ErrInvalidUpdatedAt = errors.New("updated_at is required")
	ErrEmptyPush        = errors.New("push request carries no changes")
	ErrDuplicateKey     = errors.New("key appears more than once")
	ErrLengthMismatch   = errors.New("length does not match the number of items")
)
