package validators

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-kitchen-sync/models"
)

// Field names accepted by [EntityValidator.Validate].
const (
	FieldKey        = "key"
	FieldUserID     = "user_id"
	FieldCollection = "collection"
	FieldPayload    = "payload"
	FieldHash       = "hash"
	FieldStatus     = "status"
	FieldUpdatedAt  = "updated_at"

	// FieldChanges validates every entity and key of a push request.
	FieldChanges = "changes"

	// FieldEntities validates every entity of a snapshot.
	FieldEntities = "entities"

	// FieldLength checks the declared Length of a request or response.
	FieldLength = "length"
)

// EntityValidator validates models.Entity, models.PushRequest and
// models.SnapshotResponse, in value or pointer form.
type EntityValidator struct{}

func NewEntityValidator() Validator {
	return &EntityValidator{}
}

// Validate dispatches on the dynamic type of obj. Without fields a default
// set is validated; ErrUnsupportedType is returned for other types.
func (v *EntityValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Entity:
		return v.validateEntity(value, fields...)
	case *models.Entity:
		return v.validateEntity(*value, fields...)

	case models.PushRequest:
		return v.validatePushRequest(value, fields...)
	case *models.PushRequest:
		return v.validatePushRequest(*value, fields...)

	case models.SnapshotResponse:
		return v.validateSnapshot(value, fields...)
	case *models.SnapshotResponse:
		return v.validateSnapshot(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *EntityValidator) validateEntity(e models.Entity, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldKey, FieldCollection, FieldPayload, FieldHash, FieldStatus, FieldUpdatedAt}
	}

	for _, f := range fields {
		switch f {
		case FieldKey:
			if e.Key == "" {
				return ErrInvalidKey
			}
		case FieldUserID:
			if e.UserID <= 0 {
				return ErrInvalidUserID
			}
		case FieldCollection:
			if !e.Collection.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidCollection, e.Collection)
			}
		case FieldPayload:
			if !isJSONObject(e.Payload) {
				return ErrInvalidPayload
			}
			if !models.IsCanonicalPayload(e.Payload) {
				return ErrNonCanonicalPayload
			}
		case FieldHash:
			if e.Hash != models.ContentHash(e.Payload) {
				return ErrInvalidHash
			}
		case FieldStatus:
			if _, err := models.ParseSyncStatus(e.Status.String()); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidStatus, err)
			}
		case FieldUpdatedAt:
			if e.UpdatedAt.IsZero() {
				return ErrInvalidUpdatedAt
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validatePushRequest validates a push. Entities inherit the request
// collection, so their own Collection is not checked; a key may appear
// only once across Created, Updated and Deleted.
func (v *EntityValidator) validatePushRequest(req models.PushRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldCollection, FieldChanges}
	}

	for _, f := range fields {
		switch f {
		case FieldCollection:
			if !req.Collection.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidCollection, req.Collection)
			}
		case FieldChanges:
			if req.Empty() {
				return ErrEmptyPush
			}

			seen := make(map[string]struct{}, req.Size())
			upserts := append(append([]models.Entity{}, req.Created...), req.Updated...)
			for i, e := range upserts {
				if err := v.validateEntity(e, FieldKey, FieldPayload, FieldHash, FieldUpdatedAt); err != nil {
					return fmt.Errorf("validation error at index %d: %w", i, err)
				}
				if _, dup := seen[e.Key]; dup {
					return fmt.Errorf("%w: %s", ErrDuplicateKey, e.Key)
				}
				seen[e.Key] = struct{}{}
			}
			for _, key := range req.Deleted {
				if key == "" {
					return ErrInvalidKey
				}
				if _, dup := seen[key]; dup {
					return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
				}
				seen[key] = struct{}{}
			}
		case FieldLength:
			if req.Length != req.Size() {
				return ErrLengthMismatch
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateSnapshot checks the shape of a remote snapshot. Duplicate keys are
// left to the reconciler, which reports them with their position.
func (v *EntityValidator) validateSnapshot(s models.SnapshotResponse, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldCollection, FieldEntities}
	}

	for _, f := range fields {
		switch f {
		case FieldCollection:
			if !s.Collection.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidCollection, s.Collection)
			}
		case FieldEntities:
			for i, e := range s.Entities {
				if err := v.validateEntity(e, FieldKey, FieldHash); err != nil {
					return fmt.Errorf("validation error at index %d: %w", i, err)
				}
				if e.Collection != s.Collection {
					return fmt.Errorf("validation error at index %d: %w: %q", i, models.ErrCollectionMismatch, e.Collection)
				}
			}
		case FieldLength:
			if s.Length != len(s.Entities) {
				return ErrLengthMismatch
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func isJSONObject(payload json.RawMessage) bool {
	var obj map[string]json.RawMessage
	return json.Unmarshal(payload, &obj) == nil && obj != nil
}
