// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-kitchen-sync/models"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func validEntity(key string) models.Entity {
	payload := []byte(`{"name":"flour"}`)
	return models.Entity{
		Key:        key,
		UserID:     1,
		Collection: models.InventoryItems,
		Payload:    payload,
		Hash:       models.ContentHash(payload),
		Status:     models.StatusCreated,
		UpdatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

func TestValidate_Dispatch(t *testing.T) {
	v := NewEntityValidator()
	ctx := context.Background()
	e := validEntity("a")

	assert.NoError(t, v.Validate(ctx, e))
	assert.NoError(t, v.Validate(ctx, &e))
	assert.ErrorIs(t, v.Validate(ctx, "string"), ErrUnsupportedType)
	assert.ErrorIs(t, v.Validate(ctx, e, "bogus"), ErrUnknownField)
}

// ---------------------------------------------------------------------------
// Entity
// ---------------------------------------------------------------------------

func TestValidateEntity(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Entity)
		fields []string
		want   error
	}{
		{"valid", func(*models.Entity) {}, nil, nil},
		{"empty key", func(e *models.Entity) { e.Key = "" }, nil, ErrInvalidKey},
		{"unknown collection", func(e *models.Entity) { e.Collection = "pets" }, nil, ErrInvalidCollection},
		{"payload array", func(e *models.Entity) {
			e.Payload = []byte(`[1]`)
			e.Hash = models.ContentHash(e.Payload)
		}, nil, ErrInvalidPayload},
		{"payload null", func(e *models.Entity) {
			e.Payload = []byte(`null`)
			e.Hash = models.ContentHash(e.Payload)
		}, nil, ErrInvalidPayload},
		{"payload with spaces", func(e *models.Entity) {
			e.Payload = []byte(`{"q": 1}`)
			e.Hash = models.ContentHash(e.Payload)
		}, nil, ErrNonCanonicalPayload},
		{"payload with raw html characters", func(e *models.Entity) {
			e.Payload = []byte(`{"note":"salt & pepper"}`)
			e.Hash = models.ContentHash(e.Payload)
		}, nil, ErrInvalidPayload},
		{"stale hash", func(e *models.Entity) { e.Hash = "abc" }, nil, ErrInvalidHash},
		{"bad status", func(e *models.Entity) { e.Status = "lost" }, nil, ErrInvalidStatus},
		{"zero updated_at", func(e *models.Entity) { e.UpdatedAt = time.Time{} }, nil, ErrInvalidUpdatedAt},
		{"user id only when asked", func(e *models.Entity) { e.UserID = 0 }, nil, nil},
		{"user id", func(e *models.Entity) { e.UserID = 0 }, []string{FieldUserID}, ErrInvalidUserID},
		{"scoped fields skip others", func(e *models.Entity) { e.Hash = "abc" }, []string{FieldKey}, nil},
	}

	v := NewEntityValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntity("a")
			tt.mutate(&e)

			err := v.Validate(context.Background(), e, tt.fields...)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// ---------------------------------------------------------------------------
// PushRequest
// ---------------------------------------------------------------------------

func TestValidatePushRequest(t *testing.T) {
	v := NewEntityValidator()
	ctx := context.Background()

	valid := models.PushRequest{
		Collection: models.InventoryItems,
		Created:    []models.Entity{validEntity("a")},
		Updated:    []models.Entity{validEntity("b")},
		Deleted:    []string{"c"},
		Length:     3,
	}
	require.NoError(t, v.Validate(ctx, valid))
	require.NoError(t, v.Validate(ctx, &valid, FieldCollection, FieldChanges, FieldLength))

	t.Run("collection", func(t *testing.T) {
		req := valid
		req.Collection = "nope"
		assert.ErrorIs(t, v.Validate(ctx, req), ErrInvalidCollection)
	})

	t.Run("empty", func(t *testing.T) {
		assert.ErrorIs(t, v.Validate(ctx, models.PushRequest{Collection: models.Recipes}), ErrEmptyPush)
	})

	t.Run("bad entity reports index", func(t *testing.T) {
		bad := validEntity("b")
		bad.Hash = "x"
		req := valid
		req.Updated = []models.Entity{bad}

		err := v.Validate(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidHash)
		assert.Contains(t, err.Error(), "index 1")
	})

	t.Run("duplicate across lists", func(t *testing.T) {
		req := valid
		req.Deleted = []string{"a"}
		assert.ErrorIs(t, v.Validate(ctx, req), ErrDuplicateKey)
	})

	t.Run("empty deleted key", func(t *testing.T) {
		req := valid
		req.Deleted = []string{""}
		assert.ErrorIs(t, v.Validate(ctx, req), ErrInvalidKey)
	})

	t.Run("length", func(t *testing.T) {
		req := valid
		req.Length = 1
		assert.ErrorIs(t, v.Validate(ctx, req, FieldLength), ErrLengthMismatch)
	})
}

// ---------------------------------------------------------------------------
// SnapshotResponse
// ---------------------------------------------------------------------------

func TestValidateSnapshot(t *testing.T) {
	v := NewEntityValidator()
	ctx := context.Background()

	snap := models.SnapshotResponse{
		Collection: models.InventoryItems,
		Entities:   []models.Entity{validEntity("a"), validEntity("b")},
		Length:     2,
	}
	require.NoError(t, v.Validate(ctx, snap))
	require.NoError(t, v.Validate(ctx, &snap, FieldLength))

	foreign := validEntity("c")
	foreign.Collection = models.Recipes
	withForeign := snap
	withForeign.Entities = append([]models.Entity{}, snap.Entities...)
	withForeign.Entities = append(withForeign.Entities, foreign)
	assert.ErrorIs(t, v.Validate(ctx, withForeign), models.ErrCollectionMismatch)

	noKey := snap
	noKey.Entities = []models.Entity{validEntity("")}
	assert.ErrorIs(t, v.Validate(ctx, noKey), ErrInvalidKey)

	assert.ErrorIs(t, v.Validate(ctx, models.SnapshotResponse{}), ErrInvalidCollection)
	assert.ErrorIs(t, v.Validate(ctx, models.SnapshotResponse{Collection: models.Recipes, Length: 4}, FieldLength), ErrLengthMismatch)

	// duplicates are reported by the reconciler
	dup := snap
	dup.Entities = []models.Entity{validEntity("a"), validEntity("a")}
	assert.NoError(t, v.Validate(ctx, dup))
}
