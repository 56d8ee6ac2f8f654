package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-kitchen-sync/internal/validators"
	"github.com/MKhiriev/go-kitchen-sync/models"
)

type SyncValidationService struct {
	inner     SyncService
	validator validators.Validator
}

func NewSyncValidationService() SyncServiceWrapper {
	return &SyncValidationService{
		validator: validators.NewEntityValidator(),
	}
}

func (v *SyncValidationService) Snapshot(ctx context.Context, userID int64, collection models.Collection) (models.SnapshotResponse, error) {
	if userID <= 0 {
		return models.SnapshotResponse{}, ErrValidationNoUserID
	}
	if !collection.Valid() {
		return models.SnapshotResponse{}, fmt.Errorf("%w: %w: %q", ErrInvalidDataProvided, validators.ErrInvalidCollection, collection)
	}

	return v.inner.Snapshot(ctx, userID, collection)
}

func (v *SyncValidationService) Push(ctx context.Context, userID int64, req models.PushRequest) (models.PushResponse, error) {
	if userID <= 0 {
		return models.PushResponse{}, ErrValidationNoUserID
	}
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.PushResponse{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	return v.inner.Push(ctx, userID, req)
}

func (v *SyncValidationService) Wrap(wrapped SyncService) SyncService {
	v.inner = wrapped
	return v
}
