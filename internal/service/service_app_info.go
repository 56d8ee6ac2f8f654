package service

import (
	"context"
	"slices"
	"strings"

	"github.com/MKhiriev/go-kitchen-sync/internal/config"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/models"
)

type appInfoService struct {
	info models.AppInfo

	logger *logger.Logger
}

// NewAppInfoService reports cfg.Version together with the collections this
// server syncs. A blank version is an error.
func NewAppInfoService(cfg config.App, logger *logger.Logger) (AppInfoService, error) {
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	logger.Debug().Str("version", version).Int("collections", len(models.AllCollections)).Msg("app info ready")

	return &appInfoService{
		info: models.AppInfo{
			Version:     version,
			Collections: slices.Clone(models.AllCollections),
		},
		logger: logger,
	}, nil
}

func (s *appInfoService) GetAppVersion(_ context.Context) string {
	return s.info.Version
}

// GetAppInfo returns a copy; callers may modify it.
func (s *appInfoService) GetAppInfo(_ context.Context) models.AppInfo {
	info := s.info
	info.Collections = slices.Clone(s.info.Collections)
	return info
}
