package http

import (
	"net/http"
	"strings"

	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
)

// getServerVersion answers GET /api/version with the configured version as
// plain text, or with models.AppInfo when the client accepts JSON. No
// authentication is required.
func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		if _, err := utils.WriteJSON(w, h.services.AppInfoService.GetAppInfo(r.Context()), http.StatusOK); err != nil {
			log.Err(err).Str("func", "*Handler.getServerVersion").Msg("failed to write app info")
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(h.services.AppInfoService.GetAppVersion(r.Context()))); err != nil {
		log.Err(err).Str("func", "*Handler.getServerVersion").Msg("failed to write version")
	}
}
