package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-kitchen-sync/internal/app"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
	"github.com/MKhiriev/go-kitchen-sync/models"
	"github.com/go-chi/chi/v5"
)

// getSnapshot answers GET /api/sync/{collection} with every live entity of
// the collection owned by the authenticated user.
func (h *Handler) getSnapshot(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r).With().Str("func", "*Handler.getSnapshot").Logger()

	userID, collection, ok := requestScope(w, r)
	if !ok {
		return
	}

	snapshot, err := h.services.SyncService.Snapshot(r.Context(), userID, collection)
	if err != nil {
		status := writeError(w, err)
		log.Err(err).Int("status", status).Str("collection", collection.String()).Msg("snapshot failed")
		return
	}

	if _, err = utils.WriteJSON(w, snapshot, http.StatusOK); err != nil {
		log.Err(err).Msg("failed to write snapshot")
	}
}

// pushChanges answers POST /api/sync/{collection}. The body is a
// [models.PushRequest]; a missing collection is taken from the path and a
// different one is rejected.
func (h *Handler) pushChanges(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r).With().Str("func", "*Handler.pushChanges").Logger()

	userID, collection, ok := requestScope(w, r)
	if !ok {
		return
	}

	var req models.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("failed to decode push request")
		http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	if req.Collection == "" {
		req.Collection = collection
	}
	if req.Collection != collection {
		err := fmt.Errorf("%w: %s != %s", ErrCollectionMismatch, req.Collection, collection)
		log.Err(err).Send()
		http.Error(w, app.MsgCollectionMismatch, http.StatusBadRequest)
		return
	}

	pushed, err := h.services.SyncService.Push(r.Context(), userID, req)
	if err != nil {
		status := writeError(w, err)
		log.Err(err).Int("status", status).Str("collection", collection.String()).Msg("push failed")
		return
	}

	log.Debug().
		Str("collection", collection.String()).
		Int("received", req.Size()).
		Int("accepted", pushed.Length).
		Msg("push applied")

	if _, err = utils.WriteJSON(w, pushed, http.StatusOK); err != nil {
		log.Err(err).Msg("failed to write push response")
	}
}

// requestScope reads the authenticated user and the collection path
// parameter. It writes the error response itself and reports false when
// either is missing.
func requestScope(w http.ResponseWriter, r *http.Request) (int64, models.Collection, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok || userID <= 0 {
		http.Error(w, app.MsgNoUserIDProvided, http.StatusUnauthorized)
		return 0, "", false
	}

	collection, err := models.ParseCollection(chi.URLParam(r, "collection"))
	if err != nil {
		http.Error(w, app.MsgUnknownCollection, http.StatusNotFound)
		return 0, "", false
	}

	return userID, collection, true
}
