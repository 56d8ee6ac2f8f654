package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-kitchen-sync/internal/app"
	"github.com/MKhiriev/go-kitchen-sync/internal/service"
	"github.com/MKhiriev/go-kitchen-sync/internal/store"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
	"github.com/MKhiriev/go-kitchen-sync/models"
)

// errorStatuses is checked in order: a retryable database error also wraps
// the statement error it was classified from.
var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrInvalidDataProvided, http.StatusBadRequest},
	{service.ErrValidationNoUserID, http.StatusUnauthorized},
	{service.ErrInvalidSnapshot, http.StatusBadRequest},
	{ErrCollectionMismatch, http.StatusBadRequest},
	{models.ErrUnknownCollection, http.StatusNotFound},
	{utils.ErrInvalidToken, http.StatusUnauthorized},

	{store.ErrEntityNotFound, http.StatusNotFound},
	{store.ErrEntityExists, http.StatusConflict},
	{store.ErrRetryable, http.StatusServiceUnavailable},

	{store.ErrBuildingSQLQuery, http.StatusInternalServerError},
	{store.ErrExecutingQuery, http.StatusInternalServerError},
	{store.ErrBeginningTransaction, http.StatusInternalServerError},
	{store.ErrCommitingTransaction, http.StatusInternalServerError},
	{store.ErrExecutingStatement, http.StatusInternalServerError},
	{store.ErrScanningRow, http.StatusInternalServerError},
	{store.ErrScanningRows, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// messageFromError hides server-side details: only client errors echo the
// error text back.
func messageFromError(err error, status int) string {
	switch status {
	case http.StatusUnauthorized:
		return app.MsgTokenIsExpiredOrInvalid
	case http.StatusNotFound:
		if errors.Is(err, models.ErrUnknownCollection) {
			return app.MsgUnknownCollection
		}
		return app.MsgDataNotFound
	case http.StatusConflict:
		return app.MsgConflict
	case http.StatusServiceUnavailable:
		return app.MsgServiceUnavailable
	case http.StatusInternalServerError:
		return app.MsgInternalServerError
	default:
		return err.Error()
	}
}

func writeError(w http.ResponseWriter, err error) int {
	status := statusFromError(err)
	http.Error(w, messageFromError(err, status), status)
	return status
}
