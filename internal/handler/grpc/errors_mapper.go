package grpc

import (
	"errors"

	"github.com/MKhiriev/go-kitchen-sync/internal/app"
	"github.com/MKhiriev/go-kitchen-sync/internal/service"
	"github.com/MKhiriev/go-kitchen-sync/internal/store"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
	"github.com/MKhiriev/go-kitchen-sync/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errorCodes mirrors the HTTP status mapping; the client adapter maps the
// codes back to the same sync errors.
var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{service.ErrInvalidDataProvided, codes.InvalidArgument},
	{service.ErrValidationNoUserID, codes.Unauthenticated},
	{service.ErrInvalidSnapshot, codes.InvalidArgument},
	{models.ErrUnknownCollection, codes.NotFound},
	{utils.ErrInvalidToken, codes.Unauthenticated},

	{store.ErrEntityNotFound, codes.NotFound},
	{store.ErrEntityExists, codes.AlreadyExists},
	{store.ErrRetryable, codes.Unavailable},
}

func statusFromError(err error) error {
	for _, e := range errorCodes {
		if !errors.Is(err, e.err) {
			continue
		}
		switch e.code {
		case codes.Unavailable:
			return status.Error(e.code, app.MsgServiceUnavailable)
		case codes.AlreadyExists:
			return status.Error(e.code, app.MsgConflict)
		default:
			return status.Error(e.code, err.Error())
		}
	}
	return status.Error(codes.Internal, app.MsgInternalServerError)
}
