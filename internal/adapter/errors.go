package adapter

import "errors"

var (
	// ErrNetwork marks failures worth retrying: the request did not reach
	// the server, timed out, or the server was unavailable.
	ErrNetwork = errors.New("network error")

	ErrUnauthorized = errors.New("client unauthorized")
	ErrBadRequest   = errors.New("bad request")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")

	// ErrInvalidResponse is returned when a response cannot be decoded or
	// fails the integrity check.
	ErrInvalidResponse = errors.New("invalid server response")

	ErrInvalidAddress   = errors.New("invalid remote address")
	ErrUnknownTransport = errors.New("unknown transport")
)
