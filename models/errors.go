package models

import "errors"

var (
	ErrUnknownSyncStatus  = errors.New("unknown sync status")
	ErrUnknownCollection  = errors.New("unknown collection")
	ErrCollectionMismatch = errors.New("entity belongs to a different collection")
	ErrDecodingPayload    = errors.New("failed to decode entity payload")
	ErrEncodingPayload    = errors.New("failed to encode entity payload")
)
