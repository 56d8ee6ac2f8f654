package utils

import "github.com/google/uuid"

// KeyGenerator issues entity keys.
type KeyGenerator interface {
	NewKey() string
}

// UUIDGenerator issues time-ordered UUID v7 keys, falling back to v4 if the
// clock source fails.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewKey() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// NewTraceID returns a random trace ID.
func NewTraceID() string {
	return uuid.NewString()
}
