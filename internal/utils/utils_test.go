// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── context ──────────────────────────────────────────────────────────────────

func TestContextKeys(t *testing.T) {
	ctx := WithTraceID(WithUserID(context.Background(), 42), "trace-1")

	userID, ok := GetUserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, "trace-1", GetTraceIDFromContext(ctx))
	assert.Equal(t, "userID", UserIDCtxKey.String())
}

func TestGetUserIDFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserIDCtxKey, "42")

	userID, ok := GetUserIDFromContext(ctx)
	assert.False(t, ok)
	assert.Zero(t, userID)
	assert.Empty(t, GetTraceIDFromContext(context.Background()))
}

// ── uuid ─────────────────────────────────────────────────────────────────────

func TestUUIDGenerator_NewKey(t *testing.T) {
	g := NewUUIDGenerator()

	a, b := g.NewKey(), g.NewKey()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

// ── hash ─────────────────────────────────────────────────────────────────────

func TestSigner(t *testing.T) {
	s := NewSigner("secret")
	body := []byte(`{"collection":"recipes"}`)

	sig := s.Sign(body)
	require.Len(t, sig, 64)
	assert.Equal(t, sig, s.Sign(body), "deterministic")
	assert.True(t, s.Verify(body, sig))
	assert.False(t, s.Verify([]byte(`{}`), sig))
	assert.False(t, s.Verify(body, "not-hex"))
	assert.NotEqual(t, sig, NewSigner("other").Sign(body))
}

func TestSigner_Disabled(t *testing.T) {
	s := NewSigner("")
	assert.False(t, s.Enabled())
	assert.Empty(t, s.Sign([]byte("x")))
	assert.True(t, s.Verify([]byte("x"), "anything"))

	var nilSigner *Signer
	assert.False(t, nilSigner.Enabled())
}

// ── jwt ──────────────────────────────────────────────────────────────────────

func TestGenerateAndValidateJWTToken(t *testing.T) {
	token, err := GenerateJWTToken("kitchen", 7, time.Hour, "key")
	require.NoError(t, err)
	require.NotEmpty(t, token.SignedString)

	parsed, err := ValidateAndParseJWTToken(token.SignedString, "key", "kitchen")
	require.NoError(t, err)
	assert.Equal(t, int64(7), parsed.UserID)
	assert.Equal(t, token.SignedString, parsed.String())

	userID, err := ParseUserIDFromJWT(token.SignedString)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
}

func TestValidateAndParseJWTToken_Failures(t *testing.T) {
	valid, err := GenerateJWTToken("kitchen", 7, time.Hour, "key")
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		key    string
		issuer string
	}{
		{"wrong key", valid.SignedString, "other", "kitchen"},
		{"wrong issuer", valid.SignedString, "key", "someone-else"},
		{"malformed", "a.b.c", "key", "kitchen"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateAndParseJWTToken(tc.token, tc.key, tc.issuer)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestGenerateJWTToken_InvalidParams(t *testing.T) {
	_, err := GenerateJWTToken("", 1, time.Hour, "key")
	assert.Error(t, err)
	_, err = GenerateJWTToken("iss", 1, 0, "key")
	assert.Error(t, err)
	_, err = GenerateJWTToken("iss", 1, time.Hour, "")
	assert.Error(t, err)
}

func TestParseBearerToken(t *testing.T) {
	tok, err := ParseBearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	for _, bad := range []string{"", "Bearer", "Basic abc", "Bearer a b"} {
		_, err := ParseBearerToken(bad)
		assert.ErrorIs(t, err, ErrInvalidToken, bad)
	}
}

// ── http ─────────────────────────────────────────────────────────────────────

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	n, err := WriteJSON(rec, map[string]int{"length": 2}, http.StatusCreated)
	require.NoError(t, err)
	assert.Positive(t, n)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"length":2}`, rec.Body.String())
}

func TestWriteJSON_InvalidData(t *testing.T) {
	rec := httptest.NewRecorder()

	_, err := WriteJSON(rec, math.Inf(1), http.StatusOK)
	assert.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
