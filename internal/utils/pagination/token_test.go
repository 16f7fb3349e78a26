package pagination_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BizPilotApp/bizpilot_backend/internal/utils/pagination"
)

func TestTokenRoundTrip(t *testing.T) {
	createdAt := time.Date(2024, 5, 10, 13, 37, 42, 123456789, time.UTC)
	id := "0a4c2f9e-1b7d-4c3a-9f6e-8d2b5a1c0e3f"

	token := pagination.EncodeToken(createdAt, id)
	gotCreatedAt, gotID, err := pagination.DecodeToken(token)

	require.NoError(t, err)
	assert.True(t, gotCreatedAt.Equal(createdAt))
	assert.Equal(t, id, gotID)
}

func TestDecodeToken_NotBase64(t *testing.T) {
	_, _, err := pagination.DecodeToken("%%% not base64 %%%")
	assert.Error(t, err)
}

func TestDecodeToken_MissingSeparator(t *testing.T) {
	token := "bm8gc2VwYXJhdG9yIGhlcmU=" // "no separator here"
	_, _, err := pagination.DecodeToken(token)
	assert.Error(t, err)
}

func TestDecodeToken_BadTimestamp(t *testing.T) {
	token := "bm90LWEtdGltZXxpZC0x" // "not-a-time|id-1"
	_, _, err := pagination.DecodeToken(token)
	assert.Error(t, err)
}
