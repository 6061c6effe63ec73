package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"RxClinic/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = strings.Repeat("k", 32)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "wrong"))

	other, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes are salted")
}

func TestTokenRoundTrip(t *testing.T) {
	m, err := NewTokenMaker(testKey)
	require.NoError(t, err)

	access, refresh, err := m.GenerateTokens("user-1", "Doctor")
	require.NoError(t, err)

	claims, err := m.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Doctor", claims.Role)

	_, err = m.ValidateToken(access, "Admin", "Doctor")
	require.NoError(t, err)
	_, err = m.ValidateToken(access, "Admin")
	assert.ErrorIs(t, err, ErrInsufficientPermission)

	_, err = m.ValidateToken(refresh)
	assert.ErrorIs(t, err, ErrWrongTokenKind)
	claims, err = m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestTokenExpiry(t *testing.T) {
	m, err := NewTokenMaker(testKey)
	require.NoError(t, err)

	access, err := m.GenerateAccessToken("user-1", "Patient")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(AccessTokenExpiry + time.Minute) }
	_, err = m.ValidateToken(access)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenRejectsForeignKey(t *testing.T) {
	m, err := NewTokenMaker(testKey)
	require.NoError(t, err)
	other, err := NewTokenMaker(strings.Repeat("x", 32))
	require.NoError(t, err)

	access, err := other.GenerateAccessToken("user-1", "Admin")
	require.NoError(t, err)
	_, err = m.ValidateToken(access)
	assert.Error(t, err)

	_, err = NewTokenMaker("short")
	assert.Error(t, err)
}

func TestResetCodes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	codes := NewResetCodes(cache.NewCache(client))
	ctx := context.Background()

	code, err := GenerateResetCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)

	require.NoError(t, codes.Set(ctx, "juan@example.com", code))
	ok, err := codes.Verify(ctx, "juan@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = codes.Verify(ctx, "juan@example.com", "000000x")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(ResetCodeExpiry + time.Second)
	ok, err = codes.Verify(ctx, "juan@example.com", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResetCodeMessage(t *testing.T) {
	m, err := ResetCodeMessage("clinic@example.com", "juan@example.com", "042917")
	require.NoError(t, err)

	assert.Equal(t, []string{"juan@example.com"}, m.GetHeader("To"))
	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "042917")
}
