package auth

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	require.NoError(t, Init(time.Hour))
	gameID, playerID := uuid.New(), uuid.New()

	tok, err := IssuePlayerToken(gameID, playerID)
	require.NoError(t, err)

	g, p, err := ParsePlayerToken(tok)
	require.NoError(t, err)
	assert.Equal(t, gameID, g)
	assert.Equal(t, playerID, p)
}

func TestParseRejects(t *testing.T) {
	require.NoError(t, Init(time.Hour))

	_, _, err := ParsePlayerToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// signed by someone else
	_, otherKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, PlayerClaims{
		GameID:           uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
	}).SignedString(otherKey)
	require.NoError(t, err)
	_, _, err = ParsePlayerToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// wrong algorithm
	hmac, err := jwt.NewWithClaims(jwt.SigningMethodHS256, PlayerClaims{}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, _, err = ParsePlayerToken(hmac)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	require.NoError(t, Init(time.Hour))
	expired, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, PlayerClaims{
		GameID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString(privateKey)
	require.NoError(t, err)

	_, _, err = ParsePlayerToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestInitFromPath(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	dir := t.TempDir()
	privPath := filepath.Join(dir, "key")
	pubPath := filepath.Join(dir, "key.pub")
	require.NoError(t, os.WriteFile(privPath, priv, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pub, 0o644))

	require.NoError(t, InitFromPath(privPath, pubPath, 0))
	tok, err := IssuePlayerToken(uuid.New(), uuid.New())
	require.NoError(t, err)
	_, _, err = ParsePlayerToken(tok)
	assert.NoError(t, err)

	require.NoError(t, os.WriteFile(pubPath, []byte("short"), 0o644))
	assert.Error(t, InitFromPath(privPath, pubPath, 0))
	assert.Error(t, InitFromPath(filepath.Join(dir, "missing"), pubPath, 0))
}
