// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// privateKey and publicKey are used for signing and verifying JWT tokens.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenExpire is how long a player token stays valid (0 => never).
	tokenExpire time.Duration
)

var ErrInvalidToken = errors.New("invalid player token")

// PlayerClaims scopes a token to one seat in one game. Subject is the player id.
type PlayerClaims struct {
	GameID string `json:"gid"`
	jwt.RegisteredClaims
}

// Init generates a fresh ed25519 key pair at runtime and sets the token expiration.
func Init(expire time.Duration) error {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	publicKey, privateKey = pub, priv
	tokenExpire = expire
	return nil
}

// InitFromPath reads ed25519 private/public keys from file and sets the token expiration.
func InitFromPath(privatePath, publicPath string, expire time.Duration) error {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(privateKeyData) != ed25519.PrivateKeySize || len(publicKeyData) != ed25519.PublicKeySize {
		return fmt.Errorf("key files have the wrong size for ed25519")
	}

	privateKey = ed25519.PrivateKey(privateKeyData)
	publicKey = ed25519.PublicKey(publicKeyData)
	tokenExpire = expire
	return nil
}

// IssuePlayerToken signs a token that lets playerID act in gameID.
func IssuePlayerToken(gameID, playerID uuid.UUID) (string, error) {
	if privateKey == nil {
		return "", fmt.Errorf("auth not initialised")
	}
	now := time.Now()
	claims := PlayerClaims{
		GameID: gameID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  playerID.String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if tokenExpire > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(tokenExpire))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// ParsePlayerToken verifies a token and returns the game and player it is for.
func ParsePlayerToken(tokenString string) (gameID, playerID uuid.UUID, err error) {
	claims := &PlayerClaims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !t.Valid {
		return uuid.Nil, uuid.Nil, ErrInvalidToken
	}

	gameID, err = uuid.Parse(claims.GameID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: bad gid", ErrInvalidToken)
	}
	playerID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: bad sub", ErrInvalidToken)
	}
	return gameID, playerID, nil
}
