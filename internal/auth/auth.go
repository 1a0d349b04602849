// Package auth issues and verifies the bearer tokens that bind API
// requests to an owner id.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/keyring"
)

var (
	ErrNoSecret     = errors.New("no JWT secret configured")
	ErrInvalidToken = errors.New("invalid token")
)

// minSecretLen is the shortest HMAC key accepted for HS256.
const minSecretLen = 16

type Claims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("JWT secret must be at least %d bytes", minSecretLen)
	}
	return &Signer{secret: secret, now: time.Now}, nil
}

// SetClock overrides the signer's time source.
func (s *Signer) SetClock(now func() time.Time) { s.now = now }

// Sign returns an HS256 token for ownerID that expires after ttl.
func (s *Signer) Sign(ownerID string, ttl time.Duration) (string, error) {
	if ownerID == "" {
		return "", errors.New("owner id is required")
	}
	now := s.now()
	claims := Claims{
		UID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.AppName,
			Subject:   ownerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies tok and returns its claims.
func (s *Signer) Parse(tok string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tok, &Claims{},
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(constants.AppName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.UID == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}

// ResolveSecret returns configured when set, otherwise the secret stored
// in the OS keyring.
func ResolveSecret(configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	v, err := keyring.Get(keyring.JWTSecret)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNoSecret
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

// GenerateSecret returns a random 32 byte key, base64 encoded.
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type ownerKey struct{}

// WithOwner returns a context carrying ownerID.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFrom returns the owner id stored by WithOwner.
func OwnerFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ownerKey{}).(string)
	return id, ok && id != ""
}
