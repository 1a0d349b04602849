package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/pjournal/internal/keyring"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newSigner(t *testing.T, at time.Time) *Signer {
	t.Helper()
	s, err := NewSigner(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	s.SetClock(func() time.Time { return at })
	return s
}

func TestSignAndParse(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := newSigner(t, now)

	tok, err := s.Sign("alice", time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	claims, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.UID != "alice" || claims.Subject != "alice" {
		t.Errorf("claims = %+v", claims)
	}
	if !claims.ExpiresAt.Time.Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v", claims.ExpiresAt)
	}
}

func TestParseRejects(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := newSigner(t, now)
	valid, err := s.Sign("alice", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	other, _ := NewSigner([]byte("ffffffffffffffffffffffffffffffff"))
	foreign, _ := other.Sign("alice", time.Hour)

	expired, _ := newSigner(t, now.Add(-2*time.Hour)).Sign("alice", time.Hour)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UID: "alice"}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noOwner, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "pjournal",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString(testSecret)

	tests := map[string]string{
		"garbage":       "not.a.token",
		"wrong secret":  foreign,
		"expired":       expired,
		"alg none":      none,
		"missing owner": noOwner,
		"tampered":      tamper(t, valid),
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Parse(tok); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse() error = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}

// tamper swaps the payload for one naming a different owner while keeping
// the original signature.
func tamper(t *testing.T, tok string) string {
	t.Helper()
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d parts", len(parts))
	}
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"uid":"mallory","iss":"pjournal","exp":4102444800}`))
	return parts[0] + "." + payload + "." + parts[2]
}

func TestNewSignerShortSecret(t *testing.T) {
	if _, err := NewSigner([]byte("short")); err == nil {
		t.Error("NewSigner() should reject short secrets")
	}
}

func TestSignRequiresOwner(t *testing.T) {
	s := newSigner(t, time.Now())
	if _, err := s.Sign("", time.Hour); err == nil {
		t.Error("Sign(\"\") should fail")
	}
}

func TestResolveSecret(t *testing.T) {
	gokeyring.MockInit()

	got, err := ResolveSecret("from-config")
	if err != nil || string(got) != "from-config" {
		t.Errorf("ResolveSecret(configured) = %q, %v", got, err)
	}

	if _, err := ResolveSecret(""); !errors.Is(err, ErrNoSecret) {
		t.Errorf("ResolveSecret(\"\") error = %v, want %v", err, ErrNoSecret)
	}

	if err := keyring.Set(keyring.JWTSecret, "from-keyring"); err != nil {
		t.Fatal(err)
	}
	got, err = ResolveSecret("")
	if err != nil || string(got) != "from-keyring" {
		t.Errorf("ResolveSecret(keyring) = %q, %v", got, err)
	}
}

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := GenerateSecret()
	if a == b || len(a) < minSecretLen || strings.ContainsAny(a, "+/=") {
		t.Errorf("GenerateSecret() = %q, %q", a, b)
	}
}

func TestOwnerContext(t *testing.T) {
	if _, ok := OwnerFrom(context.Background()); ok {
		t.Error("empty context reported an owner")
	}
	ctx := WithOwner(context.Background(), "alice")
	if id, ok := OwnerFrom(ctx); !ok || id != "alice" {
		t.Errorf("OwnerFrom() = %q, %v", id, ok)
	}
	if _, ok := OwnerFrom(WithOwner(context.Background(), "")); ok {
		t.Error("blank owner reported as present")
	}
}
