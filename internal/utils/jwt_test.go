package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.GenerateToken(42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	id, err := m.Verify(token)
	if err != nil || id != 42 {
		t.Fatalf("verify = %d, %v", id, err)
	}
}

func TestVerifyRejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.GenerateToken(1)

	other, _ := NewTokenManager("other", time.Hour).GenerateToken(1)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"expired":      old,
		"wrong secret": other,
		"alg none":     unsigned,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}
