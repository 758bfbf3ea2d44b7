package auth

import (
	"errors"
	"testing"
	"time"

	"gallerykeeper/internal/shared"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken(secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if err := ParseToken(tok, secret); err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateToken(secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	err = ParseToken(tok, secret)
	if err == nil {
		t.Fatalf("expected error for expired token, got nil")
	}
	if !errors.Is(err, shared.ErrorInvalidToken) {
		t.Fatalf("expected shared.ErrorInvalidToken, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken([]byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	err = ParseToken(tok, []byte("wrong-secret"))
	if !errors.Is(err, shared.ErrorInvalidToken) {
		t.Fatalf("expected shared.ErrorInvalidToken for invalid signature, got %v", err)
	}
}

func TestParseToken_MalformedString(t *testing.T) {
	t.Parallel()

	err := ParseToken("not.a.jwt", []byte("k"))
	if !errors.Is(err, shared.ErrorInvalidToken) {
		t.Fatalf("expected shared.ErrorInvalidToken for malformed token, got %v", err)
	}
}

func TestParseToken_AllFailuresCollapse(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	expired, _ := GenerateToken(secret, -time.Minute)
	forged, _ := GenerateToken([]byte("other"), time.Hour)

	// Expired, forged and garbage tokens must be indistinguishable to the
	// caller.
	for _, tok := range []string{"", "garbage", expired, forged} {
		if err := ParseToken(tok, secret); !errors.Is(err, shared.ErrorInvalidToken) {
			t.Fatalf("token %q: expected shared.ErrorInvalidToken, got %v", tok, err)
		}
	}
}
