package security

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTManager_SignAndParse(t *testing.T) {
	m := NewJWTManager(testSecret, "essenz", time.Hour)

	token, err := m.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Fatalf("expected user id user-123, got %q", claims.UserID)
	}
	if claims.Issuer != "essenz" {
		t.Fatalf("expected issuer essenz, got %q", claims.Issuer)
	}
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager(testSecret, "essenz", -time.Minute)

	token, err := m.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	if _, err := m.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTManager_WrongSecret(t *testing.T) {
	m := NewJWTManager(testSecret, "essenz", time.Hour)
	other := NewJWTManager("ffffffffffffffffffffffffffffffff", "essenz", time.Hour)

	token, err := m.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	if _, err := other.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWTManager_WrongIssuer(t *testing.T) {
	m := NewJWTManager(testSecret, "someone-else", time.Hour)
	verifier := NewJWTManager(testSecret, "essenz", time.Hour)

	token, err := m.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	if _, err := verifier.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWTManager_Garbage(t *testing.T) {
	m := NewJWTManager(testSecret, "essenz", time.Hour)

	if _, err := m.Parse("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
