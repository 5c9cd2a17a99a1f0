package auth

import (
	"testing"
	"time"
)

const testSecret = "test-secret-at-least-16-chars!!"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return ts
}

func TestNewTokenService_ShortSecret(t *testing.T) {
	if _, err := NewTokenService("short", time.Hour); err == nil {
		t.Error("NewTokenService() should reject secrets under 16 characters")
	}
}

func TestGenerateAndValidate(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-123", "admin")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if token == "" {
		t.Fatal("Generate() returned an empty token")
	}

	identity, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if identity.UserID != "user-123" {
		t.Errorf("UserID = %q, want %q", identity.UserID, "user-123")
	}
	if identity.Role != "admin" {
		t.Errorf("Role = %q, want %q", identity.Role, "admin")
	}
}

func TestValidate_Expired(t *testing.T) {
	ts := newTestTokenService(t)

	// Issue a token that expired a minute ago.
	token, err := ts.GenerateWithDuration("user-123", "user", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	if _, err := ts.Validate(token); err == nil {
		t.Error("Validate() should reject an expired token")
	}
}

func TestValidate_Tampered(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-123", "user")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Flip the last character of the signature.
	tampered := token[:len(token)-1]
	if token[len(token)-1] == 'A' {
		tampered += "B"
	} else {
		tampered += "A"
	}

	if _, err := ts.Validate(tampered); err == nil {
		t.Error("Validate() should reject a tampered token")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts := newTestTokenService(t)

	other, err := NewTokenService("a-completely-different-secret!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	token, err := other.Generate("user-123", "user")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := ts.Validate(token); err == nil {
		t.Error("Validate() should reject a token signed with a different secret")
	}
}

func TestValidate_Garbage(t *testing.T) {
	ts := newTestTokenService(t)

	for _, garbage := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := ts.Validate(garbage); err == nil {
			t.Errorf("Validate(%q) should fail", garbage)
		}
	}
}
