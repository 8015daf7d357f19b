package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := Tokens{Secret: []byte("test-secret"), TTL: time.Hour}
	accountID := uuid.New()

	signed, exp, err := tokens.Issue(accountID, true, time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry must be in the future")
	}

	claims, err := tokens.Parse(signed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, err := claims.AccountID()
	if err != nil {
		t.Fatalf("AccountID: %v", err)
	}
	if got != accountID {
		t.Fatalf("account id = %s, want %s", got, accountID)
	}
	if !claims.IsAdmin {
		t.Fatalf("admin flag must survive the round trip")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := Tokens{Secret: []byte("secret-a"), TTL: time.Hour}
	verifier := Tokens{Secret: []byte("secret-b"), TTL: time.Hour}

	signed, _, err := issuer.Issue(uuid.New(), false, time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Parse(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: got %v, want ErrInvalidToken", err)
	}
}

func TestTokenExpired(t *testing.T) {
	tokens := Tokens{Secret: []byte("test-secret"), TTL: time.Minute}

	signed, _, err := tokens.Issue(uuid.New(), false, time.Now().Add(-2*time.Minute))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := tokens.Parse(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: got %v, want ErrInvalidToken", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	tokens := Tokens{Secret: []byte("test-secret"), TTL: time.Hour}
	if _, err := tokens.Parse("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token: got %v, want ErrInvalidToken", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "s3cret") {
		t.Fatalf("correct password must verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("wrong password must not verify")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("abc"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("short password: got %v, want ErrWeakPassword", err)
	}
	if err := ValidatePassword("abcd"); err != nil {
		t.Fatalf("minimum-length password must pass: %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  User@Example.COM "); got != "user@example.com" {
		t.Fatalf("normalized = %q", got)
	}
}
