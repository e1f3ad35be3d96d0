package jwthandling

import (
	"testing"
	"time"
)

func TestUserTokenRoundTrip(t *testing.T) {
	token, err := GenerateNewUserToken(time.Minute, "acc-1", "a@b.com", "Alex", "sess-1", "testkey")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, valid, err := ValidateUserToken(token, "testkey")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !valid {
		t.Fatal("expected token to be valid")
	}
	if claims.Subject != "acc-1" || claims.Email != "a@b.com" || claims.SessionID != "sess-1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestUserTokenWrongKey(t *testing.T) {
	token, err := GenerateNewUserToken(time.Minute, "acc-1", "a@b.com", "Alex", "sess-1", "testkey")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, valid, err := ValidateUserToken(token, "otherkey")
	if err == nil && valid {
		t.Fatal("expected token validation to fail with wrong key")
	}
}

func TestUserTokenExpired(t *testing.T) {
	token, err := GenerateNewUserToken(-time.Minute, "acc-1", "a@b.com", "Alex", "sess-1", "testkey")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, valid, _ := ValidateUserToken(token, "testkey")
	if valid {
		t.Fatal("expected expired token to be invalid")
	}
}
