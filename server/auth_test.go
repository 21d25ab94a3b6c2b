package main

import (
	"testing"

	rbl "github.com/ilank-pro/RBL"
)

func TestGenerateAndParseJWT(t *testing.T) {
	opts.JWTSecret = "test-secret"

	db := setupTestDB(t)
	user := seedUser(t, db, "Alice")

	signed, err := generateJWT(user)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	if signed == "" {
		t.Fatal("Expected non-empty token")
	}

	claims, err := parseToken(signed)
	if err != nil {
		t.Fatalf("Failed to parse token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("Expected user id %d, got %d", user.ID, claims.UserID)
	}
	if claims.Handle != user.Handle {
		t.Errorf("Expected handle %q, got %q", user.Handle, claims.Handle)
	}
	if claims.Issuer != rbl.Service {
		t.Errorf("Expected issuer %q, got %q", rbl.Service, claims.Issuer)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	opts.JWTSecret = "test-secret"

	if _, err := parseToken("not-a-token"); err == nil {
		t.Error("Expected error for malformed token")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	opts.JWTSecret = "test-secret"

	db := setupTestDB(t)
	user := seedUser(t, db, "Alice")

	signed, err := generateJWT(user)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	opts.JWTSecret = "different-secret"
	defer func() { opts.JWTSecret = "test-secret" }()

	if _, err := parseToken(signed); err == nil {
		t.Error("Expected error for token signed with another secret")
	}
}

func TestCreateUserRejectsBadInput(t *testing.T) {
	db := setupTestDB(t)

	if _, err := createUser(db, "", "", rbl.PlatformMock, nil); err == nil {
		t.Error("Expected error for empty name")
	}
	if _, err := createUser(db, "Bob", "", rbl.Platform("myspace"), nil); err == nil {
		t.Error("Expected error for unknown platform")
	}
}
