package auth

import (
	"testing"
	"time"

	"microbus/pkg/model"
)

const tokenSecret = "test-jwt-secret"

func testUser() *model.User {
	return &model.User{
		ID:    "65f1a2b3c4d5e6f7a8b9c0d1",
		Name:  "Ion Popescu",
		Phone: "+40721234567",
		Role:  model.RoleAdmin,
	}
}

func TestSessionToken_RoundTrip(t *testing.T) {
	user := testUser()

	token, exp, err := NewSessionToken(tokenSecret, user, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if remaining := time.Until(exp); remaining < 23*time.Hour {
		t.Errorf("expiry too soon: %v remaining", remaining)
	}

	identity, err := ParseSessionToken(tokenSecret, token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if identity.UserID != user.ID {
		t.Errorf("UserID = %q, want %q", identity.UserID, user.ID)
	}
	if identity.Phone != user.Phone {
		t.Errorf("Phone = %q, want %q", identity.Phone, user.Phone)
	}
	if identity.Role != user.Role {
		t.Errorf("Role = %q, want %q", identity.Role, user.Role)
	}
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	token, _, err := NewSessionToken(tokenSecret, testUser(), time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}

	if _, err := ParseSessionToken("another-secret", token); err == nil {
		t.Errorf("token signed with a different secret was accepted")
	}
}

func TestParseSessionToken_Expired(t *testing.T) {
	token, _, err := NewSessionToken(tokenSecret, testUser(), -time.Minute)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}

	if _, err := ParseSessionToken(tokenSecret, token); err == nil {
		t.Errorf("expired token was accepted")
	}
}

func TestParseSessionToken_Garbage(t *testing.T) {
	if _, err := ParseSessionToken(tokenSecret, "not.a.token"); err == nil {
		t.Errorf("malformed token was accepted")
	}
}
