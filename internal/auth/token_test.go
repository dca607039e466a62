// README: Session token issue/parse tests.
package auth

import (
	"testing"
	"time"

	"agrilink/internal/modules/user"
)

func testUser() *user.User {
	return &user.User{ID: 7, Name: "Abebe", Email: "abebe@example.com", Role: user.RoleFarmer}
}

func TestIssueParseRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("user id = %d, want 7", claims.UserID)
	}
	if claims.Role != user.RoleFarmer {
		t.Errorf("role = %s, want farmer", claims.Role)
	}
	if claims.Email != "abebe@example.com" {
		t.Errorf("email = %s", claims.Email)
	}
}

func TestParseExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)
	token, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Parse(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	parser := NewTokenManager("secret-b", time.Hour)
	token, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := parser.Parse(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestParseGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	for _, raw := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
		if _, err := m.Parse(raw); err != ErrInvalidToken {
			t.Errorf("Parse(%q): expected ErrInvalidToken, got %v", raw, err)
		}
	}
}

func TestParseMissingIdentity(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, err := m.Issue(&user.User{ID: 0, Role: user.RoleBuyer})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Parse(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for zero user id, got %v", err)
	}
}
