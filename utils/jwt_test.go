package utils

import (
	"os"
	"testing"
	"time"

	"github.com/studyhall/studyhall/models"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "jwt-test-secret")
	os.Exit(m.Run())
}

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(42, "casey", models.RoleTeacher, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "casey" || claims.Role != models.RoleTeacher {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken(1, "old", models.RoleStudent, -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("not.a.jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestTokenBlacklist(t *testing.T) {
	token, err := GenerateToken(9, "leaver", models.RoleStudent, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if IsTokenBlacklisted(token) {
		t.Fatal("fresh token already blacklisted")
	}
	BlacklistToken(token, time.Now().Add(time.Hour))
	if !IsTokenBlacklisted(token) {
		t.Error("token not blacklisted after revocation")
	}
}
