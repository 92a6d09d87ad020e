package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestFileStore_FreshSession(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sess_abc123"), nil, 0600); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore([]string{dir}, time.Hour)
	if !s.IsValid("abc123") {
		t.Error("fresh session file should validate")
	}
	if s.IsValid("missing") {
		t.Error("unknown session id should not validate")
	}
	if s.IsValid("") {
		t.Error("empty token should not validate")
	}
}

func TestFileStore_ExpiredSession(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sess_stale")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore([]string{dir}, time.Hour)
	if s.IsValid("stale") {
		t.Error("session older than the freshness window should not validate")
	}
}

func TestFileStore_SearchesAlternateDirs(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	if err := os.WriteFile(filepath.Join(second, "sess_xyz"), nil, 0600); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore([]string{first, second}, time.Hour)
	if !s.IsValid("xyz") {
		t.Error("session in a fallback directory should validate")
	}
}

func TestFileStore_RejectsPathTraversal(t *testing.T) {
	s := NewFileStore([]string{t.TempDir()}, time.Hour)
	if s.IsValid("../etc/passwd") {
		t.Error("path traversal must be rejected")
	}
	if s.IsValid("a/b") {
		t.Error("separators must be rejected")
	}
}

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestJWTValidator(t *testing.T) {
	const secret = "0123456789abcdef0123456789abcdef"
	v := NewJWTValidator(secret)

	if !v.IsValid(signToken(t, secret, time.Now().Add(time.Hour))) {
		t.Error("valid token should verify")
	}
	if v.IsValid(signToken(t, secret, time.Now().Add(-time.Hour))) {
		t.Error("expired token should not verify")
	}
	if v.IsValid(signToken(t, "another-secret-another-secret-xx", time.Now().Add(time.Hour))) {
		t.Error("token signed with a different secret should not verify")
	}
	if v.IsValid("not-a-token") {
		t.Error("garbage should not verify")
	}
}
