// Package session answers one question for the broadcast hub: is this
// credential currently valid. Issuance lives elsewhere; only
// verification is consumed here.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Validator is the credential oracle consulted during the connection
// handshake.
type Validator interface {
	IsValid(token string) bool
}

// FileStore validates web-session identifiers against session files on
// disk. A session is valid when a file named sess_<id> exists in one of
// the candidate directories and was modified within the freshness
// window.
type FileStore struct {
	dirs   []string
	maxAge time.Duration

	// now is replaceable for tests.
	now func() time.Time
}

func NewFileStore(dirs []string, maxAge time.Duration) *FileStore {
	return &FileStore{dirs: dirs, maxAge: maxAge, now: time.Now}
}

func (s *FileStore) IsValid(token string) bool {
	if token == "" || !safeSessionID(token) {
		return false
	}

	for _, dir := range s.dirs {
		info, err := os.Stat(filepath.Join(dir, "sess_"+token))
		if err != nil {
			continue
		}
		return s.now().Sub(info.ModTime()) <= s.maxAge
	}
	return false
}

// safeSessionID rejects anything that could escape the session
// directory. Session identifiers are alphanumeric with , and -.
func safeSessionID(id string) bool {
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ',', r == '-':
		default:
			return false
		}
	}
	return !strings.Contains(id, "..")
}

// JWTValidator verifies HMAC-signed bearer tokens. It never issues
// tokens; the signing side is an external concern.
type JWTValidator struct {
	secret []byte
}

func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret)}
}

func (v *JWTValidator) IsValid(token string) bool {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	return err == nil && parsed.Valid
}
