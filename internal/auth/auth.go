package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Makepad-fr/taskboard/internal/config"
)

const (
	credFileName = "credentials.json"
	// EnvToken overrides the stored token when set.
	EnvToken = "TASKBOARD_TOKEN"
)

var ErrEmptyToken = errors.New("empty token")

type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when we saved to file
	ExpiresAt *time.Time `json:"expires_at"` // from the JWT exp claim, if any
}

// Expired reports whether the token carries an expiry in the past.
func (ti *TokenInfo) Expired(now time.Time) bool {
	return ti.ExpiresAt != nil && now.After(*ti.ExpiresAt)
}

func credFilePath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, credFileName), nil
}

// GetToken returns the active token, or nil when the user is not logged in.
// The environment wins over the credentials file.
func GetToken() (*TokenInfo, error) {
	if env := os.Getenv(EnvToken); strings.TrimSpace(env) != "" {
		return newTokenInfo(env, "env"), nil
	}
	p, err := credFilePath()
	if err != nil {
		return nil, err
	}
	return readCredentials(p)
}

// readCredentials loads the stored token. Expiry is derived from the token
// again rather than trusted from the file.
func readCredentials(p string) (*TokenInfo, error) {
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var stored TokenInfo
	if err := json.Unmarshal(b, &stored); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti := newTokenInfo(stored.Token, "file")
	ti.CreatedAt = stored.CreatedAt
	return ti, nil
}

// SetToken stores token in the credentials file (0600).
func SetToken(token string) (*TokenInfo, error) {
	ti := newTokenInfo(token, "file")
	if ti.Token == "" {
		return nil, ErrEmptyToken
	}
	ti.CreatedAt = time.Now()

	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, credFileName), b, 0o600); err != nil {
		return nil, fmt.Errorf("write credentials: %w", err)
	}
	return ti, nil
}

// DeleteToken removes the credentials file; a missing file is not an error.
func DeleteToken() error {
	p, err := credFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

func newTokenInfo(raw, source string) *TokenInfo {
	tok := stripBearer(raw)
	return &TokenInfo{Token: tok, Source: source, ExpiresAt: expiry(tok)}
}

// Claims decodes a JWT payload without verifying it. The server is the only
// party that can verify; this is for display.
func Claims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("not a JWT: %w", err)
	}
	return claims, nil
}

func expiry(token string) *time.Time {
	claims, err := Claims(token)
	if err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}

func stripBearer(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "bearer") {
		return ""
	}
	if scheme, rest, ok := strings.Cut(s, " "); ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(rest)
	}
	return s
}
