// Package session supplies the current user identity to the sync core.
// An absent identity means the core opens no subscriptions and performs no
// writes.
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session holds the identity of the signed-in user for the lifetime of the
// application. A zero or nil Session carries no identity.
type Session struct {
	uid string
}

// New returns a session for an explicitly known user id. An empty uid yields
// an anonymous session.
func New(uid string) *Session {
	return &Session{uid: uid}
}

// FromIDToken extracts the user identity from an auth ID token. The token's
// signature was already verified by the identity provider SDK that issued
// it; here only the subject and expiry claims are read.
func FromIDToken(token string, now time.Time) (*Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse id token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("read token expiry: %w", err)
	}
	if exp != nil && exp.Before(now) {
		return nil, fmt.Errorf("id token expired at %s", exp.Time.Format(time.RFC3339))
	}

	uid := claimString(claims, "user_id")
	if uid == "" {
		uid = claimString(claims, "sub")
	}
	if uid == "" {
		return nil, fmt.Errorf("id token carries no user identity")
	}
	return &Session{uid: uid}, nil
}

// CurrentUserID returns the signed-in user id, or false when there is none.
func (s *Session) CurrentUserID() (string, bool) {
	if s == nil || s.uid == "" {
		return "", false
	}
	return s.uid, true
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
