package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"finbook/internal/storage"
)

// ErrNoSession means the presented token does not map to a live session:
// missing, malformed, expired, bad signature, or logged out.
var ErrNoSession = errors.New("no valid session")

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID   int64
	Username string
}

// SessionStore is the slice of the repository the session manager needs.
type SessionStore interface {
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time) error
	GetSession(ctx context.Context, id string) (storage.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// Sessions issues and checks session tokens. A token is an HS256-signed
// JWT carrying a session id; the id must also resolve to a live row in
// the sessions table, which is what logout deletes.
type Sessions struct {
	creds  *Credentials
	store  SessionStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(creds *Credentials, store SessionStore, secret []byte, ttl time.Duration) *Sessions {
	return &Sessions{
		creds:  creds,
		store:  store,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Login verifies the credentials and establishes a session. Wrong
// password and unknown username both fail with ErrInvalidCredentials;
// callers must not distinguish the two.
func (s *Sessions) Login(ctx context.Context, username, password string) (string, error) {
	user, ok := s.creds.Verify(ctx, username, password)
	if !ok {
		return "", ErrInvalidCredentials
	}

	sid, err := newSessionID()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	if err := s.store.CreateSession(ctx, sid, user.ID, expiresAt); err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"uid": user.ID,
		"sub": user.Username,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Authenticate resolves a token to the identity it was issued for.
// The signature, the embedded expiry and the server-side row must all
// check out; otherwise ErrNoSession.
func (s *Sessions) Authenticate(ctx context.Context, token string) (Identity, error) {
	sid, ident, err := s.parse(token)
	if err != nil {
		return Identity{}, ErrNoSession
	}

	sess, err := s.store.GetSession(ctx, sid)
	if err != nil {
		return Identity{}, ErrNoSession
	}
	if !s.now().Before(sess.ExpiresAt) {
		// Expired rows are dropped lazily here and in bulk by the
		// server's periodic cleanup.
		_ = s.store.DeleteSession(ctx, sid)
		return Identity{}, ErrNoSession
	}
	if sess.UserID != ident.UserID {
		return Identity{}, ErrNoSession
	}
	return ident, nil
}

// Logout deletes the server-side session so the token stops working
// even if a copy of the cookie is replayed later.
func (s *Sessions) Logout(ctx context.Context, token string) error {
	sid, _, err := s.parse(token)
	if err != nil {
		// Nothing to revoke for a token we never issued.
		return nil
	}
	if err := s.store.DeleteSession(ctx, sid); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Sessions) parse(token string) (string, Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return "", Identity{}, ErrNoSession
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", Identity{}, ErrNoSession
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", Identity{}, ErrNoSession
	}
	uid, ok := claims["uid"].(float64)
	if !ok {
		return "", Identity{}, ErrNoSession
	}
	username, _ := claims["sub"].(string)

	return sid, Identity{UserID: int64(uid), Username: username}, nil
}

func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
