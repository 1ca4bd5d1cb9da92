package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestSessions(t *testing.T, store *fakeStore) *Sessions {
	t.Helper()
	creds := NewCredentials(store)
	if _, err := creds.CreateUser(context.Background(), "admin", "s3cret"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return NewSessions(creds, store, []byte("test-secret"), time.Hour)
}

func TestLoginAndAuthenticate(t *testing.T) {
	store := newFakeStore()
	sessions := newTestSessions(t, store)
	ctx := context.Background()

	token, err := sessions.Login(ctx, "admin", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}

	ident, err := sessions.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if ident.Username != "admin" || ident.UserID == 0 {
		t.Fatalf("unexpected identity: %+v", ident)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	store := newFakeStore()
	sessions := newTestSessions(t, store)
	ctx := context.Background()

	_, wrongPw := sessions.Login(ctx, "admin", "nope")
	_, unknown := sessions.Login(ctx, "ghost", "s3cret")

	if !errors.Is(wrongPw, ErrInvalidCredentials) || !errors.Is(unknown, ErrInvalidCredentials) {
		t.Fatalf("both failures must be ErrInvalidCredentials, got %v / %v", wrongPw, unknown)
	}
	if wrongPw.Error() != unknown.Error() {
		t.Fatalf("failure modes must not be distinguishable")
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	store := newFakeStore()
	sessions := newTestSessions(t, store)
	ctx := context.Background()

	token, err := sessions.Login(ctx, "admin", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := sessions.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	// The exact same token must now be dead, cookie replay included.
	if _, err := sessions.Authenticate(ctx, token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after logout, got %v", err)
	}

	// Logging out twice is harmless.
	if err := sessions.Logout(ctx, token); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

func TestAuthenticateRejectsTamperedToken(t *testing.T) {
	store := newFakeStore()
	sessions := newTestSessions(t, store)
	ctx := context.Background()

	token, err := sessions.Login(ctx, "admin", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	forged := NewSessions(sessions.creds, store, []byte("other-secret"), time.Hour)
	if _, err := forged.Authenticate(ctx, token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("token signed with another key must fail, got %v", err)
	}

	if _, err := sessions.Authenticate(ctx, token[:len(token)-2]); !errors.Is(err, ErrNoSession) {
		t.Fatalf("truncated token must fail")
	}
	if _, err := sessions.Authenticate(ctx, ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("empty token must fail")
	}
}

func TestAuthenticateRejectsExpiredSession(t *testing.T) {
	store := newFakeStore()
	sessions := newTestSessions(t, store)
	ctx := context.Background()

	token, err := sessions.Login(ctx, "admin", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Expire the server-side row while the signed token itself is
	// still within its validity window.
	for id, sess := range store.sessions {
		sess.ExpiresAt = time.Now().Add(-time.Minute)
		store.sessions[id] = sess
	}

	if _, err := sessions.Authenticate(ctx, token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expired session must fail, got %v", err)
	}
	if len(store.sessions) != 0 {
		t.Fatalf("expired row should have been dropped")
	}

	// A clock past the token's own exp fails too.
	token2, err := sessions.Login(ctx, "admin", "s3cret")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	sessions.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := sessions.Authenticate(ctx, token2); !errors.Is(err, ErrNoSession) {
		t.Fatalf("token past exp must fail, got %v", err)
	}
}
