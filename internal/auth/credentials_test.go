package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"finbook/internal/storage"
)

// fakeStore is an in-memory UserStore + SessionStore for tests.
type fakeStore struct {
	users    map[string]storage.User
	sessions map[string]storage.Session
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]storage.User),
		sessions: make(map[string]storage.Session),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, username, passwordHash string) (storage.User, error) {
	if _, ok := f.users[username]; ok {
		return storage.User{}, storage.ErrDuplicateUsername
	}
	f.nextID++
	u := storage.User{ID: f.nextID, Username: username, PasswordHash: passwordHash}
	f.users[username] = u
	return u, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (storage.User, error) {
	u, ok := f.users[username]
	if !ok {
		return storage.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateSession(_ context.Context, id string, userID int64, expiresAt time.Time) error {
	f.sessions[id] = storage.Session{ID: id, UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeStore) GetSession(_ context.Context, id string) (storage.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return storage.Session{}, storage.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) DeleteSession(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func TestCreateUserAndVerify(t *testing.T) {
	store := newFakeStore()
	creds := NewCredentials(store)
	ctx := context.Background()

	user, err := creds.CreateUser(ctx, "admin", "s3cret")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.PasswordHash == "s3cret" || user.PasswordHash == "" {
		t.Fatalf("plaintext must never be stored: %q", user.PasswordHash)
	}

	if _, ok := creds.Verify(ctx, "admin", "s3cret"); !ok {
		t.Fatalf("correct password should verify")
	}
	if _, ok := creds.Verify(ctx, "admin", "wrong"); ok {
		t.Fatalf("wrong password must not verify")
	}
	if _, ok := creds.Verify(ctx, "nobody", "s3cret"); ok {
		t.Fatalf("unknown username must not verify")
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	store := newFakeStore()
	creds := NewCredentials(store)
	ctx := context.Background()

	if _, err := creds.CreateUser(ctx, "admin", "one"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := creds.CreateUser(ctx, "admin", "two"); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestCreateUserRejectsEmptyInput(t *testing.T) {
	creds := NewCredentials(newFakeStore())
	ctx := context.Background()

	if _, err := creds.CreateUser(ctx, "  ", "pw"); err == nil {
		t.Fatalf("blank username must fail")
	}
	if _, err := creds.CreateUser(ctx, "admin", ""); err == nil {
		t.Fatalf("empty password must fail")
	}
}
