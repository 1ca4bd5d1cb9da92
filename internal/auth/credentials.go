// Package auth implements credential verification and session handling.
//
// Passwords are stored as bcrypt hashes. Sessions are signed tokens
// backed by a server-side row, so logout genuinely revokes a token
// instead of just asking the browser to forget it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"finbook/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already exists")
)

// UserStore is the slice of the repository the credential store needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (storage.User, error)
	GetUserByUsername(ctx context.Context, username string) (storage.User, error)
}

// Credentials persists user identities and verifies plaintext passwords
// against their stored bcrypt hashes.
type Credentials struct {
	store UserStore
	cost  int
}

func NewCredentials(store UserStore) *Credentials {
	return &Credentials{store: store, cost: bcrypt.DefaultCost}
}

// CreateUser derives a bcrypt hash and stores the new identity.
// Fails with ErrDuplicateUsername when the username is taken.
func (c *Credentials) CreateUser(ctx context.Context, username, password string) (storage.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return storage.User{}, errors.New("empty username")
	}
	if password == "" {
		return storage.User{}, errors.New("empty password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return storage.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := c.store.CreateUser(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateUsername) {
			return storage.User{}, ErrDuplicateUsername
		}
		return storage.User{}, fmt.Errorf("store user: %w", err)
	}
	return user, nil
}

// dummyHash is compared against when the username does not exist, so an
// unknown user costs roughly the same as a wrong password.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Verify reports whether the plaintext password matches the stored hash
// for the given username. Unknown usernames simply verify as false.
func (c *Credentials) Verify(ctx context.Context, username, password string) (storage.User, bool) {
	user, err := c.store.GetUserByUsername(ctx, username)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return storage.User{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return storage.User{}, false
	}
	return user, true
}
