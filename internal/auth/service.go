// Package auth implements registration, credential checks and session
// tokens for the portfolio application.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"portfolio/internal/core"
	"portfolio/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateUsername is returned when registering a username that is
	// already taken. The store is left unchanged.
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrInvalidCredentials is returned on any failed login. Unknown user
	// and wrong password produce the same error on purpose, so a caller
	// cannot probe which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore is the slice of the repository the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u core.User) (int64, error)
	UserByUsername(ctx context.Context, username string) (core.User, error)
}

type Service struct {
	store UserStore
}

func NewService(store UserStore) *Service {
	return &Service{store: store}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, firstName, lastName, username, password string) (core.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return core.User{}, core.ErrEmptyUsername
	}
	if password == "" {
		return core.User{}, core.ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := core.User{
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Username:     username,
		PasswordHash: string(hash),
	}

	id, err := s.store.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return core.User{}, ErrDuplicateUsername
		}
		return core.User{}, fmt.Errorf("register user: %w", err)
	}
	user.ID = id

	slog.InfoContext(ctx, "Registration completed", "user_id", id, "username", username)
	return user, nil
}

// Login verifies the credentials and returns the matching user.
func (s *Service) Login(ctx context.Context, username, password string) (core.User, error) {
	user, err := s.store.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Burn a comparison anyway so the miss costs the same as a
			// wrong password.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return core.User{}, ErrInvalidCredentials
		}
		return core.User{}, fmt.Errorf("login lookup: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return core.User{}, ErrInvalidCredentials
	}

	slog.InfoContext(ctx, "Login succeeded", "user_id", user.ID, "username", user.Username)
	return user, nil
}

var dummyHash = func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("portfolio-dummy"), bcrypt.DefaultCost)
	return h
}()
