package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ray-remotestate/toomburg/models"
)

type Registration struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Confirm   string
}

type UserDirectory struct {
	repo     Repository
	verifier *CredentialVerifier
}

// NewUserDirectory hashes new passwords with verifier so login and
// registration share one hashing scheme.
func NewUserDirectory(repo Repository, verifier *CredentialVerifier) *UserDirectory {
	return &UserDirectory{repo: repo, verifier: verifier}
}

// Register creates a user. The existence check only gives a friendlier error;
// the storage unique constraint decides races.
func (d *UserDirectory) Register(ctx context.Context, reg Registration) (int64, error) {
	if reg.Password != reg.Confirm {
		return 0, ErrPasswordMismatch
	}

	email := NormalizeEmail(reg.Email)
	exists, err := d.repo.EmailExists(ctx, email)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrEmailTaken
	}

	hashed, err := d.verifier.Hash(reg.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := d.repo.CreateUser(ctx, email, reg.FirstName, reg.LastName, hashed)
	if errors.Is(err, models.ErrDuplicateEmail) {
		return 0, ErrEmailTaken
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FindByEmail returns nil, nil when no user has the email.
func (d *UserDirectory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return d.repo.FindUserByEmail(ctx, NormalizeEmail(email))
}
