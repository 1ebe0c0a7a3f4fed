package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ray-remotestate/toomburg/models"
	"github.com/ray-remotestate/toomburg/sessions"
	"github.com/ray-remotestate/toomburg/utils"
)

const AdminDisplayName = "Admin"

type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeUnauthenticated
	OutcomeUser
	OutcomeAdmin
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnauthenticated:
		return "unauthenticated"
	case OutcomeUser:
		return "user"
	case OutcomeAdmin:
		return "admin"
	default:
		return "not_found"
	}
}

// Verification is the result of checking a login. User is set only for OutcomeUser.
type Verification struct {
	Outcome Outcome
	User    *models.User
}

// AdministrativeIdentity is the single configured admin account. It has no user row.
type AdministrativeIdentity struct {
	Email        string
	PasswordHash string
}

// NewAdministrativeIdentity takes either a bcrypt hash or a plaintext passphrase to hash.
func NewAdministrativeIdentity(email, passwordHash, password string) (AdministrativeIdentity, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return AdministrativeIdentity{}, errors.New("admin email is empty")
	}
	if passwordHash == "" {
		if password == "" {
			return AdministrativeIdentity{}, errors.New("admin passphrase is empty")
		}
		hash, err := utils.HashPassword(password)
		if err != nil {
			return AdministrativeIdentity{}, fmt.Errorf("failed to hash admin passphrase: %w", err)
		}
		passwordHash = hash
	}
	return AdministrativeIdentity{Email: email, PasswordHash: passwordHash}, nil
}

func (a AdministrativeIdentity) Matches(normalizedEmail string) bool {
	return a.Email != "" && a.Email == normalizedEmail
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type CredentialVerifier struct {
	repo  Repository
	admin AdministrativeIdentity
}

func NewCredentialVerifier(repo Repository, admin AdministrativeIdentity) *CredentialVerifier {
	return &CredentialVerifier{repo: repo, admin: admin}
}

// Verify checks the administrative identity first, then the user directory.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (Verification, error) {
	email = NormalizeEmail(email)

	if v.admin.Matches(email) {
		if utils.CheckPassword(v.admin.PasswordHash, password) {
			return Verification{Outcome: OutcomeAdmin}, nil
		}
		return Verification{Outcome: OutcomeUnauthenticated}, nil
	}

	user, err := v.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return Verification{}, err
	}
	if user == nil {
		return Verification{Outcome: OutcomeNotFound}, nil
	}
	if !utils.CheckPassword(user.Password, password) {
		return Verification{Outcome: OutcomeUnauthenticated}, nil
	}
	return Verification{Outcome: OutcomeUser, User: user}, nil
}

// IsAdministrative reports whether email names the admin account.
func (v *CredentialVerifier) IsAdministrative(email string) bool {
	return v.admin.Matches(NormalizeEmail(email))
}

func (v *CredentialVerifier) Hash(password string) (string, error) {
	return utils.HashPassword(password)
}

// NewLoginSession builds the unsaved session a successful verification grants.
// A customer's discount is derived from their order and reservation history.
func NewLoginSession(ctx context.Context, ledger *Ledger, v Verification) (*sessions.Session, error) {
	switch v.Outcome {
	case OutcomeAdmin:
		return &sessions.Session{
			Identity:    sessions.AdminIdentity(),
			DisplayName: AdminDisplayName,
		}, nil
	case OutcomeUser:
		discount, err := ledger.HasHistory(ctx, v.User.ID)
		if err != nil {
			return nil, err
		}
		return &sessions.Session{
			Identity:    sessions.CustomerIdentity(v.User.ID),
			DisplayName: v.User.FirstName,
			Discount:    discount,
		}, nil
	default:
		return nil, ErrUnauthorized
	}
}
