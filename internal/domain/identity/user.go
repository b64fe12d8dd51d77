// Package identity models the staff accounts that own estimates and receive
// internal notifications. Customer-facing proposal routes never touch this
// package; they are authenticated by the opaque proposal token alone.
package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role represents a staff role
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleSales Role = "SALES"
)

// User is a staff account.
type User struct {
	shared.BaseAggregateRoot
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	IsActive     bool
}

// NewUser creates an active staff user.
func NewUser(email, name string, role Role) (*User, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if role != RoleAdmin && role != RoleSales {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              name,
		Role:              role,
		IsActive:          true,
	}, nil
}

// SetPassword hashes and stores the password.
func (u *User) SetPassword(plain string) error {
	if len(plain) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	return nil
}

// CheckPassword verifies a password against the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// Repository defines persistence for staff users
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindActiveAdmins(ctx context.Context) ([]User, error)
	Save(ctx context.Context, user *User) error
}
