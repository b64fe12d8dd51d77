package models

import (
	"github.com/tierquote/backend/internal/domain/identity"
)

// UserModel is the GORM model for staff users
type UserModel struct {
	AggregateModel
	Email        string `gorm:"size:200;not null;uniqueIndex"`
	Name         string `gorm:"size:200;not null"`
	PasswordHash string `gorm:"size:100;not null"`
	Role         string `gorm:"size:20;not null;index"`
	IsActive     bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for UserModel
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the model to a domain user
func (m *UserModel) ToDomain() *identity.User {
	user := &identity.User{
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		Role:         identity.Role(m.Role),
		IsActive:     m.IsActive,
	}
	m.PopulateAggregateRoot(&user.BaseAggregateRoot)
	return user
}

// FromDomain populates the model from a domain user
func (m *UserModel) FromDomain(user *identity.User) {
	m.FromDomainAggregateRoot(user.BaseAggregateRoot)
	m.Email = user.Email
	m.Name = user.Name
	m.PasswordHash = user.PasswordHash
	m.Role = string(user.Role)
	m.IsActive = user.IsActive
}
