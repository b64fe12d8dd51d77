package models

import (
	"time"

	"github.com/google/uuid"
)

// CompanySettingsModel is the GORM model for the single-row company settings
type CompanySettingsModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	Name          string    `gorm:"size:200;not null"`
	Phone         string    `gorm:"size:50"`
	Email         string    `gorm:"size:200"`
	Address       string    `gorm:"size:500"`
	LicenseNumber string    `gorm:"size:100"`
	LogoURL       string    `gorm:"size:2000"`
	ProposalTerms string    `gorm:"type:text"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for CompanySettingsModel
func (CompanySettingsModel) TableName() string {
	return "company_settings"
}
