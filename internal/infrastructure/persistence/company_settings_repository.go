package persistence

import (
	"context"
	"errors"

	"github.com/tierquote/backend/internal/application/proposal"
	"github.com/tierquote/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCompanySettingsRepository implements proposal.CompanySettingsSource
// backed by the single-row company_settings table.
type GormCompanySettingsRepository struct {
	db *gorm.DB
}

// NewGormCompanySettingsRepository creates a new GormCompanySettingsRepository
func NewGormCompanySettingsRepository(db *gorm.DB) *GormCompanySettingsRepository {
	return &GormCompanySettingsRepository{db: db}
}

// Settings returns the company profile used on rendered proposals. A
// missing row is not an error, the zero profile is returned instead.
func (r *GormCompanySettingsRepository) Settings(ctx context.Context) (proposal.CompanySettings, error) {
	var model models.CompanySettingsModel
	if err := r.db.WithContext(ctx).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return proposal.CompanySettings{}, nil
		}
		return proposal.CompanySettings{}, err
	}
	return proposal.CompanySettings{
		Name:          model.Name,
		Phone:         model.Phone,
		Email:         model.Email,
		Address:       model.Address,
		LicenseNumber: model.LicenseNumber,
		LogoURL:       model.LogoURL,
		ProposalTerms: model.ProposalTerms,
	}, nil
}
