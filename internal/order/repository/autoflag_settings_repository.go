package repository

import (
	"time"

	orderdomain "sellerops-backend/internal/order/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// autoFlagSettingsRepository implements AutoFlagSettingsRepository using GORM
type autoFlagSettingsRepository struct {
	db *gorm.DB
}

// NewAutoFlagSettingsRepository creates a new instance of autoFlagSettingsRepository
func NewAutoFlagSettingsRepository(db *gorm.DB) AutoFlagSettingsRepository {
	return &autoFlagSettingsRepository{db: db}
}

func (r *autoFlagSettingsRepository) GetOrCreateDefault() (*orderdomain.AutoFlagSettings, error) {
	var settings orderdomain.AutoFlagSettings
	err := r.db.First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	defaults := orderdomain.DefaultAutoFlagSettings()
	defaults.ID = uuid.New().String()
	now := time.Now()
	defaults.CreatedAt = now
	defaults.UpdatedAt = now
	if err := r.db.Create(defaults).Error; err != nil {
		return nil, err
	}
	return defaults, nil
}

func (r *autoFlagSettingsRepository) Update(settings *orderdomain.AutoFlagSettings) error {
	settings.UpdatedAt = time.Now()
	return r.db.Save(settings).Error
}
