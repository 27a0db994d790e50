package repository

import orderdomain "sellerops-backend/internal/order/domain"

// AutoFlagSettingsRepository defines access to the singleton settings row
type AutoFlagSettingsRepository interface {
	// GetOrCreateDefault returns the settings row, seeding the documented
	// defaults when none exists yet
	GetOrCreateDefault() (*orderdomain.AutoFlagSettings, error)
	Update(settings *orderdomain.AutoFlagSettings) error
}
