package domain

import "time"

// AutoFlagSettings is the operator-configurable rule set for automatic order
// flagging. Exactly one row exists; reads create it with defaults if absent.
type AutoFlagSettings struct {
	ID                      string    `json:"id" gorm:"primaryKey"`
	InTransitThresholdDays  int       `json:"in_transit_threshold_days" gorm:"default:7"`
	NoTrackingThresholdDays int       `json:"no_tracking_threshold_days" gorm:"default:3"`
	AutoFlagOverdue         bool      `json:"auto_flag_overdue" gorm:"default:true"`
	AutoFlagCancelled       bool      `json:"auto_flag_cancelled" gorm:"default:true"`
	AutoFlagNoTracking      bool      `json:"auto_flag_no_tracking" gorm:"default:true"`
	AutoFlagInTransit       bool      `json:"auto_flag_in_transit" gorm:"default:true"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// DefaultAutoFlagSettings returns the documented defaults: 7 / 3 days,
// all rules enabled.
func DefaultAutoFlagSettings() *AutoFlagSettings {
	return &AutoFlagSettings{
		InTransitThresholdDays:  7,
		NoTrackingThresholdDays: 3,
		AutoFlagOverdue:         true,
		AutoFlagCancelled:       true,
		AutoFlagNoTracking:      true,
		AutoFlagInTransit:       true,
	}
}
