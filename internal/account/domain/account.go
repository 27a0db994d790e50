package domain

import "time"

// MailAccount is a connected mailbox the orchestrator syncs supplier orders
// from. Provider is "google" or "imap".
type MailAccount struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Name     string `json:"name"`
	Provider string `json:"provider" gorm:"default:google"`

	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	TokenExpiry  time.Time `json:"token_expiry"`

	ImapServer   string `json:"imap_server,omitempty"`
	ImapPort     int    `json:"imap_port,omitempty"`
	ImapPassword string `json:"-"`

	SyncEnabled  bool       `json:"sync_enabled" gorm:"default:true"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
