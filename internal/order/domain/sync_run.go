package domain

import "time"

// SyncRunStatus is the lifecycle of one orchestrator run
type SyncRunStatus string

const (
	SyncRunRunning   SyncRunStatus = "running"
	SyncRunCompleted SyncRunStatus = "completed"
	SyncRunFailed    SyncRunStatus = "failed"
)

// SyncRun is an append-only log row for one sync pass over one account.
// AccountID is empty for runs recorded outside any single account.
type SyncRun struct {
	ID              string        `json:"id" gorm:"primaryKey"`
	AccountID       string        `json:"account_id" gorm:"index"`
	Status          SyncRunStatus `json:"status" gorm:"default:running"`
	EmailsProcessed int           `json:"emails_processed"`
	OrdersCreated   int           `json:"orders_created"`
	OrdersUpdated   int           `json:"orders_updated"`
	ErrorMessage    string        `json:"error_message,omitempty"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      *time.Time    `json:"finished_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// EmailOutcome describes what happened to a single candidate email within a
// run. Failures are collected per email so one bad message cannot abort the
// rest of the batch.
type EmailOutcome string

const (
	OutcomeCreated EmailOutcome = "created"
	OutcomeUpdated EmailOutcome = "updated"
	OutcomeSkipped EmailOutcome = "skipped"
	OutcomeFailed  EmailOutcome = "failed"
)

// EmailResult pairs an email id with its per-run outcome
type EmailResult struct {
	EmailID string
	Outcome EmailOutcome
	Reason  string
}
