package domain

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// TokenUpdateFunc is invoked when a mail provider rotates an access token so
// the caller can persist the new credential before it is used again.
type TokenUpdateFunc func(token *oauth2.Token) error

// Credential carries what a provider needs to talk to one mailbox
type Credential struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time

	// IMAP accounts authenticate with host/port/password instead of OAuth
	IMAPServer   string
	IMAPPort     int
	IMAPUsername string
	IMAPPassword string
}

// MessageRef is a lightweight handle to a mailbox message, returned by listing
// so full content is only fetched for messages that survive the pre-checks.
type MessageRef struct {
	ID       string
	ThreadID string
}

// EmailMessage is the full content of one inbound email
type EmailMessage struct {
	ID         string
	Subject    string
	From       string
	FromName   string
	To         string
	Snippet    string
	BodyText   string
	BodyHTML   string
	ReceivedAt time.Time
}

// MailProvider abstracts the mailbox API consumed by the sync orchestrator.
// Implementations exist for Gmail and plain IMAP.
type MailProvider interface {
	ListMessageIDs(ctx context.Context, creds Credential, query string, maxResults int64, onTokenRefresh TokenUpdateFunc) ([]MessageRef, error)
	GetFullMessage(ctx context.Context, creds Credential, id string, onTokenRefresh TokenUpdateFunc) (*EmailMessage, error)
	RefreshCredential(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}
