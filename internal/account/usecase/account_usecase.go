package usecase

import (
	"fmt"
	"strings"

	accountdomain "sellerops-backend/internal/account/domain"
	"sellerops-backend/internal/account/repository"

	"github.com/google/uuid"
)

// AccountUsecase manages the registry of connected mailbox accounts
type AccountUsecase interface {
	ListAccounts() ([]*accountdomain.MailAccount, error)
	GetAccount(id string) (*accountdomain.MailAccount, error)
	ConnectAccount(account *accountdomain.MailAccount) (*accountdomain.MailAccount, error)
	SetSyncEnabled(id string, enabled bool) (*accountdomain.MailAccount, error)
}

type accountUsecase struct {
	accounts repository.AccountRepository
}

// NewAccountUsecase creates a new instance of accountUsecase
func NewAccountUsecase(accounts repository.AccountRepository) AccountUsecase {
	return &accountUsecase{accounts: accounts}
}

func (u *accountUsecase) ListAccounts() ([]*accountdomain.MailAccount, error) {
	return u.accounts.ListAll()
}

func (u *accountUsecase) GetAccount(id string) (*accountdomain.MailAccount, error) {
	return u.accounts.FindByID(id)
}

// ConnectAccount registers a mailbox, or refreshes the stored credentials
// when the address is already connected
func (u *accountUsecase) ConnectAccount(account *accountdomain.MailAccount) (*accountdomain.MailAccount, error) {
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	if account.Email == "" {
		return nil, fmt.Errorf("account email is required")
	}

	switch account.Provider {
	case "imap":
		if account.ImapServer == "" || account.ImapPassword == "" {
			return nil, fmt.Errorf("imap accounts require a server and password")
		}
		if account.ImapPort == 0 {
			account.ImapPort = 993
		}
	case "", "google":
		account.Provider = "google"
		if account.RefreshToken == "" {
			return nil, fmt.Errorf("google accounts require a refresh token")
		}
	default:
		return nil, fmt.Errorf("unsupported provider: %s", account.Provider)
	}

	existing, err := u.accounts.FindByEmail(account.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Name = account.Name
		existing.Provider = account.Provider
		existing.AccessToken = account.AccessToken
		existing.RefreshToken = account.RefreshToken
		existing.TokenExpiry = account.TokenExpiry
		existing.ImapServer = account.ImapServer
		existing.ImapPort = account.ImapPort
		existing.ImapPassword = account.ImapPassword
		existing.SyncEnabled = true
		if err := u.accounts.Update(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	account.ID = uuid.New().String()
	account.SyncEnabled = true
	if err := u.accounts.Create(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (u *accountUsecase) SetSyncEnabled(id string, enabled bool) (*accountdomain.MailAccount, error) {
	account, err := u.accounts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, nil
	}
	account.SyncEnabled = enabled
	if err := u.accounts.Update(account); err != nil {
		return nil, err
	}
	return account, nil
}
