package repository

import accountdomain "sellerops-backend/internal/account/domain"

// AccountRepository defines access to the connected mailbox account registry
type AccountRepository interface {
	Create(account *accountdomain.MailAccount) error
	Update(account *accountdomain.MailAccount) error
	FindByID(id string) (*accountdomain.MailAccount, error)
	FindByEmail(email string) (*accountdomain.MailAccount, error)
	ListAll() ([]*accountdomain.MailAccount, error)
}
