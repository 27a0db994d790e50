package repository

import (
	"time"

	accountdomain "sellerops-backend/internal/account/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// accountRepository implements AccountRepository using GORM
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new instance of accountRepository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(account *accountdomain.MailAccount) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	return r.db.Create(account).Error
}

func (r *accountRepository) Update(account *accountdomain.MailAccount) error {
	account.UpdatedAt = time.Now()
	return r.db.Save(account).Error
}

func (r *accountRepository) FindByID(id string) (*accountdomain.MailAccount, error) {
	var account accountdomain.MailAccount
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByEmail(email string) (*accountdomain.MailAccount, error) {
	var account accountdomain.MailAccount
	err := r.db.Where("email = ?", email).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) ListAll() ([]*accountdomain.MailAccount, error) {
	var accounts []*accountdomain.MailAccount
	if err := r.db.Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}
