package repository

import (
	"time"

	orderdomain "sellerops-backend/internal/order/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// syncRunRepository implements SyncRunRepository using GORM
type syncRunRepository struct {
	db *gorm.DB
}

// NewSyncRunRepository creates a new instance of syncRunRepository
func NewSyncRunRepository(db *gorm.DB) SyncRunRepository {
	return &syncRunRepository{db: db}
}

func (r *syncRunRepository) Create(run *orderdomain.SyncRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	now := time.Now()
	run.CreatedAt = now
	run.UpdatedAt = now
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	return r.db.Create(run).Error
}

func (r *syncRunRepository) Update(run *orderdomain.SyncRun) error {
	run.UpdatedAt = time.Now()
	return r.db.Save(run).Error
}

func (r *syncRunRepository) List(limit, offset int) ([]*orderdomain.SyncRun, int64, error) {
	var runs []*orderdomain.SyncRun
	var total int64

	if err := r.db.Model(&orderdomain.SyncRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("started_at DESC").Limit(limit).Offset(offset).Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

func (r *syncRunRepository) ListByAccount(accountID string, limit, offset int) ([]*orderdomain.SyncRun, int64, error) {
	var runs []*orderdomain.SyncRun
	var total int64

	query := r.db.Model(&orderdomain.SyncRun{}).Where("account_id = ?", accountID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("started_at DESC").Limit(limit).Offset(offset).Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
