package repository

import orderdomain "sellerops-backend/internal/order/domain"

// SyncRunRepository defines the append-only run log operations
type SyncRunRepository interface {
	Create(run *orderdomain.SyncRun) error
	Update(run *orderdomain.SyncRun) error
	List(limit, offset int) ([]*orderdomain.SyncRun, int64, error)
	ListByAccount(accountID string, limit, offset int) ([]*orderdomain.SyncRun, int64, error)
}
