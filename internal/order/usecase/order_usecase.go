package usecase

import (
	"fmt"

	orderdomain "sellerops-backend/internal/order/domain"
	"sellerops-backend/internal/order/repository"
)

// OrderUsecase is the read/operator surface over supplier orders, settings
// and run history. All methods are thin pass-throughs for the REST layer.
type OrderUsecase interface {
	ListOrders(accountID string, limit, offset int) ([]*orderdomain.SupplierOrder, int64, error)
	GetOrder(id string) (*orderdomain.SupplierOrder, error)
	UpdateNotes(id, notes string) (*orderdomain.SupplierOrder, error)
	GetAutoFlagSettings() (*orderdomain.AutoFlagSettings, error)
	UpdateAutoFlagSettings(settings *orderdomain.AutoFlagSettings) (*orderdomain.AutoFlagSettings, error)
	ListSyncRuns(accountID string, limit, offset int) ([]*orderdomain.SyncRun, int64, error)
}

// orderUsecase implements OrderUsecase
type orderUsecase struct {
	orders       repository.SupplierOrderRepository
	settingsRepo repository.AutoFlagSettingsRepository
	runs         repository.SyncRunRepository
}

// NewOrderUsecase creates a new instance of orderUsecase
func NewOrderUsecase(orders repository.SupplierOrderRepository, settingsRepo repository.AutoFlagSettingsRepository, runs repository.SyncRunRepository) OrderUsecase {
	return &orderUsecase{orders: orders, settingsRepo: settingsRepo, runs: runs}
}

func (u *orderUsecase) ListOrders(accountID string, limit, offset int) ([]*orderdomain.SupplierOrder, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if accountID != "" {
		return u.orders.ListByAccount(accountID, limit, offset)
	}
	return u.orders.ListAll(limit, offset)
}

func (u *orderUsecase) GetOrder(id string) (*orderdomain.SupplierOrder, error) {
	return u.orders.GetByID(id)
}

func (u *orderUsecase) UpdateNotes(id, notes string) (*orderdomain.SupplierOrder, error) {
	order, err := u.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order not found: %s", id)
	}
	order.Notes = notes
	if err := u.orders.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (u *orderUsecase) GetAutoFlagSettings() (*orderdomain.AutoFlagSettings, error) {
	return u.settingsRepo.GetOrCreateDefault()
}

func (u *orderUsecase) UpdateAutoFlagSettings(incoming *orderdomain.AutoFlagSettings) (*orderdomain.AutoFlagSettings, error) {
	existing, err := u.settingsRepo.GetOrCreateDefault()
	if err != nil {
		return nil, err
	}

	if incoming.InTransitThresholdDays > 0 {
		existing.InTransitThresholdDays = incoming.InTransitThresholdDays
	}
	if incoming.NoTrackingThresholdDays > 0 {
		existing.NoTrackingThresholdDays = incoming.NoTrackingThresholdDays
	}
	existing.AutoFlagOverdue = incoming.AutoFlagOverdue
	existing.AutoFlagCancelled = incoming.AutoFlagCancelled
	existing.AutoFlagNoTracking = incoming.AutoFlagNoTracking
	existing.AutoFlagInTransit = incoming.AutoFlagInTransit

	if err := u.settingsRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (u *orderUsecase) ListSyncRuns(accountID string, limit, offset int) ([]*orderdomain.SyncRun, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if accountID != "" {
		return u.runs.ListByAccount(accountID, limit, offset)
	}
	return u.runs.List(limit, offset)
}
