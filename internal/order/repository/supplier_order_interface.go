package repository

import (
	"time"

	orderdomain "sellerops-backend/internal/order/domain"
)

// SupplierOrderRepository defines the persistence operations for supplier orders
type SupplierOrderRepository interface {
	Create(order *orderdomain.SupplierOrder) error
	Update(order *orderdomain.SupplierOrder) error
	GetByID(id string) (*orderdomain.SupplierOrder, error)
	// GetByEmailID enforces the at-most-one-order-per-email-message guarantee
	GetByEmailID(accountID, emailID string) (*orderdomain.SupplierOrder, error)
	GetByOrderNumber(accountID, orderNumber string) (*orderdomain.SupplierOrder, error)
	GetByTrackingNumber(accountID, trackingNumber string) (*orderdomain.SupplierOrder, error)
	// FindBySupplierEmailRecent returns non-terminal orders from the supplier
	// created after the cutoff, newest first. Best-effort matching tier: the
	// caller accepts that this can associate an email with an unrelated order
	// from the same supplier.
	FindBySupplierEmailRecent(accountID, supplierEmail string, since time.Time) ([]*orderdomain.SupplierOrder, error)
	ListByAccount(accountID string, limit, offset int) ([]*orderdomain.SupplierOrder, int64, error)
	ListAll(limit, offset int) ([]*orderdomain.SupplierOrder, int64, error)
}
