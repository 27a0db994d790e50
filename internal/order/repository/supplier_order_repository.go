package repository

import (
	"time"

	orderdomain "sellerops-backend/internal/order/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// supplierOrderRepository implements SupplierOrderRepository using GORM
type supplierOrderRepository struct {
	db *gorm.DB
}

// NewSupplierOrderRepository creates a new instance of supplierOrderRepository
func NewSupplierOrderRepository(db *gorm.DB) SupplierOrderRepository {
	return &supplierOrderRepository{db: db}
}

func (r *supplierOrderRepository) Create(order *orderdomain.SupplierOrder) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	return r.db.Create(order).Error
}

func (r *supplierOrderRepository) Update(order *orderdomain.SupplierOrder) error {
	order.UpdatedAt = time.Now()
	return r.db.Save(order).Error
}

func (r *supplierOrderRepository) GetByID(id string) (*orderdomain.SupplierOrder, error) {
	var order orderdomain.SupplierOrder
	err := r.db.Where("id = ?", id).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *supplierOrderRepository) GetByEmailID(accountID, emailID string) (*orderdomain.SupplierOrder, error) {
	var order orderdomain.SupplierOrder
	err := r.db.Where("account_id = ? AND email_id = ?", accountID, emailID).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *supplierOrderRepository) GetByOrderNumber(accountID, orderNumber string) (*orderdomain.SupplierOrder, error) {
	var order orderdomain.SupplierOrder
	err := r.db.Where("account_id = ? AND order_number = ?", accountID, orderNumber).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *supplierOrderRepository) GetByTrackingNumber(accountID, trackingNumber string) (*orderdomain.SupplierOrder, error) {
	var order orderdomain.SupplierOrder
	err := r.db.Where("account_id = ? AND tracking_number = ?", accountID, trackingNumber).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *supplierOrderRepository) FindBySupplierEmailRecent(accountID, supplierEmail string, since time.Time) ([]*orderdomain.SupplierOrder, error) {
	var orders []*orderdomain.SupplierOrder
	err := r.db.
		Where("account_id = ? AND supplier_email = ?", accountID, supplierEmail).
		Where("status NOT IN ?", []orderdomain.OrderStatus{orderdomain.StatusDelivered, orderdomain.StatusCancelled}).
		Where("created_at > ?", since).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *supplierOrderRepository) ListByAccount(accountID string, limit, offset int) ([]*orderdomain.SupplierOrder, int64, error) {
	var orders []*orderdomain.SupplierOrder
	var total int64

	query := r.db.Model(&orderdomain.SupplierOrder{}).Where("account_id = ?", accountID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *supplierOrderRepository) ListAll(limit, offset int) ([]*orderdomain.SupplierOrder, int64, error) {
	var orders []*orderdomain.SupplierOrder
	var total int64

	if err := r.db.Model(&orderdomain.SupplierOrder{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
