package usecase

import (
	"time"

	orderdomain "sellerops-backend/internal/order/domain"
	"sellerops-backend/internal/order/repository"
)

// matchWindow bounds the supplier-email fallback tier: only orders created in
// the trailing 30 days are candidates.
const matchWindow = 30 * 24 * time.Hour

// Matcher associates extracted identifiers with an existing order using a
// priority-ordered strategy. First hit wins; nil means "create new".
type Matcher struct {
	orders repository.SupplierOrderRepository
}

// NewMatcher creates a new Matcher
func NewMatcher(orders repository.SupplierOrderRepository) *Matcher {
	return &Matcher{orders: orders}
}

// FindMatch looks up the order this email should update.
//
// Tiers, most to least specific:
//  1. exact order number
//  2. exact tracking number
//  3. same supplier email on a recent non-terminal order, newest first
//
// Tier 3 is deliberately loose so a shipping notice without identifiers can
// still reach the confirmation that preceded it; callers treat it as
// best-effort.
func (m *Matcher) FindMatch(accountID string, facts *orderdomain.ParsedOrderFacts, now time.Time) (*orderdomain.SupplierOrder, error) {
	if facts.OrderNumber != nil {
		order, err := m.orders.GetByOrderNumber(accountID, *facts.OrderNumber)
		if err != nil {
			return nil, err
		}
		if order != nil {
			return order, nil
		}
	}

	if facts.TrackingNumber != nil {
		order, err := m.orders.GetByTrackingNumber(accountID, *facts.TrackingNumber)
		if err != nil {
			return nil, err
		}
		if order != nil {
			return order, nil
		}
	}

	if facts.SupplierEmail != "" {
		orders, err := m.orders.FindBySupplierEmailRecent(accountID, facts.SupplierEmail, now.Add(-matchWindow))
		if err != nil {
			return nil, err
		}
		if len(orders) > 0 {
			return orders[0], nil
		}
	}

	return nil, nil
}
