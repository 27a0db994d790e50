package usecase

import (
	"time"

	orderdomain "sellerops-backend/internal/order/domain"
)

// FieldUpdates is the field-level update set computed for an existing order.
// Nil members leave the corresponding field untouched.
type FieldUpdates struct {
	OrderNumber          *string
	TrackingNumber       *string
	Carrier              *string
	Status               *orderdomain.OrderStatus
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
	TotalCost            *float64
	Currency             *string
}

// Empty reports whether applying the update set would change nothing
func (u FieldUpdates) Empty() bool {
	return u.OrderNumber == nil && u.TrackingNumber == nil && u.Carrier == nil &&
		u.Status == nil && u.ExpectedDeliveryDate == nil &&
		u.ActualDeliveryDate == nil && u.TotalCost == nil
}

// Apply writes the update set onto the order
func (u FieldUpdates) Apply(order *orderdomain.SupplierOrder) {
	if u.OrderNumber != nil {
		order.OrderNumber = u.OrderNumber
	}
	if u.TrackingNumber != nil {
		order.TrackingNumber = u.TrackingNumber
	}
	if u.Carrier != nil {
		order.Carrier = u.Carrier
	}
	if u.Status != nil {
		order.Status = *u.Status
	}
	if u.ExpectedDeliveryDate != nil {
		order.ExpectedDeliveryDate = u.ExpectedDeliveryDate
	}
	if u.ActualDeliveryDate != nil {
		order.ActualDeliveryDate = u.ActualDeliveryDate
	}
	if u.TotalCost != nil {
		order.TotalCost = u.TotalCost
		if u.Currency != nil {
			order.Currency = *u.Currency
		}
	}
}

// ComputeUpdates decides which extracted facts may flow into an existing
// order. Known values are never overwritten (re-extraction from reply chains
// is noisy), and status only moves forward: a strictly higher rank, or the
// cancelled/issue overrides which always win because they are the ground
// truth outcome. Inbound email is not guaranteed to arrive in chronological
// order, so backward movement is refused here rather than assumed away.
func ComputeUpdates(existing *orderdomain.SupplierOrder, facts *orderdomain.ParsedOrderFacts, receivedAt time.Time) FieldUpdates {
	var updates FieldUpdates

	if existing.OrderNumber == nil && facts.OrderNumber != nil {
		updates.OrderNumber = facts.OrderNumber
	}

	if existing.TrackingNumber == nil && facts.TrackingNumber != nil {
		updates.TrackingNumber = facts.TrackingNumber
	}
	if existing.Carrier == nil && facts.Carrier != nil {
		updates.Carrier = facts.Carrier
	}

	if statusAdvances(existing.Status, facts.Status) {
		newStatus := facts.Status
		updates.Status = &newStatus

		if newStatus == orderdomain.StatusDelivered && existing.ActualDeliveryDate == nil {
			delivered := receivedAt
			updates.ActualDeliveryDate = &delivered
		}
	}

	if existing.ExpectedDeliveryDate == nil && facts.ExpectedDeliveryDate != nil {
		updates.ExpectedDeliveryDate = facts.ExpectedDeliveryDate
	}

	if existing.TotalCost == nil && facts.TotalCost != nil {
		updates.TotalCost = facts.TotalCost
		currency := facts.Currency
		updates.Currency = &currency
	}

	return updates
}

func statusAdvances(current, next orderdomain.OrderStatus) bool {
	if next == current {
		return false
	}
	if next.IsOverride() {
		return true
	}
	// Rank -1 (terminal/exception current state) is never outranked by a
	// forward state: once cancelled or issue, only another override applies.
	if current.IsOverride() {
		return false
	}
	return next.Rank() > current.Rank()
}
