package domain

import "time"

// OrderStatus represents the lifecycle stage of a supplier order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusInTransit OrderStatus = "in_transit"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
	StatusIssue     OrderStatus = "issue"
)

// statusRank defines the forward progression order for non-terminal states.
// cancelled and issue are deliberately absent: they override any rank.
var statusRank = map[OrderStatus]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusShipped:   2,
	StatusInTransit: 3,
	StatusDelivered: 4,
}

// Rank returns the progression rank of a status, or -1 for terminal/exception
// states that sit outside the forward ordering.
func (s OrderStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// IsOverride reports whether the status unconditionally replaces the current
// one regardless of rank.
func (s OrderStatus) IsOverride() bool {
	return s == StatusCancelled || s == StatusIssue
}

// SupplierOrder is a purchase the seller made with a supplier, reconstructed
// from inbound email. At most one order exists per (account, email message).
type SupplierOrder struct {
	ID            string `json:"id" gorm:"primaryKey"`
	AccountID     string `json:"account_id" gorm:"index;not null;uniqueIndex:idx_account_email"`
	EmailID       string `json:"email_id" gorm:"not null;uniqueIndex:idx_account_email"`
	SupplierName  string `json:"supplier_name"`
	SupplierEmail string `json:"supplier_email" gorm:"index"`

	OrderNumber    *string     `json:"order_number,omitempty" gorm:"index"`
	Status         OrderStatus `json:"status" gorm:"default:pending"`
	TrackingNumber *string     `json:"tracking_number,omitempty" gorm:"index"`
	Carrier        *string     `json:"carrier,omitempty"`

	OrderDate            time.Time  `json:"order_date"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   *time.Time `json:"actual_delivery_date,omitempty"`

	TotalCost *float64 `json:"total_cost,omitempty"`
	Currency  string   `json:"currency" gorm:"default:USD"`

	Notes      string  `json:"notes,omitempty"`
	Flagged    bool    `json:"flagged" gorm:"default:false;index"`
	FlagReason *string `json:"flag_reason,omitempty"`

	// Snapshot of the originating email for operator review
	EmailSubject string `json:"email_subject"`
	EmailSnippet string `json:"email_snippet"`
	EmailBody    string `json:"email_body"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
