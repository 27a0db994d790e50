package domain

import "time"

// ParsedOrderFacts holds the structured fields extracted from a single email.
// Every field except the lifecycle signal is optional; absence of a field is a
// normal outcome of extraction, not an error.
type ParsedOrderFacts struct {
	SupplierName  string
	SupplierEmail string

	OrderNumber    *string
	TrackingNumber *string
	Carrier        *string

	OrderDate            time.Time
	ExpectedDeliveryDate *time.Time

	TotalCost *float64
	Currency  string

	// Status is always set; defaults to StatusPending when no stronger
	// lifecycle signal is found in the text.
	Status OrderStatus
}
