package usecase

import (
	"fmt"
	"time"

	orderdomain "sellerops-backend/internal/order/domain"
)

// EvaluateFlags runs the auto-flag rule chain against an order. First match
// wins, so at most one reason is ever recorded; (false, nil) means the order
// needs no operator attention.
func EvaluateFlags(order *orderdomain.SupplierOrder, settings *orderdomain.AutoFlagSettings, now time.Time) (bool, *string) {
	if settings.AutoFlagOverdue &&
		order.Status != orderdomain.StatusDelivered && order.Status != orderdomain.StatusCancelled &&
		order.ExpectedDeliveryDate != nil && order.ExpectedDeliveryDate.Before(now) {
		return flagged("Expected delivery date %s has passed", order.ExpectedDeliveryDate.Format("2006-01-02"))
	}

	if settings.AutoFlagCancelled && order.Status == orderdomain.StatusCancelled {
		return flagged("Order was cancelled by the supplier")
	}

	// An issue state is always actionable, independent of any toggle
	if order.Status == orderdomain.StatusIssue {
		return flagged("Order has a reported issue (delay or stock problem)")
	}

	if settings.AutoFlagNoTracking &&
		order.Status == orderdomain.StatusConfirmed &&
		order.TrackingNumber == nil &&
		olderThanDays(order.OrderDate, settings.NoTrackingThresholdDays, now) {
		return flagged("No tracking number %d days after order", settings.NoTrackingThresholdDays)
	}

	if settings.AutoFlagInTransit &&
		(order.Status == orderdomain.StatusShipped || order.Status == orderdomain.StatusInTransit) &&
		order.ActualDeliveryDate == nil &&
		olderThanDays(order.OrderDate, settings.InTransitThresholdDays, now) {
		return flagged("In transit for more than %d days without delivery", settings.InTransitThresholdDays)
	}

	return false, nil
}

func olderThanDays(t time.Time, days int, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	return now.Sub(t) > time.Duration(days)*24*time.Hour
}

func flagged(format string, args ...interface{}) (bool, *string) {
	reason := fmt.Sprintf(format, args...)
	return true, &reason
}
