// Package parser implements the pure text heuristics of the supplier-order
// engine: classification of inbound email and field extraction. Nothing in
// this package performs I/O or returns errors; absence of a match is a normal
// result.
package parser

import (
	"regexp"
	"strings"
)

// Seller-side noise: the dashboard owner is the seller, so emails about their
// own customers' orders must never be treated as supplier purchases.
var sellerNoiseKeywords = []string{
	"you sold",
	"you've made a sale",
	"you have made a sale",
	"customer order",
	"buyer",
	"payout",
	"your listing",
	"item sold",
}

// Review/feedback requests often quote a valid order number, so they are
// filtered out before the strong positive patterns get a chance to fire.
var reviewSubjectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`how was your (order|purchase|experience)`),
	regexp.MustCompile(`rate your (order|purchase|experience)`),
	regexp.MustCompile(`(leave|write|share) (a |your )?(review|feedback)`),
	regexp.MustCompile(`we('d| would) love your feedback`),
	regexp.MustCompile(`tell us (what you think|about your experience)`),
	regexp.MustCompile(`review your (recent )?(order|purchase)`),
}

var reviewBodyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`please (rate|review) your (recent )?(order|purchase)`),
	regexp.MustCompile(`leave us a review`),
	regexp.MustCompile(`your feedback (helps|matters)`),
}

// Strong positive patterns: canonical transactional phrasing. Any one of these
// accepts the email outright, overriding promotional content elsewhere in it
// (unsubscribe footers and the like).
var strongOrderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`order (is )?confirmed`),
	regexp.MustCompile(`order confirmation`),
	regexp.MustCompile(`thank you for your (order|purchase)`),
	regexp.MustCompile(`your order (has been|was) (placed|received)`),
	regexp.MustCompile(`(order|confirmation|invoice|po|purchase order)\s*(number|no\.?|#|id)\s*[:#]?\s*[a-z0-9][a-z0-9-]{3,}`),
	regexp.MustCompile(`(has|have) (been )?(shipped|dispatched)`),
	regexp.MustCompile(`(shipped|dispatched).{0,40}tracking`),
	regexp.MustCompile(`tracking (number|no\.?|#|code)\s*[:#]?\s*[a-z0-9]`),
	regexp.MustCompile(`(has been|was) delivered`),
	regexp.MustCompile(`delivery confirmation`),
	regexp.MustCompile(`payment (received|confirmed|confirmation|successful)`),
	regexp.MustCompile(`receipt for your (order|payment|purchase)`),
}

// Promotional phrasing. Only consulted when no strong pattern matched, and
// only against the subject: a promo footer in the body must not reject an
// otherwise transactional email, a promo subject line does.
var promoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+%\s*off`),
	regexp.MustCompile(`\bsale\b`),
	regexp.MustCompile(`limited time`),
	regexp.MustCompile(`\bdeal(s)?\b`),
	regexp.MustCompile(`discount code`),
	regexp.MustCompile(`flash sale`),
	regexp.MustCompile(`don't miss`),
	regexp.MustCompile(`last chance`),
}

// Generic lifecycle keywords; the weak acceptance tier requires one of these
// in the subject.
var weakSubjectKeywords = []string{
	"shipped",
	"dispatched",
	"tracking",
	"delivered",
	"invoice",
	"receipt",
	"confirmed",
}

// IsSupplierOrder decides whether (subject, body) is a genuine supplier-order
// email for a purchase the mailbox owner made. The tiers are ordered and the
// first match short-circuits.
func IsSupplierOrder(subject, body string) bool {
	subjectLower := strings.ToLower(subject)
	bodyLower := strings.ToLower(body)
	combined := subjectLower + " " + bodyLower

	for _, kw := range sellerNoiseKeywords {
		if strings.Contains(combined, kw) {
			return false
		}
	}

	for _, re := range reviewSubjectPatterns {
		if re.MatchString(subjectLower) {
			return false
		}
	}
	for _, re := range reviewBodyPatterns {
		if re.MatchString(bodyLower) {
			return false
		}
	}

	for _, re := range strongOrderPatterns {
		if re.MatchString(combined) {
			return true
		}
	}

	for _, re := range promoPatterns {
		if re.MatchString(subjectLower) {
			return false
		}
	}

	for _, kw := range weakSubjectKeywords {
		if strings.Contains(subjectLower, kw) {
			return true
		}
	}

	return false
}
