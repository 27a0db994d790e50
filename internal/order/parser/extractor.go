package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"sellerops-backend/internal/order/domain"
)

// Lifecycle keyword tiers, evaluated in fixed priority order. A later
// lifecycle event is trusted over an earlier one that may still be textually
// present in a quoted thread, so delivered outranks shipped outranks
// confirmed.
var lifecycleTiers = []struct {
	status   domain.OrderStatus
	keywords []string
}{
	{domain.StatusDelivered, []string{"has been delivered", "was delivered", "delivery confirmation", "delivered successfully", "your package was delivered"}},
	{domain.StatusCancelled, []string{"cancelled", "canceled", "order has been cancelled", "refund issued", "your refund"}},
	{domain.StatusInTransit, []string{"in transit", "on its way", "out for delivery", "on the way to you"}},
	{domain.StatusShipped, []string{"has shipped", "has been shipped", "was shipped", "dispatched", "shipment confirmation", "shipping confirmation", "on route"}},
	{domain.StatusIssue, []string{"delayed", "delay", "out of stock", "backordered", "back-ordered", "problem with your order", "issue with your order", "unable to fulfill"}},
	{domain.StatusConfirmed, []string{"order confirmed", "order confirmation", "thank you for your order", "order has been placed", "order received", "payment received"}},
}

// Order-number patterns, ordered most to least specific. The first capture
// that survives the length and stop-word checks wins.
var orderNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)order\s*(?:number|no\.?|id)\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9\-]*)`),
	regexp.MustCompile(`(?i)order\s*#\s*([A-Za-z0-9][A-Za-z0-9\-]*)`),
	regexp.MustCompile(`(?i)confirmation\s*(?:number|no\.?|code)?\s*[:#]\s*([A-Za-z0-9][A-Za-z0-9\-]*)`),
	regexp.MustCompile(`(?i)invoice\s*(?:number|no\.?)?\s*[:#]\s*([A-Za-z0-9][A-Za-z0-9\-]*)`),
	regexp.MustCompile(`(?i)(?:po|purchase order)\s*(?:number|no\.?)?\s*[:#]\s*([A-Za-z0-9][A-Za-z0-9\-]*)`),
	// loosest pattern: bare "Order ABC-1234"; requires a digit so prose like
	// "order will" never qualifies
	regexp.MustCompile(`(?i)\border\s+([A-Z0-9\-]*\d[A-Z0-9\-]{2,})\b`),
}

var orderNumberStopWords = map[string]bool{
	"THE": true, "AND": true, "FOR": true, "YOUR": true,
	"THIS": true, "ORDER": true, "SHIP": true,
}

// Tracking patterns carry their carrier label so the number and the carrier
// are extracted atomically; a UPS-shaped number never gets labeled FedEx just
// because the word appears elsewhere in the body. Carrier-agnostic generic
// patterns carry an empty label.
var trackingPatterns = []struct {
	carrier string
	re      *regexp.Regexp
}{
	{"UPS", regexp.MustCompile(`\b(1Z[0-9A-Z]{16})\b`)},
	{"USPS", regexp.MustCompile(`\b(9[2345]\d{20,24})\b`)},
	{"FedEx", regexp.MustCompile(`(?i)fedex[^0-9]{0,20}(\d{12,15})\b`)},
	{"DHL", regexp.MustCompile(`(?i)dhl[^0-9]{0,20}(\d{10,11})\b`)},
	{"", regexp.MustCompile(`(?i)tracking\s*(?:number|no\.?|code|id)?\s*[:#]?\s*([A-Z0-9]{10,30})\b`)},
	{"", regexp.MustCompile(`(?i)track(?:ing)?\s*(?:your (?:package|order|shipment))?[^A-Z0-9]{0,10}([A-Z0-9]{10,30})\b`)},
}

// Fallback carrier table, consulted only when no carrier-labeled tracking
// pattern matched.
var carrierKeywords = []struct {
	carrier  string
	keywords []string
}{
	{"UPS", []string{"ups"}},
	{"FedEx", []string{"fedex", "fed-ex"}},
	{"USPS", []string{"usps", "postal service"}},
	{"DHL", []string{"dhl"}},
	{"Royal Mail", []string{"royal mail"}},
	{"Amazon Logistics", []string{"amazon logistics"}},
	{"Canada Post", []string{"canada post"}},
	{"Evri", []string{"evri", "hermes"}},
	{"OnTrac", []string{"ontrac"}},
}

var moneyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:total|amount|grand total|price|cost)\s*(?:due|paid)?\s*[:\-]?\s*([$£€]|USD|GBP|EUR)?\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)`),
	regexp.MustCompile(`([$£€])(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)`),
	regexp.MustCompile(`\b(USD|GBP|EUR)\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)`),
}

var currencyByToken = map[string]string{
	"$": "USD", "USD": "USD",
	"£": "GBP", "GBP": "GBP",
	"€": "EUR", "EUR": "EUR",
}

// Extract pulls structured order facts out of an email. It never fails:
// fields that cannot be confidently parsed stay nil. now anchors the date
// sanity windows; the email's own receive timestamp backstops the order date.
func Extract(msg *domain.EmailMessage, now time.Time) domain.ParsedOrderFacts {
	text := msg.Subject + "\n" + msg.BodyText
	lower := strings.ToLower(text)

	facts := domain.ParsedOrderFacts{
		SupplierName:  supplierName(msg),
		SupplierEmail: supplierEmail(msg.From),
		Status:        extractLifecycle(lower),
		Currency:      "USD",
	}

	facts.OrderNumber = extractOrderNumber(text)
	facts.TrackingNumber, facts.Carrier = extractTracking(text)
	if facts.Carrier == nil {
		facts.Carrier = fallbackCarrier(lower)
	}

	facts.OrderDate = earliestDate(msg.BodyText, now)
	if facts.OrderDate.IsZero() {
		facts.OrderDate = msg.ReceivedAt
	}
	facts.ExpectedDeliveryDate = expectedDeliveryDate(msg.BodyText, now)

	if cost, currency, ok := extractTotal(text); ok {
		facts.TotalCost = &cost
		facts.Currency = currency
	}

	return facts
}

func extractLifecycle(lower string) domain.OrderStatus {
	for _, tier := range lifecycleTiers {
		for _, kw := range tier.keywords {
			if strings.Contains(lower, kw) {
				return tier.status
			}
		}
	}
	return domain.StatusPending
}

func extractOrderNumber(text string) *string {
	for _, re := range orderNumberPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := strings.ToUpper(strings.Trim(m[1], "-"))
			if len(candidate) < 4 || len(candidate) > 30 {
				continue
			}
			if orderNumberStopWords[candidate] {
				continue
			}
			return &candidate
		}
	}
	return nil
}

func extractTracking(text string) (*string, *string) {
	for _, p := range trackingPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			candidate := strings.ToUpper(m[1])
			if len(candidate) < 10 || len(candidate) > 30 {
				continue
			}
			var carrier *string
			if p.carrier != "" {
				c := p.carrier
				carrier = &c
			}
			return &candidate, carrier
		}
	}
	return nil, nil
}

func fallbackCarrier(lower string) *string {
	for _, entry := range carrierKeywords {
		for _, kw := range entry.keywords {
			if containsWord(lower, kw) {
				c := entry.carrier
				return &c
			}
		}
	}
	return nil
}

// containsWord matches kw on word boundaries so "ups" does not fire inside
// "groups" or "cups".
func containsWord(text, kw string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		beforeOK := start == 0 || !isAlnum(text[start-1])
		afterOK := end == len(text) || !isAlnum(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func extractTotal(text string) (float64, string, bool) {
	for _, re := range moneyPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		token := strings.ToUpper(m[1])
		amountStr := strings.ReplaceAll(m[2], ",", "")
		amount, err := strconv.ParseFloat(amountStr, 64)
		if err != nil || amount <= 0 {
			continue
		}
		currency := "USD"
		if c, ok := currencyByToken[token]; ok {
			currency = c
		}
		return amount, currency, true
	}
	return 0, "", false
}

// supplierEmail isolates the address from a "Name <addr>" From header.
func supplierEmail(from string) string {
	if start := strings.Index(from, "<"); start >= 0 {
		if end := strings.Index(from[start:], ">"); end > 0 {
			return strings.TrimSpace(from[start+1 : start+end])
		}
	}
	return strings.TrimSpace(from)
}

func supplierName(msg *domain.EmailMessage) string {
	if msg.FromName != "" {
		return msg.FromName
	}
	from := msg.From
	if idx := strings.Index(from, "<"); idx > 0 {
		name := strings.Trim(strings.TrimSpace(from[:idx]), `"`)
		if name != "" {
			return name
		}
	}
	return supplierEmail(from)
}
