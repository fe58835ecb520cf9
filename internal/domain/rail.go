package domain

import "strings"

// RailType is the closed set of payment instrument categories.
type RailType string

const (
	RailTypeWallet RailType = "wallet"
	RailTypeBank   RailType = "bank"
	RailTypeCard   RailType = "card"
	RailTypeBnpl   RailType = "bnpl"
)

// Rail describes one entry of the canonical rail catalog.
type Rail struct {
	ID        string
	Name      string
	Type      RailType
	Universal bool
}

// catalog is the single source of truth for rail identity. Merchant-supplied
// rail names are matched against Name, case-insensitively, so compatibility
// checks never depend on ad hoc string comparisons scattered across callers.
var catalog = []Rail{
	{ID: "tng", Name: "TouchNGo", Type: RailTypeWallet},
	{ID: "grabpay", Name: "GrabPay", Type: RailTypeWallet},
	{ID: "boost", Name: "Boost", Type: RailTypeWallet},
	{ID: "shopeepay", Name: "ShopeePay", Type: RailTypeWallet},
	{ID: "maybank", Name: "Maybank", Type: RailTypeBank},
	{ID: "cimb", Name: "CIMB", Type: RailTypeBank},
	{ID: "duitnow", Name: "DuitNow", Type: RailTypeBank, Universal: true},
	{ID: "visa", Name: "Visa", Type: RailTypeCard},
	{ID: "mastercard", Name: "Mastercard", Type: RailTypeCard},
	{ID: "atome", Name: "Atome", Type: RailTypeBnpl},
}

// Catalog returns a copy of the canonical rail catalog.
func Catalog() []Rail {
	return append([]Rail(nil), catalog...)
}

// RailByName looks up a catalog entry by display name, ignoring case.
func RailByName(name string) (Rail, bool) {
	for _, r := range catalog {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Rail{}, false
}

// IsUniversalRail reports whether the named rail is accepted by any payee
// regardless of their stated rail list. Generic bank-to-bank transfer rails
// (DuitNow) qualify; unknown names do not.
func IsUniversalRail(name string) bool {
	r, ok := RailByName(name)
	return ok && r.Universal
}

// IsKnownRail reports whether the name matches any catalog entry.
func IsKnownRail(name string) bool {
	_, ok := RailByName(name)
	return ok
}
