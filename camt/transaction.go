// Package camt reads ISO 20022 camt.05x bank statements into transactions
package camt

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// DefaultLabel is used when an entry carries no free text at all.
const DefaultLabel = "without label"

// UnknownDate marks an entry without a booking date.
var UnknownDate = civil.Date{Year: 1, Month: time.January, Day: 1}

// Transaction is one booked entry of a statement.
// Date, Amount, OriginalLabel and Reference are fixed by Extract. HarmonizedLabel is
// filled in later by the harmonize package.
type Transaction struct {
	Date            civil.Date      `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	OriginalLabel   string          `json:"originalLabel"`
	HarmonizedLabel string          `json:"harmonizedLabel"`
	Reference       string          `json:"reference"`
}

// HasKnownDate reports whether the entry had a booking date.
func (t Transaction) HasKnownDate() bool { return t.Date != UnknownDate }
