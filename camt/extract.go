package camt

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/beevik/etree"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const debitIndicator = "DBIT"

// Extract walks every statement of doc and returns one Transaction per entry that
// carries an amount, in document order.
// A document without a root element yields an empty result. A malformed amount or
// booking date aborts the whole extraction with an *ExtractionError.
func Extract(doc *etree.Document) ([]Transaction, error) {
	transactions := make([]Transaction, 0)
	if doc == nil || doc.Root() == nil {
		log.Warn().Msg("CAMT document has no root element, no transactions extracted")
		return transactions, nil
	}

	n := nsMatcher{uri: doc.Root().NamespaceURI()}
	entryNo := 0
	for _, stmt := range n.descendants(doc.Root(), "Stmt") {
		for _, entry := range n.children(stmt, "Ntry") {
			entryNo++
			t, ok, err := n.entry(entry, entryNo)
			if err != nil {
				return nil, err
			}
			if !ok {
				log.Debug().Int("Entry", entryNo).Msg("Skipping CAMT entry without amount")
				continue
			}
			transactions = append(transactions, t)
		}
	}

	log.Info().Int("Transactions", len(transactions)).Msg("Extracted transactions from CAMT document")
	return transactions, nil
}

// entry converts a single Ntry element. ok is false when the entry has no amount.
func (n nsMatcher) entry(entry *etree.Element, entryNo int) (t Transaction, ok bool, err error) {
	amt := n.child(entry, "Amt")
	if amt == nil {
		return Transaction{}, false, nil
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(amt.Text()))
	if err != nil {
		return Transaction{}, false, &ExtractionError{Entry: entryNo, Field: "Amt", Err: err}
	}
	if n.text(entry, "CdtDbtInd") == debitIndicator {
		amount = amount.Neg()
	}

	date, err := n.bookingDate(entry)
	if err != nil {
		return Transaction{}, false, &ExtractionError{Entry: entryNo, Field: "BookgDt", Err: err}
	}

	// Only the first transaction details block is consulted.
	var details *etree.Element
	for _, ntryDtls := range n.children(entry, "NtryDtls") {
		if details = n.child(ntryDtls, "TxDtls"); details != nil {
			break
		}
	}

	log.Debug().
		Int("Entry", entryNo).
		Str("Currency", amt.SelectAttrValue("Ccy", "")).
		Str("Amount", amount.String()).
		Msg("Found CAMT entry")

	return Transaction{
		Date:          date,
		Amount:        amount,
		OriginalLabel: firstNonEmpty(DefaultLabel, n.text(details, "RmtInf", "Ustrd"), n.text(details, "AddtlTxInf"), n.text(entry, "AddtlNtryInf")),
		Reference:     firstNonEmpty("", n.text(details, "Refs", "AcctSvcrRef"), n.text(details, "Refs", "InstrId")),
	}, true, nil
}

// bookingDate reads BookgDt/Dt, falling back to the date part of BookgDt/DtTm.
func (n nsMatcher) bookingDate(entry *etree.Element) (civil.Date, error) {
	if dt := n.text(entry, "BookgDt", "Dt"); dt != "" {
		return civil.ParseDate(dt)
	}
	if dtTm := n.text(entry, "BookgDt", "DtTm"); dtTm != "" {
		ts, err := parseDateTime(dtTm)
		if err != nil {
			return civil.Date{}, err
		}
		return civil.DateOf(ts), nil
	}
	return UnknownDate, nil
}

// ISODateTime allows the offset to be omitted.
func parseDateTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	ts, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ISO date time %q: %w", s, err)
	}
	return ts, nil
}

func firstNonEmpty(fallback string, values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return fallback
}

// nsMatcher selects elements by local name inside the root element's namespace.
type nsMatcher struct {
	uri string
}

func (n nsMatcher) matches(e *etree.Element, tag string) bool {
	return e.Tag == tag && e.NamespaceURI() == n.uri
}

func (n nsMatcher) children(e *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if n.matches(c, tag) {
			out = append(out, c)
		}
	}
	return out
}

func (n nsMatcher) child(e *etree.Element, tag string) *etree.Element {
	if e == nil {
		return nil
	}
	for _, c := range e.ChildElements() {
		if n.matches(c, tag) {
			return c
		}
	}
	return nil
}

func (n nsMatcher) descendants(e *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if n.matches(c, tag) {
			out = append(out, c)
		}
		out = append(out, n.descendants(c, tag)...)
	}
	return out
}

// text follows path from e and returns the trimmed text of the last element,
// or "" when any step is missing.
func (n nsMatcher) text(e *etree.Element, path ...string) string {
	for _, tag := range path {
		if e = n.child(e, tag); e == nil {
			return ""
		}
	}
	return strings.TrimSpace(e.Text())
}
