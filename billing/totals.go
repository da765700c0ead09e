// Package billing holds the invoice arithmetic and status rules shared by the
// HTTP handlers, the background worker and the store. Nothing in here touches
// the database or the network.
package billing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNoPayer           = errors.New("payer is required")
	ErrNoCampaign        = errors.New("campaign is required")
	ErrEmptyTotal        = errors.New("invoice total must be greater than zero")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrOverpayment       = errors.New("amount exceeds outstanding balance")
)

// Line is one priced row of an invoice draft.
type Line struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Amount is quantity × unit price, unrounded.
func (l Line) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Totals is the result of pricing a list of lines. Amounts[i] belongs to lines[i].
type Totals struct {
	Amounts []decimal.Decimal
	Total   decimal.Decimal
}

// ComputeTotals prices every line and sums them. An empty list totals zero.
func ComputeTotals(lines []Line) Totals {
	t := Totals{
		Amounts: make([]decimal.Decimal, len(lines)),
		Total:   decimal.Zero,
	}
	for i, l := range lines {
		a := l.Amount()
		t.Amounts[i] = a
		t.Total = t.Total.Add(a)
	}
	return t
}

// Cents rounds every line amount to cents and re-sums the rounded amounts.
// This is the form an invoice is stored in, so the stored total always
// equals the sum of the stored line amounts.
func (t Totals) Cents() Totals {
	c := Totals{
		Amounts: make([]decimal.Decimal, len(t.Amounts)),
		Total:   decimal.Zero,
	}
	for i, a := range t.Amounts {
		c.Amounts[i] = a.Round(2)
		c.Total = c.Total.Add(c.Amounts[i])
	}
	return c
}

// Draft is an invoice as submitted, before anything is persisted.
type Draft struct {
	PersonID        string
	CampaignID      string
	RequireCampaign bool
	Lines           []Line
}

// Validate checks the submit preconditions and returns the computed totals.
// Individual lines may be zero or negative (credits); only the invoice total
// has to be positive.
func (d Draft) Validate() (Totals, error) {
	if strings.TrimSpace(d.PersonID) == "" {
		return Totals{}, ErrNoPayer
	}
	if d.RequireCampaign && strings.TrimSpace(d.CampaignID) == "" {
		return Totals{}, ErrNoCampaign
	}
	t := ComputeTotals(d.Lines)
	if !t.Total.IsPositive() || !t.Cents().Total.IsPositive() {
		return Totals{}, ErrEmptyTotal
	}
	return t, nil
}

// Display renders an amount the way it is shown to people: two decimals.
func Display(d decimal.Decimal) string {
	return d.StringFixed(2)
}
