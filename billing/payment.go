package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Reconciliation is the invoice state after a payment has been applied.
type Reconciliation struct {
	Balance decimal.Decimal
	Status  Status
}

// CheckPayable validates that amount may be charged against an invoice in the
// given state. It is run before the gateway is contacted.
func CheckPayable(status Status, balance, amount decimal.Decimal) error {
	switch status {
	case StatusVoid:
		return ErrInvoiceVoid
	case StatusPaid:
		return ErrInvoicePaid
	case StatusDraft:
		return ErrInvoiceDraft
	}
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if amount.GreaterThan(balance) {
		return fmt.Errorf("%w: %s > %s", ErrOverpayment, Display(amount), Display(balance))
	}
	return nil
}

// ApplyPayment decrements balance by amount and picks the next status:
// paid when nothing is left, partial otherwise.
func ApplyPayment(status Status, balance, amount decimal.Decimal) (Reconciliation, error) {
	if err := CheckPayable(status, balance, amount); err != nil {
		return Reconciliation{}, err
	}
	left := balance.Sub(amount)
	next := StatusPartial
	if left.IsZero() {
		next = StatusPaid
	}
	if err := Transition(status, next); err != nil {
		return Reconciliation{}, err
	}
	return Reconciliation{Balance: left, Status: next}, nil
}

// DefaultPaymentAmount is what the payment dialog pre-fills: the full
// outstanding balance.
func DefaultPaymentAmount(balance decimal.Decimal) decimal.Decimal {
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}
