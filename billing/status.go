package billing

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
	StatusVoid    Status = "void"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvoiceVoid       = errors.New("invoice is void")
	ErrInvoicePaid       = errors.New("invoice is already paid")
	ErrInvoiceDraft      = errors.New("invoice must be sent before it can be paid")
)

var transitions = map[Status]map[Status]struct{}{
	StatusDraft:   {StatusSent: {}, StatusVoid: {}},
	StatusSent:    {StatusPartial: {}, StatusPaid: {}, StatusOverdue: {}, StatusVoid: {}},
	StatusPartial: {StatusPartial: {}, StatusPaid: {}, StatusOverdue: {}, StatusVoid: {}},
	StatusOverdue: {StatusPartial: {}, StatusPaid: {}, StatusVoid: {}},
	StatusPaid:    {},
	StatusVoid:    {},
}

// ParseStatus accepts a known status name.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("unknown invoice status %q", s)
	}
	return st, nil
}

// CanTransition reports whether from → to is allowed.
func CanTransition(from, to Status) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// Transition returns nil when from → to is allowed.
func Transition(from, to Status) error {
	if CanTransition(from, to) {
		return nil
	}
	switch from {
	case StatusVoid:
		return ErrInvoiceVoid
	case StatusPaid:
		return ErrInvoicePaid
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// CanVoid mirrors the admin screen: the void action is hidden for paid and
// void invoices.
func CanVoid(s Status) bool {
	return CanTransition(s, StatusVoid)
}

// IsOpen reports whether an invoice still expects money.
func IsOpen(s Status) bool {
	return s == StatusSent || s == StatusPartial || s == StatusOverdue
}

// DisplayStatus derives the overdue label for open invoices whose due date
// has passed. The stored status is not changed.
func DisplayStatus(s Status, due *time.Time, now time.Time) Status {
	if due == nil || (s != StatusSent && s != StatusPartial) {
		return s
	}
	if dueDay(*due).Before(dueDay(now)) {
		return StatusOverdue
	}
	return s
}

func dueDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
