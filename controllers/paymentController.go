package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shul-backend/database"
	"shul-backend/middlewares"
	"shul-backend/services"
	"shul-backend/utils"
)

type PayInvoiceDTO struct {
	Amount          *decimal.Decimal `json:"amount"` // omitted pays the full balance
	PaymentMethodID string           `json:"payment_method_id"`
	IdempotencyKey  string           `json:"idempotency_key" validate:"omitempty,max=128"`
}

type PayBalanceDTO struct {
	InvoiceIDs      []string         `json:"invoice_ids"`
	Amount          *decimal.Decimal `json:"amount"`
	PaymentMethodID string           `json:"payment_method_id"`
	IdempotencyKey  string           `json:"idempotency_key" validate:"omitempty,max=128"`
}

type ManualPaymentDTO struct {
	Amount         *decimal.Decimal `json:"amount"`
	Method         string           `json:"method" validate:"required,oneof=cash check"`
	Reference      string           `json:"reference"`
	Note           string           `json:"note"`
	PaidAt         *time.Time       `json:"paid_at"`
	IdempotencyKey string           `json:"idempotency_key" validate:"omitempty,max=128"`
}

func roundPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	r := utils.Round2(*d)
	return &r
}

func paymentStatus(res *services.PaymentResult) int {
	if res.Replayed {
		return fiber.StatusOK
	}
	return fiber.StatusCreated
}

// POST /api/invoices/:id/payments
func PayInvoice(c *fiber.Ctx) error {
	id, err := pathID(c, "invoice")
	if err != nil {
		return err
	}
	version, err := expectedVersion(c)
	if err != nil {
		return err
	}
	var in PayInvoiceDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	b, _, err := billingFor(c)
	if err != nil {
		return err
	}
	res, err := b.PayInvoice(c.UserContext(), services.PayInvoiceInput{
		InvoiceID:       id,
		Amount:          roundPtr(in.Amount),
		PaymentMethodID: in.PaymentMethodID,
		IdempotencyKey:  idempotencyKey(c, in.IdempotencyKey),
		ExpectedVersion: version,
	})
	if err != nil {
		return err
	}
	return c.Status(paymentStatus(res)).JSON(res)
}

// POST /api/invoices/:id/payments/manual
func RecordManualPayment(c *fiber.Ctx) error {
	id, err := pathID(c, "invoice")
	if err != nil {
		return err
	}
	version, err := expectedVersion(c)
	if err != nil {
		return err
	}
	var in ManualPaymentDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	b, _, err := billingFor(c)
	if err != nil {
		return err
	}
	res, err := b.RecordManualPayment(c.UserContext(), services.ManualPaymentInput{
		InvoiceID:       id,
		Amount:          roundPtr(in.Amount),
		Method:          in.Method,
		Reference:       in.Reference,
		Note:            in.Note,
		PaidAt:          in.PaidAt,
		IdempotencyKey:  idempotencyKey(c, in.IdempotencyKey),
		ExpectedVersion: version,
	})
	if err != nil {
		return err
	}
	return c.Status(paymentStatus(res)).JSON(res)
}

// POST /api/people/:id/payments
func PayBalance(c *fiber.Ctx) error {
	personID, err := pathID(c, "person")
	if err != nil {
		return err
	}
	var in PayBalanceDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	b, _, err := billingFor(c)
	if err != nil {
		return err
	}
	res, err := b.PayBalance(c.UserContext(), services.PayBalanceInput{
		PersonID:        personID,
		InvoiceIDs:      in.InvoiceIDs,
		Amount:          roundPtr(in.Amount),
		PaymentMethodID: in.PaymentMethodID,
		IdempotencyKey:  idempotencyKey(c, in.IdempotencyKey),
	})
	if err != nil {
		return err
	}
	return c.Status(paymentStatus(res)).JSON(res)
}

// GET /api/payments?person_id=&invoice_id=&subscription_id=&limit=&offset=
// GET /api/invoices/:id/payments
func GetPayments(c *fiber.Ctx) error {
	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	limit, offset := utils.Page(c.Query("limit"), c.Query("offset"))
	f := database.PaymentFilter{
		PersonID:       c.Query("person_id"),
		InvoiceID:      c.Query("invoice_id"),
		SubscriptionID: c.Query("subscription_id"),
		Limit:          limit,
		Offset:         offset,
	}
	if id := c.Params("id"); id != "" {
		f.InvoiceID = id
	}
	payments, err := s.ListPayments(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"payments": payments})
}
