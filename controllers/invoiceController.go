package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shul-backend/billing"
	"shul-backend/database"
	"shul-backend/middlewares"
	"shul-backend/models"
	"shul-backend/services"
	"shul-backend/utils"
)

type InvoiceItemDTO struct {
	Description string           `json:"description" validate:"required,min=1"`
	Quantity    *decimal.Decimal `json:"quantity"` // omitted means 1
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	HonorID     *string          `json:"honor_id"`
}

type InvoiceCreateDTO struct {
	PersonID      string           `json:"person_id"` // checked by the billing rules, not here
	CampaignID    string           `json:"campaign_id"`
	InvoiceNumber string           `json:"invoice_number" validate:"omitempty,max=32"`
	Items         []InvoiceItemDTO `json:"items" validate:"dive"`
	Notes         string           `json:"notes"`
	DueDate       *time.Time       `json:"due_date"`
	Issue         bool             `json:"issue"`
	SendEmail     bool             `json:"send_email"`
	EmailTo       string           `json:"email_to" validate:"omitempty,email"`
}

// invoiceView is the detail payload: the invoice plus what the admin screen
// needs to render its actions.
type invoiceView struct {
	*models.Invoice
	Paid    decimal.Decimal `json:"paid"`
	CanVoid bool            `json:"can_void"`
}

type InvoiceSendDTO struct {
	Email   bool   `json:"email"`
	EmailTo string `json:"email_to" validate:"omitempty,email"`
}

// POST /api/invoices
func CreateInvoice(c *fiber.Ctx) error {
	var in InvoiceCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	items := make([]services.ItemInput, len(in.Items))
	for i, it := range in.Items {
		qty := decimal.NewFromInt(1)
		if it.Quantity != nil {
			qty = *it.Quantity
		}
		items[i] = services.ItemInput{
			Description: it.Description,
			Quantity:    qty,
			UnitPrice:   utils.Round2(it.UnitPrice),
			HonorID:     it.HonorID,
		}
	}

	b, _, err := billingFor(c)
	if err != nil {
		return err
	}
	inv, err := b.CreateInvoice(c.UserContext(), services.CreateInvoiceInput{
		PersonID:      in.PersonID,
		CampaignID:    in.CampaignID,
		InvoiceNumber: in.InvoiceNumber,
		Items:         items,
		Notes:         in.Notes,
		DueDate:       in.DueDate,
		Issue:         in.Issue,
		SendEmail:     in.SendEmail,
		EmailTo:       in.EmailTo,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// GET /api/invoices?person_id=&campaign_id=&status=&search=&sort=-created_at&limit=&offset=
func GetInvoices(c *fiber.Ctx) error {
	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	status := c.Query("status")
	if status != "" {
		if _, err := billing.ParseStatus(status); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	limit, offset := utils.Page(c.Query("limit"), c.Query("offset"))
	invoices, total, err := s.ListInvoices(c.UserContext(), database.InvoiceFilter{
		PersonID:   c.Query("person_id"),
		CampaignID: c.Query("campaign_id"),
		Status:     status,
		Search:     c.Query("search"),
		Sort:       c.Query("sort"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return err
	}
	now := time.Now()
	for i := range invoices {
		invoices[i].Status = billing.DisplayStatus(invoices[i].Status, invoices[i].DueDate, now)
	}
	return c.JSON(fiber.Map{
		"invoices": invoices,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GET /api/invoices/:id
func GetInvoice(c *fiber.Ctx) error {
	id, err := pathID(c, "invoice")
	if err != nil {
		return err
	}
	b, _, err := billingFor(c)
	if err != nil {
		return err
	}
	inv, err := b.GetInvoice(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(invoiceView{Invoice: inv, Paid: inv.Paid(), CanVoid: billing.CanVoid(inv.Status)})
}

// POST /api/invoices/:id/send
func SendInvoice(c *fiber.Ctx) error {
	id, err := pathID(c, "invoice")
	if err != nil {
		return err
	}
	version, err := expectedVersion(c)
	if err != nil {
		return err
	}
	var in InvoiceSendDTO
	if len(c.Body()) > 0 {
		if err := middlewares.BindAndValidate(c, &in); err != nil {
			return err
		}
	}
	b, _, err := billingFor(c)
	if err != nil {
		return err
	}
	inv, err := b.SendInvoice(c.UserContext(), services.SendInvoiceInput{
		InvoiceID:       id,
		ExpectedVersion: version,
		Email:           in.Email,
		EmailTo:         in.EmailTo,
	})
	if err != nil {
		return err
	}
	return c.JSON(inv)
}

// POST /api/invoices/:id/void
func VoidInvoice(c *fiber.Ctx) error {
	id, err := pathID(c, "invoice")
	if err != nil {
		return err
	}
	version, err := expectedVersion(c)
	if err != nil {
		return err
	}
	b, _, err := billingFor(c)
	if err != nil {
		return err
	}
	inv, err := b.VoidInvoice(c.UserContext(), id, version)
	if err != nil {
		return err
	}
	return c.JSON(inv)
}

// GET /api/invoices/:id/versions
func GetInvoiceVersions(c *fiber.Ctx) error {
	id, err := pathID(c, "invoice")
	if err != nil {
		return err
	}
	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	if _, err := s.GetInvoice(c.UserContext(), id); err != nil {
		return fmt.Errorf("invoice: %w", err)
	}
	versions, err := s.InvoiceVersions(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"versions": versions})
}
