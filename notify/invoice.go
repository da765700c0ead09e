package notify

import (
	"fmt"
	"strings"

	"shul-backend/billing"
	"shul-backend/models"
)

// InvoiceMessage renders the email for an invoice.
func InvoiceMessage(shulName, to string, inv *models.Invoice, items []models.InvoiceItem) Message {
	var b strings.Builder
	name := ""
	if inv.Person != nil {
		name = inv.Person.FirstName
	}
	if name != "" {
		fmt.Fprintf(&b, "Dear %s,\n\n", name)
	}
	fmt.Fprintf(&b, "Invoice %s from %s\n\n", inv.InvoiceNumber, shulName)
	for _, it := range items {
		fmt.Fprintf(&b, "  %-40s %8s x %10s = %10s\n",
			it.Description, it.Quantity.String(), billing.Display(it.UnitPrice), billing.Display(it.Amount))
	}
	fmt.Fprintf(&b, "\nTotal:       %s\n", billing.Display(inv.Total))
	fmt.Fprintf(&b, "Balance due: %s\n", billing.Display(inv.Balance))
	if inv.DueDate != nil {
		fmt.Fprintf(&b, "Due date:    %s\n", inv.DueDate.Format("2006-01-02"))
	}
	if inv.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", inv.Notes)
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s: invoice %s", shulName, inv.InvoiceNumber),
		Body:    b.String(),
	}
}
