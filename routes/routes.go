package routes

import (
	"github.com/gofiber/fiber/v2"

	"shul-backend/controllers"
	"shul-backend/middlewares"
	"shul-backend/models"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())
	protected.Use(middlewares.RequireRole(models.RoleAdmin, models.RoleGabbai))

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then per-request tenant transaction (pins search_path and commits/rolls back)
	protected.Use(middlewares.TenantTx())

	admin := middlewares.RequireRole(models.RoleAdmin)

	protected.Get("/me", controllers.Me)
	protected.Post("/users", admin, controllers.CreateUser)
	protected.Get("/users", admin, controllers.GetUsers)

	// Processor
	protected.Put("/processor", admin, controllers.PutProcessorConfig)
	protected.Get("/processor", controllers.GetProcessorConfig)

	// People
	protected.Post("/people", controllers.CreatePerson)
	protected.Get("/people", controllers.GetPeople)
	protected.Get("/people/:id", controllers.GetPerson)
	protected.Patch("/people/:id", controllers.UpdatePerson)
	protected.Get("/people/:id/balance", controllers.GetPersonBalance)
	protected.Post("/people/:id/payments", controllers.PayBalance)
	protected.Post("/people/:id/payment-methods", controllers.AddPaymentMethod)
	protected.Get("/people/:id/payment-methods", controllers.GetPaymentMethods)
	protected.Put("/people/:id/payment-methods/:methodId/default", controllers.SetDefaultPaymentMethod)
	protected.Delete("/people/:id/payment-methods/:methodId", controllers.DeletePaymentMethod)
	protected.Get("/balances", controllers.GetBalances)

	// Campaigns
	protected.Post("/campaigns", controllers.CreateCampaign)
	protected.Get("/campaigns", controllers.GetCampaigns)
	protected.Get("/campaigns/:id", controllers.GetCampaign)
	protected.Patch("/campaigns/:id", controllers.UpdateCampaign)

	// Honors
	protected.Post("/honor-types", controllers.CreateHonorTypes) // batch create
	protected.Get("/honor-types", controllers.GetHonorTypes)
	protected.Patch("/honor-types/:id", controllers.UpdateHonorType)
	protected.Post("/honors", controllers.CreateHonor)
	protected.Get("/honors", controllers.GetHonors)
	protected.Post("/honors/bill", controllers.BillHonors)

	// Invoices (versioned, with payments)
	protected.Post("/invoices", controllers.CreateInvoice)
	protected.Get("/invoices", controllers.GetInvoices)
	protected.Get("/invoices/:id", controllers.GetInvoice)
	protected.Post("/invoices/:id/send", controllers.SendInvoice)
	protected.Post("/invoices/:id/void", controllers.VoidInvoice)
	protected.Get("/invoices/:id/versions", controllers.GetInvoiceVersions)
	protected.Post("/invoices/:id/payments", controllers.PayInvoice)
	protected.Post("/invoices/:id/payments/manual", controllers.RecordManualPayment)
	protected.Get("/invoices/:id/payments", controllers.GetPayments)
	protected.Get("/payments", controllers.GetPayments)

	// Subscriptions
	protected.Post("/subscriptions", controllers.CreateSubscription)
	protected.Get("/subscriptions", controllers.GetSubscriptions)
	protected.Get("/subscriptions/:id", controllers.GetSubscription)
	protected.Post("/subscriptions/:id/cancel", controllers.CancelSubscription)
	protected.Post("/subscriptions/:id/charge", controllers.ChargeSubscription)
}
