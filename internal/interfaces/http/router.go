package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Billing-api/internal/application/auth"
	"github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/infrastructure/cache"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	Invoices    *billing.InvoiceUseCase
	Payments    *billing.PaymentUseCase
	Receipts    *billing.ReceiptUseCase
	PDF         *billing.PDFUseCase
	Idempotency *cache.IdempotencyStore // nil: se ignora Idempotency-Key
	JWTSecret   string
}

// Router registra las rutas de la API.
// Las rutas fijas (statistics, number, reference...) van antes de /:id.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	adminOnly := RequireRole(entity.RoleAdmin)
	cashier := RequireRole(entity.RoleAdmin, entity.RoleCajero)

	// Auth: login público, alta de operadores solo admin
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register", AuthMiddleware(deps.JWTSecret), adminOnly, authHandler.Register)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.Invoices, deps.PDF)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/statistics", invoiceHandler.Statistics)
	invoices.Get("/number/:number", invoiceHandler.GetByNumber)
	invoices.Post("/", cashier, invoiceHandler.Create)
	invoices.Post("/mark-overdue", adminOnly, invoiceHandler.MarkOverdue)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.GetPDF)
	invoices.Put("/:id", cashier, invoiceHandler.Update)
	invoices.Delete("/:id", adminOnly, invoiceHandler.Delete)

	payments := protected.Group("/payments")
	paymentHandler := NewPaymentHandler(deps.Payments, deps.Idempotency)
	payments.Get("/", paymentHandler.List)
	payments.Get("/statistics", paymentHandler.Statistics)
	payments.Get("/reference/:reference", paymentHandler.GetByReference)
	payments.Get("/invoice/:invoiceId", paymentHandler.ListByInvoice)
	payments.Post("/", cashier, paymentHandler.Create)
	payments.Get("/:id", paymentHandler.GetByID)

	receipts := protected.Group("/receipts")
	receiptHandler := NewReceiptHandler(deps.Receipts, deps.PDF)
	receipts.Get("/", receiptHandler.List)
	receipts.Get("/payment/:paymentId", receiptHandler.GetByPayment)
	receipts.Get("/number/:number", receiptHandler.GetByNumber)
	receipts.Get("/invoice/:invoiceId", receiptHandler.ListByInvoice)
	receipts.Post("/reconcile", adminOnly, receiptHandler.Reconcile)
	receipts.Get("/:id", receiptHandler.GetByID)
	receipts.Get("/:id/pdf", receiptHandler.GetPDF)
}
