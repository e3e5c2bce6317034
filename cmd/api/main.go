package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"golang.org/x/text/language"

	_ "github.com/jhoicas/Billing-api/docs"
	"github.com/jhoicas/Billing-api/internal/application/auth"
	appbilling "github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/domain/billing"
	"github.com/jhoicas/Billing-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/Billing-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Billing-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Billing-api/internal/interfaces/http"
	"github.com/jhoicas/Billing-api/pkg/config"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

// @title                       Billing API
// @version                     1.0
// @description                 Facturas, cobros y recibos con reparto del pago por línea.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("default_tax_rate", cfg.Billing.DefaultTaxRate.String()).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	receiptRepo := postgres.NewReceiptRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	refs := billing.NewRandomReferenceGenerator()
	allocator := billing.NewAllocator(refs, time.Now)
	billingLog := log.Component("billing")

	invoiceUC := appbilling.NewInvoiceUseCase(txRunner, invoiceRepo, refs, cfg.Billing.DefaultTaxRate, time.Now)
	paymentUC := appbilling.NewPaymentUseCase(txRunner, paymentRepo, billing.NewPaymentEngine(refs, time.Now), allocator, billingLog)
	receiptUC := appbilling.NewReceiptUseCase(txRunner, receiptRepo, paymentRepo, invoiceRepo, allocator, billingLog)

	// PDF: representación impresa de facturas y recibos
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(infrapdf.Issuer{
		Name:    cfg.Billing.IssuerName,
		TaxID:   cfg.Billing.IssuerTaxID,
		Address: cfg.Billing.IssuerAddress,
		Email:   cfg.Billing.IssuerEmail,
	}, language.Spanish)
	pdfUC := appbilling.NewPDFUseCase(invoiceRepo, paymentRepo, receiptRepo, pdfGenerator)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	idempotency := cache.NewIdempotencyStore(time.Duration(cfg.Billing.IdempotencyTTLMinutes) * time.Minute)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Billing API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		Invoices:    invoiceUC,
		Payments:    paymentUC,
		Receipts:    receiptUC,
		PDF:         pdfUC,
		Idempotency: idempotency,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
