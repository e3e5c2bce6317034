// billingctl tareas de operación del servicio de cobros: migraciones, datos demo,
// conciliación de recibos, vencimientos y alta de operadores.
//
// Uso: go run ./cmd/billingctl <comando> [flags]
// Lee la misma configuración (env / .env) que cmd/api.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Billing-api/internal/application/auth"
	appbilling "github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/domain/billing"
	"github.com/jhoicas/Billing-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Billing-api/pkg/config"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

// cli estado compartido por los subcomandos; la conexión se abre bajo demanda.
type cli struct {
	cfg  *config.Config
	log  *logger.Logger
	pool *pgxpool.Pool
}

// services casos de uso sobre PostgreSQL.
type services struct {
	invoices *appbilling.InvoiceUseCase
	payments *appbilling.PaymentUseCase
	receipts *appbilling.ReceiptUseCase
	auth     *auth.AuthUseCase
}

func (c *cli) connect(ctx context.Context) error {
	if c.pool != nil {
		return nil
	}
	pool, err := postgres.NewPool(ctx, c.cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	c.pool = pool
	return nil
}

func (c *cli) services(ctx context.Context) (*services, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	invoiceRepo := postgres.NewInvoiceRepository(c.pool)
	paymentRepo := postgres.NewPaymentRepository(c.pool)
	receiptRepo := postgres.NewReceiptRepository(c.pool)
	txRunner := postgres.NewTxRunner(c.pool)

	refs := billing.NewRandomReferenceGenerator()
	allocator := billing.NewAllocator(refs, time.Now)
	log := c.log.Component("billing")
	return &services{
		invoices: appbilling.NewInvoiceUseCase(txRunner, invoiceRepo, refs, c.cfg.Billing.DefaultTaxRate, time.Now),
		payments: appbilling.NewPaymentUseCase(txRunner, paymentRepo, billing.NewPaymentEngine(refs, time.Now), allocator, log),
		receipts: appbilling.NewReceiptUseCase(txRunner, receiptRepo, paymentRepo, invoiceRepo, allocator, log),
		auth: auth.NewAuthUseCase(postgres.NewUserRepository(c.pool), auth.JWTConfig{
			Secret:     c.cfg.JWT.Secret,
			ExpMinutes: c.cfg.JWT.Expiration,
			Issuer:     c.cfg.JWT.Issuer,
		}),
	}, nil
}

func (c *cli) close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "billingctl",
		Short:         "Operación del servicio de cobros",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("cargar configuración: %w", err)
			}
			c.cfg = cfg
			c.log = logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level}).Component("billingctl")
			return nil
		},
	}
	root.AddCommand(
		newMigrateCmd(c),
		newSeedCmd(c),
		newReconcileCmd(c),
		newMarkOverdueCmd(c),
		newCreateUserCmd(c),
	)
	return root
}

func main() {
	c := &cli{log: logger.NewNop()}
	err := newRootCmd(c).ExecuteContext(context.Background())
	c.close()
	if err != nil {
		c.log.Error().Err(err).Msg("comando fallido")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
