package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	appbilling "github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
)

// demoInvoice factura de ejemplo y cuánto se cobra sobre ella.
type demoInvoice struct {
	number   string
	customer string
	items    []dto.InvoiceItemRequest
	// pay devuelve el monto a cobrar según el total calculado; cero no registra pago.
	pay func(total decimal.Decimal) decimal.Decimal
}

var demoInvoices = []demoInvoice{
	{
		number:   "DEMO-0001",
		customer: "Cliente pagado",
		items: []dto.InvoiceItemRequest{
			{Description: "Consultoría", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(500)},
			{Description: "Licencias", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("25.50")},
		},
		pay: func(total decimal.Decimal) decimal.Decimal { return total },
	},
	{
		number:   "DEMO-0002",
		customer: "Cliente con abono",
		items: []dto.InvoiceItemRequest{
			{Description: "Implementación", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1200)},
		},
		pay: func(total decimal.Decimal) decimal.Decimal { return total.Div(decimal.NewFromInt(2)).Round(2) },
	},
	{
		number:   "DEMO-0003",
		customer: "Cliente con sobrepago",
		items: []dto.InvoiceItemRequest{
			{Description: "Soporte mensual", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(250), TaxRate: decimal.NewNullDecimal(decimal.Zero)},
		},
		pay: func(total decimal.Decimal) decimal.Decimal { return total.Add(decimal.NewFromInt(250)) },
	},
	{
		number:   "DEMO-0004",
		customer: "Cliente sin pagos",
		items: []dto.InvoiceItemRequest{
			{Description: "Capacitación", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.RequireFromString("75.25")},
		},
	},
}

// seedDemo crea las facturas demo que aún no existen y registra sus cobros.
func seedDemo(ctx context.Context, invoices *appbilling.InvoiceUseCase, payments *appbilling.PaymentUseCase, out io.Writer) error {
	for _, demo := range demoInvoices {
		_, err := invoices.GetInvoiceByNumber(ctx, demo.number)
		if err == nil {
			fmt.Fprintf(out, "%s ya existe, se omite\n", demo.number)
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		inv, err := invoices.CreateInvoice(ctx, dto.CreateInvoiceRequest{
			InvoiceNumber: demo.number,
			CustomerID:    demo.number,
			CustomerName:  demo.customer,
			Items:         demo.items,
		})
		if err != nil {
			return fmt.Errorf("crear %s: %w", demo.number, err)
		}

		if demo.pay == nil {
			fmt.Fprintf(out, "%s total %s sin pagos\n", inv.InvoiceNumber, inv.TotalAmount.StringFixed(2))
			continue
		}
		res, err := payments.ProcessPayment(ctx, dto.CreatePaymentRequest{
			InvoiceID:     inv.ID,
			Amount:        demo.pay(inv.TotalAmount),
			PaymentMethod: "cash",
			Notes:         "datos demo",
		})
		if err != nil {
			return fmt.Errorf("cobrar %s: %w", demo.number, err)
		}
		fmt.Fprintf(out, "%s total %s: %s\n", inv.InvoiceNumber, inv.TotalAmount.StringFixed(2), res.Message)
	}
	return nil
}

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Crea facturas demo: pagada, con abono, con sobrepago y sin pagos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.services(cmd.Context())
			if err != nil {
				return err
			}
			return seedDemo(cmd.Context(), svc.invoices, svc.payments, cmd.OutOrStdout())
		},
	}
}
