// Package pdf genera la representación impresa de facturas y recibos de pago.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor + NIT          │  Tipo de documento + N°    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE / PAGO: datos del documento                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Imp. | Total [| Abono]│
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Impuestos / Total / Saldo              │
//	│  FOOTER: QR con el número del documento + notas             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	mentity "github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	appbilling "github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

var _ appbilling.DocumentPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorGreen   = &props.Color{Red: 20, Green: 120, Blue: 60}
)

// Issuer datos del emisor impresos en la cabecera.
type Issuer struct {
	Name    string
	TaxID   string
	Address string
	Email   string
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.DocumentPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	issuer  Issuer
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador. Los importes se imprimen con el formato de lang.
func NewMarotoPDFGenerator(issuer Issuer, lang language.Tag) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{issuer: issuer, printer: message.NewPrinter(lang)}
}

// GenerateInvoicePDF genera el PDF de la factura y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, inv *entity.Invoice) ([]byte, error) {
	m := maroto.New(g.config("Factura " + inv.Number))

	m.AddRows(g.headerRow("FACTURA", inv.Number, inv.IssueDate))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.customerRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow(false))
	for _, it := range inv.Items {
		m.AddRows(g.itemRow(it.Quantity, it.Description, it.UnitPrice, it.TaxAmount, it.LineTotal, nil))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow([][2]string{
		{"Subtotal:", g.money(inv.Subtotal)},
		{"Impuestos:", g.money(inv.TotalTax)},
		{"TOTAL:", g.money(inv.TotalAmount)},
		{"Saldo pendiente:", g.money(inv.OutstandingAmount)},
	}))
	m.AddRows(footerRows(inv.Number, "Estado: "+statusLabel(inv.Status), inv.Notes)...)

	return generate(m)
}

// GenerateReceiptPDF genera el PDF del recibo con el reparto del pago por línea.
func (g *MarotoPDFGenerator) GenerateReceiptPDF(_ context.Context, rc *entity.Receipt, inv *entity.Invoice, p *entity.Payment) ([]byte, error) {
	m := maroto.New(g.config("Recibo " + rc.Number))

	m.AddRows(g.headerRow("RECIBO DE PAGO", rc.Number, rc.ReceiptDate))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.customerRow(inv))
	m.AddRows(row.New(10).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Factura: %s   |   Referencia del pago: %s   |   Medio: %s",
			inv.Number, p.ReferenceNumber, methodLabel(rc.PaymentMethod),
		), props.Text{Size: 8, Top: 3, Color: colorGray}),
	)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow(true))
	for _, it := range rc.Items {
		paid := it.PaidAmount
		m.AddRows(g.itemRow(it.Quantity, it.Description, it.UnitPrice, it.TaxAmount, it.LineTotal, &paid))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow([][2]string{
		{"Total factura:", g.money(inv.TotalAmount)},
		{"VALOR PAGADO:", g.money(rc.TotalPaid)},
		{"Saldo restante:", g.money(rc.RemainingBalance)},
	}))
	m.AddRows(footerRows(rc.Number, "Recibo emitido por el pago "+p.ReferenceNumber, rc.Notes)...)

	return generate(m)
}

func (g *MarotoPDFGenerator) config(title string) *mentity.Config {
	return config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(g.issuer.Name, true).
		Build()
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor + NIT (izq) y tipo de documento + número + fecha (der).
func (g *MarotoPDFGenerator) headerRow(kind, number string, date time.Time) core.Row {
	return row.New(22).Add(
		col.New(7).Add(
			text.New(g.issuer.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIT: "+nonEmpty(g.issuer.TaxID, "-"), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
			text.New(nonEmpty(g.issuer.Address, "-")+"   |   "+nonEmpty(g.issuer.Email, "-"), props.Text{
				Size: 8, Top: 14, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(kind, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+date.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// customerRow: datos del cliente y vencimiento.
func (g *MarotoPDFGenerator) customerRow(inv *entity.Invoice) core.Row {
	due := "-"
	if inv.DueDate != nil {
		due = inv.DueDate.Format("02/01/2006")
	}
	return row.New(16).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(inv.CustomerName, "Consumidor final"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("ID: %s   |   Email: %s   |   Vence: %s",
				nonEmpty(inv.CustomerID, "-"),
				nonEmpty(inv.CustomerEmail, "-"),
				due,
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: con withPaid agrega la columna del abono (recibos).
func tableHeaderRow(withPaid bool) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	if withPaid {
		return row.New(8).Add(
			h("Cant.", 1, align.Center),
			h("Descripción", 4, align.Left),
			h("P. Unit.", 2, align.Right),
			h("Imp.", 1, align.Right),
			h("Total", 2, align.Right),
			h("Abono", 2, align.Right),
		)
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("P. Unit.", 2, align.Right),
		h("Imp.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

// itemRow una línea de la tabla; paid != nil agrega la columna del abono.
func (g *MarotoPDFGenerator) itemRow(qty decimal.Decimal, desc string, unit, tax, total decimal.Decimal, paid *decimal.Decimal) core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	descSize, taxSize := 5, 2
	if paid != nil {
		descSize, taxSize = 4, 1
	}
	cols := []core.Col{
		cell(qty.String(), 1, align.Center),
		cell(desc, descSize, align.Left),
		cell(g.money(unit), 2, align.Right),
		cell(g.money(tax), taxSize, align.Right),
		cell(g.money(total), 2, align.Right),
	}
	if paid != nil {
		cols = append(cols, col.New(2).Add(text.New(g.money(*paid), props.Text{
			Size: 8, Align: align.Right, Top: 1, Right: 1, Style: fontstyle.Bold, Color: colorGreen,
		})))
	}
	return row.New(7).Add(cols...)
}

// totalsRow: pares etiqueta/valor alineados a la derecha; el penúltimo va resaltado.
func (g *MarotoPDFGenerator) totalsRow(pairs [][2]string) core.Row {
	labels := col.New(3)
	values := col.New(3)
	for i, p := range pairs {
		style := props.Text{Size: 9, Align: align.Right, Right: 2, Top: float64(i * 5)}
		if i == len(pairs)-2 {
			style.Style = fontstyle.Bold
			style.Color = colorPrimary
		}
		labels.Add(text.New(p[0], style))
		style.Right = 1
		values.Add(text.New(p[1], style))
	}
	return row.New(float64(len(pairs)*5 + 4)).Add(col.New(6), labels, values)
}

// footerRows: QR con el número del documento, leyenda y notas.
func footerRows(number, legend, notes string) []core.Row {
	rows := []core.Row{
		row.New(3),
		line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}),
		row.New(30).Add(
			col.New(3).Add(code.NewQr(number, props.Rect{Percent: 90, Center: true})),
			col.New(9).Add(
				text.New(legend, props.Text{Size: 9, Top: 6, Left: 3, Style: fontstyle.Bold, Color: colorPrimary}),
				text.New("Conserve este documento como soporte del pago.", props.Text{
					Size: 7, Top: 14, Left: 3, Color: colorGray,
				}),
			),
		),
	}
	if notes != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Notas: "+notes, props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money formatea el importe con separadores del idioma configurado y dos decimales.
func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	return "$ " + g.printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

func statusLabel(s entity.InvoiceStatus) string {
	switch s {
	case entity.InvoiceStatusDraft:
		return "Borrador"
	case entity.InvoiceStatusPending:
		return "Pendiente"
	case entity.InvoiceStatusPartiallyPaid:
		return "Pago parcial"
	case entity.InvoiceStatusPaid:
		return "Pagada"
	case entity.InvoiceStatusCancelled:
		return "Anulada"
	case entity.InvoiceStatusOverdue:
		return "Vencida"
	}
	return string(s)
}

func methodLabel(m entity.PaymentMethod) string {
	switch m {
	case entity.PaymentMethodCash:
		return "Efectivo"
	case entity.PaymentMethodBankTransfer:
		return "Transferencia"
	case entity.PaymentMethodCreditCard:
		return "Tarjeta de crédito"
	case entity.PaymentMethodDebitCard:
		return "Tarjeta débito"
	case entity.PaymentMethodEWallet:
		return "Billetera electrónica"
	}
	return string(m)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
