package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jhoicas/Billing-api/internal/application/auth"
	appbilling "github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain/billing"
	"github.com/jhoicas/Billing-api/internal/infrastructure/cache"
	"github.com/jhoicas/Billing-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Billing-api/internal/interfaces/http"
	"github.com/jhoicas/Billing-api/internal/testutil/memstore"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Servidor de prueba con repos en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testServer struct {
	app   *fiber.App
	store *memstore.Store
	users *auth.AuthUseCase
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memstore.New()
	log := logger.NewNop()
	refs := billing.NewRandomReferenceGenerator()
	allocator := billing.NewAllocator(refs, time.Now)

	users := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	deps := apphttp.RouterDeps{
		AuthUC:      users,
		Invoices:    appbilling.NewInvoiceUseCase(store, store.Invoices(), refs, billing.DefaultTaxRate, time.Now),
		Payments:    appbilling.NewPaymentUseCase(store, store.Payments(), billing.NewPaymentEngine(refs, time.Now), allocator, log),
		Receipts:    appbilling.NewReceiptUseCase(store, store.Receipts(), store.Payments(), store.Invoices(), allocator, log),
		PDF:         appbilling.NewPDFUseCase(store.Invoices(), store.Payments(), store.Receipts(), pdf.NewMarotoPDFGenerator(pdf.Issuer{Name: "Cobros Demo"}, language.Spanish)),
		Idempotency: cache.NewIdempotencyStore(time.Hour),
		JWTSecret:   testJWTSecret,
	}

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, deps)
	return &testServer{app: app, store: store, users: users}
}

type result struct {
	status int
	header http.Header
	body   []byte
}

func (s *testServer) do(t *testing.T, method, path, role string, body any, headers map[string]string) result {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return result{status: resp.StatusCode, header: resp.Header, body: raw}
}

func decode[T any](t *testing.T, r result) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(r.body, &out), string(r.body))
	return out
}

var escenarioA = map[string]any{
	"customer_id":   "cli-1",
	"customer_name": "Cliente Demo",
	"items": []map[string]any{
		{"description": "Consultoría", "quantity": 1, "unit_price": 500},
		{"description": "Licencias", "quantity": 2, "unit_price": 25.50},
	},
}

func (s *testServer) createInvoice(t *testing.T) dto.InvoiceResponse {
	t.Helper()
	r := s.do(t, http.MethodPost, "/api/invoices", "cajero", escenarioA, nil)
	require.Equal(t, http.StatusCreated, r.status, string(r.body))
	return decode[dto.InvoiceResponse](t, r)
}

func payment(invoiceID, amount string) map[string]any {
	return map[string]any{"invoice_id": invoiceID, "amount": amount, "payment_method": "cash"}
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo factura → pago → recibo
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_FacturaPagoRecibo(t *testing.T) {
	s := newTestServer(t)

	inv := s.createInvoice(t)
	assert.Equal(t, "589.57", inv.TotalAmount.StringFixed(2))
	assert.Equal(t, "pending", inv.Status)

	r := s.do(t, http.MethodPost, "/api/payments", "cajero", payment(inv.ID, "300.00"), nil)
	require.Equal(t, http.StatusCreated, r.status, string(r.body))
	res := decode[dto.ProcessPaymentResponse](t, r)
	assert.Equal(t, "289.57", res.Invoice.OutstandingAmount.StringFixed(2))
	assert.Equal(t, "partially_paid", res.Invoice.Status)
	assert.NotEmpty(t, res.Receipt.ReceiptNumber)

	r = s.do(t, http.MethodGet, "/api/receipts/payment/"+res.Payment.ID, "consulta", nil, nil)
	require.Equal(t, http.StatusOK, r.status)
	rc := decode[dto.ReceiptResponse](t, r)
	assert.Equal(t, res.Receipt.ID, rc.ID)

	r = s.do(t, http.MethodGet, "/api/payments/reference/"+res.Payment.ReferenceNumber, "consulta", nil, nil)
	assert.Equal(t, http.StatusOK, r.status)

	r = s.do(t, http.MethodGet, "/api/invoices/"+inv.ID+"/pdf", "consulta", nil, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "application/pdf", r.header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(r.body, []byte("%PDF")))

	r = s.do(t, http.MethodGet, "/api/receipts/"+rc.ID+"/pdf", "consulta", nil, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Contains(t, r.header.Get("Content-Disposition"), rc.ReceiptNumber)
}

// Las rutas fijas no deben caer en /:id.
func TestRouter_RutasFijasAntesDeID(t *testing.T) {
	s := newTestServer(t)
	s.createInvoice(t)

	r := s.do(t, http.MethodGet, "/api/invoices/statistics", "consulta", nil, nil)
	require.Equal(t, http.StatusOK, r.status)
	stats := decode[dto.InvoiceStatisticsResponse](t, r)
	assert.Equal(t, int64(1), stats.Total)

	r = s.do(t, http.MethodGet, "/api/payments/statistics", "consulta", nil, nil)
	assert.Equal(t, http.StatusOK, r.status)

	r = s.do(t, http.MethodGet, "/api/invoices/number/NO-EXISTE", "consulta", nil, nil)
	assert.Equal(t, http.StatusNotFound, r.status)
	assert.Contains(t, string(r.body), "NOT_FOUND")
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotency-Key
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_IdempotencyKey_RepiteRespuesta(t *testing.T) {
	s := newTestServer(t)
	inv := s.createInvoice(t)
	key := map[string]string{apphttp.HeaderIdempotencyKey: "cobro-123"}

	first := s.do(t, http.MethodPost, "/api/payments", "cajero", payment(inv.ID, "100.00"), key)
	require.Equal(t, http.StatusCreated, first.status)
	assert.Empty(t, first.header.Get("Idempotent-Replayed"))

	second := s.do(t, http.MethodPost, "/api/payments", "cajero", payment(inv.ID, "100.00"), key)
	require.Equal(t, http.StatusCreated, second.status)
	assert.Equal(t, "true", second.header.Get("Idempotent-Replayed"))
	assert.JSONEq(t, string(first.body), string(second.body))

	r := s.do(t, http.MethodGet, "/api/payments/invoice/"+inv.ID, "consulta", nil, nil)
	list := decode[dto.ListResponse[dto.PaymentResponse]](t, r)
	assert.Len(t, list.Items, 1, "el reintento no debe registrar un segundo pago")
}

func TestRouter_IdempotencyKey_OtroCuerpoRetorna422(t *testing.T) {
	s := newTestServer(t)
	inv := s.createInvoice(t)
	key := map[string]string{apphttp.HeaderIdempotencyKey: "cobro-789"}

	r := s.do(t, http.MethodPost, "/api/payments", "cajero", payment(inv.ID, "100.00"), key)
	require.Equal(t, http.StatusCreated, r.status, string(r.body))

	r = s.do(t, http.MethodPost, "/api/payments", "cajero", payment(inv.ID, "50.00"), key)
	require.Equal(t, http.StatusUnprocessableEntity, r.status)
	assert.Equal(t, "IDEMPOTENCY_KEY_REUSED", decode[dto.ErrorResponse](t, r).Code)
	assert.Empty(t, r.header.Get("Idempotent-Replayed"))

	r = s.do(t, http.MethodGet, "/api/payments/invoice/"+inv.ID, "consulta", nil, nil)
	list := decode[dto.ListResponse[dto.PaymentResponse]](t, r)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "100.00", list.Items[0].Amount.StringFixed(2))
}

func TestRouter_IdempotencyKey_ErrorNoSeGuarda(t *testing.T) {
	s := newTestServer(t)
	inv := s.createInvoice(t)
	key := map[string]string{apphttp.HeaderIdempotencyKey: "cobro-456"}

	r := s.do(t, http.MethodPost, "/api/payments", "cajero", payment(inv.ID, "-5"), key)
	require.Equal(t, http.StatusBadRequest, r.status)

	// corregido el monto, la misma clave se procesa de nuevo
	r = s.do(t, http.MethodPost, "/api/payments", "cajero", payment(inv.ID, "5.00"), key)
	require.Equal(t, http.StatusCreated, r.status, string(r.body))
	assert.Empty(t, r.header.Get("Idempotent-Replayed"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Recibo pendiente y conciliación
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_ReciboPendiente_Retorna202YSeConcilia(t *testing.T) {
	s := newTestServer(t)
	inv := s.createInvoice(t)

	s.store.FailReceiptCreate(errors.New("timeout"))
	r := s.do(t, http.MethodPost, "/api/payments", "cajero", payment(inv.ID, "100.00"), nil)
	s.store.FailReceiptCreate(nil)

	require.Equal(t, http.StatusAccepted, r.status, string(r.body))
	pending := decode[dto.ReceiptPendingResponse](t, r)
	assert.Equal(t, "RECEIPT_PENDING", pending.Code)
	assert.NotEmpty(t, pending.PaymentID)

	r = s.do(t, http.MethodGet, "/api/receipts/payment/"+pending.PaymentID, "consulta", nil, nil)
	assert.Equal(t, http.StatusNotFound, r.status)

	r = s.do(t, http.MethodPost, "/api/receipts/reconcile", "cajero", nil, nil)
	assert.Equal(t, http.StatusForbidden, r.status, "solo admin concilia")

	r = s.do(t, http.MethodPost, "/api/receipts/reconcile?limit=10", "admin", nil, nil)
	require.Equal(t, http.StatusOK, r.status)
	out := decode[dto.ReconcileResponse](t, r)
	assert.Equal(t, 1, out.Reissued)

	r = s.do(t, http.MethodGet, "/api/receipts/payment/"+pending.PaymentID, "consulta", nil, nil)
	assert.Equal(t, http.StatusOK, r.status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Roles y validación
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_ConsultaSoloLectura(t *testing.T) {
	s := newTestServer(t)
	inv := s.createInvoice(t)

	r := s.do(t, http.MethodPost, "/api/payments", "consulta", payment(inv.ID, "10.00"), nil)
	assert.Equal(t, http.StatusForbidden, r.status)

	r = s.do(t, http.MethodGet, "/api/invoices", "consulta", nil, nil)
	require.Equal(t, http.StatusOK, r.status)
	list := decode[dto.ListResponse[dto.InvoiceResponse]](t, r)
	assert.Len(t, list.Items, 1)

	r = s.do(t, http.MethodDelete, "/api/invoices/"+inv.ID, "cajero", nil, nil)
	assert.Equal(t, http.StatusForbidden, r.status)

	r = s.do(t, http.MethodGet, "/api/invoices", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
}

func TestRouter_Validacion(t *testing.T) {
	s := newTestServer(t)
	inv := s.createInvoice(t)

	r := s.do(t, http.MethodPost, "/api/payments", "cajero",
		map[string]any{"invoice_id": inv.ID, "amount": "10", "payment_method": "cheque"}, nil)
	require.Equal(t, http.StatusBadRequest, r.status)
	body := decode[dto.ErrorResponse](t, r)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Message, "payment_method")

	r = s.do(t, http.MethodPost, "/api/payments", "cajero", "{no es json", nil)
	require.Equal(t, http.StatusBadRequest, r.status)
	assert.Contains(t, string(r.body), "INVALID_BODY")

	r = s.do(t, http.MethodPost, "/api/invoices", "cajero", map[string]any{"items": []any{}}, nil)
	require.Equal(t, http.StatusBadRequest, r.status)
	assert.Contains(t, string(r.body), "items")

	r = s.do(t, http.MethodGet, "/api/invoices?status=archivada", "consulta", nil, nil)
	assert.Equal(t, http.StatusBadRequest, r.status)
}

func TestRouter_EliminarFacturaConPagos(t *testing.T) {
	s := newTestServer(t)
	inv := s.createInvoice(t)
	r := s.do(t, http.MethodPost, "/api/payments", "cajero", payment(inv.ID, "10.00"), nil)
	require.Equal(t, http.StatusCreated, r.status)

	r = s.do(t, http.MethodDelete, "/api/invoices/"+inv.ID, "admin", nil, nil)
	assert.Equal(t, http.StatusBadRequest, r.status)

	other := s.createInvoice(t)
	r = s.do(t, http.MethodDelete, "/api/invoices/"+other.ID, "admin", nil, nil)
	assert.Equal(t, http.StatusNoContent, r.status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_RegistroSoloAdminYLogin(t *testing.T) {
	s := newTestServer(t)
	alta := map[string]any{"email": "caja1@demo.com", "password": "secreto123", "role": "cajero"}

	r := s.do(t, http.MethodPost, "/api/auth/register", "cajero", alta, nil)
	assert.Equal(t, http.StatusForbidden, r.status)

	r = s.do(t, http.MethodPost, "/api/auth/register", "admin", alta, nil)
	require.Equal(t, http.StatusCreated, r.status, string(r.body))

	r = s.do(t, http.MethodPost, "/api/auth/register", "admin", alta, nil)
	assert.Equal(t, http.StatusConflict, r.status)

	r = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "caja1@demo.com", "password": "secreto123"}, nil)
	require.Equal(t, http.StatusOK, r.status)
	login := decode[dto.LoginResponse](t, r)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "cajero", login.User.Role)

	r = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "caja1@demo.com", "password": "otra-clave"}, nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
}
