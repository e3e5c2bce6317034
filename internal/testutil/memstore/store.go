// Package memstore repositorios en memoria con transacciones por copia, para pruebas
// de casos de uso y handlers sin PostgreSQL.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

type state struct {
	invoices []entity.Invoice
	payments []entity.Payment
	receipts []entity.Receipt
	users    []entity.User
}

func (st *state) clone() *state {
	return &state{
		invoices: slices.Clone(st.invoices),
		payments: slices.Clone(st.payments),
		receipts: slices.Clone(st.receipts),
		users:    slices.Clone(st.users),
	}
}

// Store base de datos en memoria. RunBilling serializa las transacciones:
// trabaja sobre una copia y solo la publica si fn no retorna error.
type Store struct {
	mu          sync.Mutex
	st          *state
	failReceipt error
}

// New crea un Store vacío.
func New() *Store {
	return &Store{st: &state{}}
}

// FailReceiptCreate hace que Create de recibos retorne err (nil restablece).
func (s *Store) FailReceiptCreate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReceipt = err
}

// Invoices repositorio de facturas fuera de transacción.
func (s *Store) Invoices() repository.InvoiceRepository { return &invoiceRepo{scope{s: s}} }

// Payments repositorio de pagos fuera de transacción.
func (s *Store) Payments() repository.PaymentRepository { return &paymentRepo{scope{s: s}} }

// Receipts repositorio de recibos fuera de transacción.
func (s *Store) Receipts() repository.ReceiptRepository { return &receiptRepo{scope{s: s}} }

// Users repositorio de usuarios.
func (s *Store) Users() repository.UserRepository { return &userRepo{scope{s: s}} }

// RunBilling ejecuta fn con repos atados a una copia del estado.
func (s *Store) RunBilling(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	receiptRepo repository.ReceiptRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.st.clone()
	sc := scope{s: s, tx: tx}
	if err := fn(&invoiceRepo{sc}, &paymentRepo{sc}, &receiptRepo{sc}); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// scope resuelve el estado sobre el que opera un repo: la copia de la transacción
// (el lock ya lo tiene RunBilling) o el estado publicado bajo lock.
type scope struct {
	s  *Store
	tx *state
}

func (sc scope) do(fn func(st *state) error) error {
	if sc.tx != nil {
		return fn(sc.tx)
	}
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	return fn(sc.s.st)
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// newestFirst orden de listados: más recientes primero; a igual fecha, último insertado primero.
func newestFirst[T any](list []T) []T {
	out := slices.Clone(list)
	slices.Reverse(out)
	return out
}
