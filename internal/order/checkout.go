// Package order drives the customer ordering session: table validation,
// cart checkout and the hand-off into tracking.
package order

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/caffe-tetangga/pos-client/internal/api"
	"github.com/caffe-tetangga/pos-client/internal/cart"
)

// Validation failures are detected client-side and never reach the network.
var (
	ErrEmptyTableNumber  = errors.New("enter a table number")
	ErrTableNumberFormat = errors.New("table number must be a positive number")
	ErrTableNotValidated = errors.New("validate the table first")
	ErrEmptyCart         = errors.New("cart is still empty")
)

// Backend is the slice of the API client the ordering flow needs.
// Satisfied by *api.Client; narrow interface for testability.
type Backend interface {
	ValidateTable(ctx context.Context, number int) (*api.Table, error)
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*api.Order, error)
}

// Session is one customer's ordering flow: a cart scoped to a validated table.
type Session struct {
	backend Backend
	cart    *cart.Cart

	mu    sync.Mutex
	table *api.Table
}

// NewSession creates an ordering session with an empty cart and no table.
func NewSession(backend Backend) *Session {
	return &Session{backend: backend, cart: cart.New()}
}

// Cart exposes the session's cart.
func (s *Session) Cart() *cart.Cart { return s.cart }

// Table returns the validated table, or nil while ordering is still locked.
func (s *Session) Table() *api.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// ValidateTable parses the operator input and resolves it against the server.
// Empty, non-numeric and non-positive input fail locally without a request.
// On server failure the table stays unvalidated and ordering stays locked.
func (s *Session) ValidateTable(ctx context.Context, input string) (*api.Table, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyTableNumber
	}
	number, err := strconv.Atoi(input)
	if err != nil || number <= 0 {
		return nil, ErrTableNumberFormat
	}

	table, err := s.backend.ValidateTable(ctx, number)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.table = table
	s.mu.Unlock()
	return table, nil
}

// ChangeTable drops the validated table and the cart with it.
func (s *Session) ChangeTable() {
	s.mu.Lock()
	s.table = nil
	s.mu.Unlock()
	s.cart.Clear()
}

// Checkout submits the cart as an order. Preconditions fail inline without a
// network call. On success the cart is cleared and the created order is
// returned for the tracking view; on failure the cart is left untouched so
// the customer can retry.
func (s *Session) Checkout(ctx context.Context) (*api.Order, error) {
	s.mu.Lock()
	table := s.table
	s.mu.Unlock()
	if table == nil {
		return nil, ErrTableNotValidated
	}

	items := s.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	req := api.CreateOrderRequest{TableID: table.ID}
	for _, it := range items {
		req.Items = append(req.Items, api.CreateOrderItemRequest{
			ProductID: it.Product.ID,
			Quantity:  it.Quantity,
			Notes:     it.Notes,
		})
	}

	created, err := s.backend.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	s.cart.Clear()
	return created, nil
}
