package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/caffe-tetangga/pos-client/internal/api"
	"github.com/caffe-tetangga/pos-client/internal/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Mock Backend ---

type mockBackend struct {
	validateCalls int
	createCalls   int
	validateFn    func(ctx context.Context, number int) (*api.Table, error)
	createFn      func(ctx context.Context, req api.CreateOrderRequest) (*api.Order, error)
}

func (m *mockBackend) ValidateTable(ctx context.Context, number int) (*api.Table, error) {
	m.validateCalls++
	if m.validateFn != nil {
		return m.validateFn(ctx, number)
	}
	return &api.Table{ID: uuid.New(), Number: number, IsActive: true}, nil
}

func (m *mockBackend) CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*api.Order, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &api.Order{ID: uuid.New(), Status: "MENUNGGU"}, nil
}

func product(name string, price int64) api.Product {
	return api.Product{ID: uuid.New(), Name: name, Price: decimal.NewFromInt(price)}
}

// --- Table validation ---

func TestValidateTableRejectsBadInputWithoutRequest(t *testing.T) {
	cases := []struct {
		input string
		want  error
	}{
		{"", order.ErrEmptyTableNumber},
		{"   ", order.ErrEmptyTableNumber},
		{"0", order.ErrTableNumberFormat},
		{"-3", order.ErrTableNumberFormat},
		{"abc", order.ErrTableNumberFormat},
	}

	for _, tc := range cases {
		backend := &mockBackend{}
		s := order.NewSession(backend)
		_, err := s.ValidateTable(context.Background(), tc.input)
		if !errors.Is(err, tc.want) {
			t.Errorf("input %q: err = %v, want %v", tc.input, err, tc.want)
		}
		if backend.validateCalls != 0 {
			t.Errorf("input %q issued %d network requests", tc.input, backend.validateCalls)
		}
	}
}

func TestValidateTableIssuesExactlyOneRequest(t *testing.T) {
	backend := &mockBackend{}
	s := order.NewSession(backend)

	table, err := s.ValidateTable(context.Background(), "5")
	if err != nil {
		t.Fatalf("ValidateTable: %v", err)
	}
	if backend.validateCalls != 1 {
		t.Fatalf("validate requests = %d, want 1", backend.validateCalls)
	}
	if table.Number != 5 {
		t.Fatalf("table number = %d, want 5", table.Number)
	}
	if s.Table() == nil {
		t.Fatal("validated table was not cached")
	}
}

func TestValidateTableServerFailureLeavesUnvalidated(t *testing.T) {
	backend := &mockBackend{
		validateFn: func(ctx context.Context, number int) (*api.Table, error) {
			return nil, &api.Error{Status: 404, Message: "table not found"}
		},
	}
	s := order.NewSession(backend)

	_, err := s.ValidateTable(context.Background(), "9")
	if err == nil || err.Error() != "table not found" {
		t.Fatalf("err = %v, want verbatim server message", err)
	}
	if s.Table() != nil {
		t.Fatal("table must stay unvalidated after server rejection")
	}
}

// --- Checkout preconditions ---

func TestCheckoutWithoutTableNeverCallsServer(t *testing.T) {
	backend := &mockBackend{}
	s := order.NewSession(backend)
	s.Cart().Add(product("A", 1000))

	_, err := s.Checkout(context.Background())
	if !errors.Is(err, order.ErrTableNotValidated) {
		t.Fatalf("err = %v, want ErrTableNotValidated", err)
	}
	if backend.createCalls != 0 {
		t.Fatalf("checkout issued %d requests", backend.createCalls)
	}
}

func TestCheckoutWithEmptyCartNeverCallsServer(t *testing.T) {
	backend := &mockBackend{}
	s := order.NewSession(backend)
	if _, err := s.ValidateTable(context.Background(), "3"); err != nil {
		t.Fatalf("ValidateTable: %v", err)
	}

	_, err := s.Checkout(context.Background())
	if !errors.Is(err, order.ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
	if backend.createCalls != 0 {
		t.Fatalf("checkout issued %d requests", backend.createCalls)
	}
}

// --- Checkout outcomes ---

func TestCheckoutSuccessClearsCart(t *testing.T) {
	var got api.CreateOrderRequest
	backend := &mockBackend{
		createFn: func(ctx context.Context, req api.CreateOrderRequest) (*api.Order, error) {
			got = req
			return &api.Order{ID: uuid.New(), Status: "MENUNGGU"}, nil
		},
	}
	s := order.NewSession(backend)
	if _, err := s.ValidateTable(context.Background(), "3"); err != nil {
		t.Fatalf("ValidateTable: %v", err)
	}

	a := product("A", 1000)
	s.Cart().Add(a)
	s.Cart().Add(a)
	s.Cart().UpdateNotes(a.ID, "pedas")

	created, err := s.Checkout(context.Background())
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if created == nil {
		t.Fatal("no order returned")
	}
	if s.Cart().Len() != 0 {
		t.Fatal("cart not cleared after successful checkout")
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 || got.Items[0].Notes != "pedas" {
		t.Fatalf("unexpected request items: %+v", got.Items)
	}
	if got.TableID != s.Table().ID {
		t.Fatal("request did not carry the validated table id")
	}
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	backend := &mockBackend{
		createFn: func(ctx context.Context, req api.CreateOrderRequest) (*api.Order, error) {
			return nil, &api.Error{Status: 422, Message: "stok tidak cukup"}
		},
	}
	s := order.NewSession(backend)
	if _, err := s.ValidateTable(context.Background(), "3"); err != nil {
		t.Fatalf("ValidateTable: %v", err)
	}
	s.Cart().Add(product("A", 1000))

	_, err := s.Checkout(context.Background())
	if err == nil || err.Error() != "stok tidak cukup" {
		t.Fatalf("err = %v, want verbatim server message", err)
	}
	if s.Cart().Len() != 1 {
		t.Fatal("cart must survive a failed checkout for retry")
	}
}

func TestChangeTableResetsCartAndTable(t *testing.T) {
	s := order.NewSession(&mockBackend{})
	if _, err := s.ValidateTable(context.Background(), "3"); err != nil {
		t.Fatalf("ValidateTable: %v", err)
	}
	s.Cart().Add(product("A", 1000))

	s.ChangeTable()

	if s.Table() != nil {
		t.Fatal("table survived ChangeTable")
	}
	if s.Cart().Len() != 0 {
		t.Fatal("cart survived ChangeTable")
	}
}
