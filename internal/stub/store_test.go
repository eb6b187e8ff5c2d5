package stub_test

import (
	"errors"
	"testing"

	"github.com/caffe-tetangga/pos-client/internal/api"
	"github.com/caffe-tetangga/pos-client/internal/status"
	"github.com/caffe-tetangga/pos-client/internal/stub"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func seededStore(t *testing.T) *stub.Store {
	t.Helper()
	s := stub.NewStore()
	if err := stub.Seed(s); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func placeOrder(t *testing.T, s *stub.Store, quantities ...int) api.Order {
	t.Helper()
	menu := s.ListMenu(1, 100, "", "")
	table, err := s.FindTable(1)
	if err != nil {
		t.Fatalf("find table: %v", err)
	}
	req := api.CreateOrderRequest{TableID: table.ID}
	for i, q := range quantities {
		req.Items = append(req.Items, api.CreateOrderItemRequest{
			ProductID: menu.Items[i].ID,
			Quantity:  q,
		})
	}
	o, err := s.CreateOrder(req)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func TestCreateOrderPricesFromCatalog(t *testing.T) {
	s := seededStore(t)
	menu := s.ListMenu(1, 100, "", "")

	o := placeOrder(t, s, 2, 1)

	if o.Status != string(status.Menunggu) {
		t.Fatalf("status = %s, want MENUNGGU", o.Status)
	}
	if o.OrderNumber != "ORD-0001" {
		t.Fatalf("order number = %s", o.OrderNumber)
	}
	want := menu.Items[0].Price.Mul(decimal.NewFromInt(2)).Add(menu.Items[1].Price)
	if !o.TotalPrice.Equal(want) {
		t.Fatalf("total = %s, want %s", o.TotalPrice, want)
	}
	if len(o.Items) != 2 || o.Items[0].Quantity != 2 {
		t.Fatalf("items = %+v", o.Items)
	}

	// Creation leaves an initial log entry.
	logs, err := s.Logs(o.ID)
	if err != nil || len(logs) != 1 || logs[0].Status != string(status.Menunggu) {
		t.Fatalf("logs = %v, %v", logs, err)
	}
}

func TestCreateOrderRejectsUnknownTableAndEmptyItems(t *testing.T) {
	s := seededStore(t)

	_, err := s.CreateOrder(api.CreateOrderRequest{TableID: uuid.New()})
	if !errors.Is(err, stub.ErrNotFound) {
		t.Fatalf("unknown table: err = %v", err)
	}

	table, _ := s.FindTable(1)
	_, err = s.CreateOrder(api.CreateOrderRequest{TableID: table.ID})
	if err == nil {
		t.Fatal("empty items accepted")
	}
}

func TestStatusLadderIsForwardOnly(t *testing.T) {
	s := seededStore(t)
	o := placeOrder(t, s, 1)

	if _, err := s.UpdateStatus(o.ID, status.Diproses, 15); err != nil {
		t.Fatalf("MENUNGGU -> DIPROSES: %v", err)
	}
	if _, err := s.UpdateStatus(o.ID, status.Siap, 0); err != nil {
		t.Fatalf("DIPROSES -> SIAP: %v", err)
	}

	_, err := s.UpdateStatus(o.ID, status.Diproses, 0)
	if !errors.Is(err, stub.ErrBadTransition) {
		t.Fatalf("SIAP -> DIPROSES: err = %v, want ErrBadTransition", err)
	}

	// Forward jumps are allowed; the cashier pays straight from SIAP.
	got, err := s.UpdateStatus(o.ID, status.Dibayar, 0)
	if err != nil {
		t.Fatalf("SIAP -> DIBAYAR: %v", err)
	}
	if got.Status != string(status.Dibayar) {
		t.Fatalf("status = %s", got.Status)
	}

	_, err = s.UpdateStatus(o.ID, status.Selesai, 0)
	if !errors.Is(err, stub.ErrOrderFinalized) {
		t.Fatalf("update after DIBAYAR: err = %v, want ErrOrderFinalized", err)
	}
}

func TestEstimatedMinutesRecordedOnDiproses(t *testing.T) {
	s := seededStore(t)
	o := placeOrder(t, s, 1)

	got, err := s.UpdateStatus(o.ID, status.Diproses, 20)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.EstimatedMinutes != 20 {
		t.Fatalf("estimated minutes = %d, want 20", got.EstimatedMinutes)
	}
}

func TestCancelFromAnyActiveState(t *testing.T) {
	s := seededStore(t)

	for _, advance := range []status.Status{"", status.Diproses, status.Siap} {
		o := placeOrder(t, s, 1)
		if advance != "" {
			if _, err := s.UpdateStatus(o.ID, advance, 15); err != nil {
				t.Fatalf("advance to %s: %v", advance, err)
			}
		}
		got, err := s.UpdateStatus(o.ID, status.Dibatalkan, 0)
		if err != nil {
			t.Fatalf("cancel from %s: %v", advance, err)
		}
		if got.Status != string(status.Dibatalkan) {
			t.Fatalf("status = %s", got.Status)
		}
	}

	// A paid order cannot be cancelled anymore.
	o := placeOrder(t, s, 1)
	if _, err := s.UpdateStatus(o.ID, status.Dibayar, 0); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if _, err := s.UpdateStatus(o.ID, status.Dibatalkan, 0); !errors.Is(err, stub.ErrOrderFinalized) {
		t.Fatalf("cancel paid order: err = %v", err)
	}
}

func TestQueueExcludesFinalizedOrders(t *testing.T) {
	s := seededStore(t)

	active := placeOrder(t, s, 1)
	paid := placeOrder(t, s, 1)
	cancelled := placeOrder(t, s, 1)
	s.UpdateStatus(paid.ID, status.Dibayar, 0)
	s.UpdateStatus(cancelled.ID, status.Dibatalkan, 0)

	q := s.ListQueue("", 1, 100)
	if len(q.Items) != 1 || q.Items[0].ID != active.ID {
		t.Fatalf("queue = %+v, want only the active order", q.Items)
	}
}

func TestReceiptCarriesPaidAtOnlyWhenPaid(t *testing.T) {
	s := seededStore(t)
	o := placeOrder(t, s, 1)

	rec, err := s.BuildReceipt(o.ID)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if rec.PaidAt != nil {
		t.Fatal("unpaid order has paid_at")
	}

	s.UpdateStatus(o.ID, status.Dibayar, 0)
	rec, err = s.BuildReceipt(o.ID)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if rec.PaidAt == nil {
		t.Fatal("paid order missing paid_at")
	}
	if rec.OrderNumber != o.OrderNumber || !rec.TotalPrice.Equal(o.TotalPrice) {
		t.Fatalf("receipt = %+v", rec)
	}
}

func TestMenuPaginationAndFilters(t *testing.T) {
	s := seededStore(t)

	page1 := s.ListMenu(1, 4, "", "")
	if len(page1.Items) != 4 || page1.Total != 9 {
		t.Fatalf("page1: items=%d total=%d", len(page1.Items), page1.Total)
	}
	page3 := s.ListMenu(3, 4, "", "")
	if len(page3.Items) != 1 {
		t.Fatalf("page3: items=%d", len(page3.Items))
	}
	beyond := s.ListMenu(9, 4, "", "")
	if len(beyond.Items) != 0 || beyond.Total != 9 {
		t.Fatalf("beyond-end page: %+v", beyond)
	}

	drinks := s.ListMenu(1, 100, "", "Minuman")
	if len(drinks.Items) != 3 {
		t.Fatalf("drinks = %d, want 3", len(drinks.Items))
	}
	search := s.ListMenu(1, 100, "goreng", "")
	if len(search.Items) != 3 {
		t.Fatalf("search 'goreng' = %d, want 3", len(search.Items))
	}
}
