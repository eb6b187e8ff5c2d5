// Package stub is an in-memory stand-in for the production backend. It
// implements the REST + SSE contract the client consumes, for local
// development and integration-style tests.
package stub

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/caffe-tetangga/pos-client/internal/api"
	"github.com/caffe-tetangga/pos-client/internal/status"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrBadTransition  = errors.New("status cannot move backwards")
	ErrOrderFinalized = errors.New("order is already finalized")
)

// user is a seeded staff account.
type user struct {
	ID             uuid.UUID
	Username       string
	Role           string
	HashedPassword string
}

// Store holds all backend state behind one mutex. Orders move through the
// same monotonic status ladder the real backend enforces.
type Store struct {
	mu       sync.Mutex
	products []api.Product
	tables   []api.Table
	users    []user
	orders   map[uuid.UUID]*api.Order
	logs     map[uuid.UUID][]api.ProductionLog
	seq      int
}

func NewStore() *Store {
	return &Store{
		orders: make(map[uuid.UUID]*api.Order),
		logs:   make(map[uuid.UUID][]api.ProductionLog),
	}
}

// statusRank defines the forward order of the ladder. DIBATALKAN sits outside
// it and is reachable from any non-final state.
var statusRank = map[status.Status]int{
	status.Menunggu: 0,
	status.Diproses: 1,
	status.Siap:     2,
	status.Selesai:  3,
	status.Dibayar:  4,
}

// --- Catalog ---

func (s *Store) ListMenu(page, limit int, search, category string) api.Paginated[api.Product] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var filtered []api.Product
	for _, p := range s.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		filtered = append(filtered, p)
	}
	return paginate(filtered, page, limit)
}

func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	var out []string
	for _, p := range s.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Store) FindTable(number int) (api.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tables {
		if t.Number == number && t.IsActive {
			return t, nil
		}
	}
	return api.Table{}, ErrNotFound
}

func (s *Store) FindUser(username string) (user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user{}, ErrNotFound
}

func (s *Store) findProduct(id uuid.UUID) (api.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return api.Product{}, false
}

// --- Orders ---

// CreateOrder prices the requested items from the catalog and files a new
// MENUNGGU order.
func (s *Store) CreateOrder(req api.CreateOrderRequest) (api.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var table *api.Table
	for i := range s.tables {
		if s.tables[i].ID == req.TableID {
			table = &s.tables[i]
			break
		}
	}
	if table == nil {
		return api.Order{}, fmt.Errorf("table: %w", ErrNotFound)
	}
	if len(req.Items) == 0 {
		return api.Order{}, errors.New("items are required")
	}

	now := time.Now().UTC()
	s.seq++
	o := &api.Order{
		ID:          uuid.New(),
		OrderNumber: fmt.Sprintf("ORD-%04d", s.seq),
		TableID:     table.ID,
		TableNumber: table.Number,
		Status:      string(status.Menunggu),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	total := decimal.Zero
	for _, it := range req.Items {
		p, ok := s.findProduct(it.ProductID)
		if !ok {
			return api.Order{}, fmt.Errorf("product %s: %w", it.ProductID, ErrNotFound)
		}
		if it.Quantity <= 0 {
			return api.Order{}, errors.New("quantity must be > 0")
		}
		sub := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		o.Items = append(o.Items, api.OrderItem{
			ID:          uuid.New(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   p.Price,
			Subtotal:    sub,
			Notes:       it.Notes,
		})
		total = total.Add(sub)
	}
	o.TotalPrice = total

	s.orders[o.ID] = o
	s.appendLogLocked(o.ID, status.Menunggu, "order created")
	return *o, nil
}

func (s *Store) GetOrder(id uuid.UUID) (api.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return api.Order{}, ErrNotFound
	}
	return *o, nil
}

// ListOrders returns orders for the cashier view, newest first, optionally
// filtered by status.
func (s *Store) ListOrders(statusFilter string, page, limit int) api.Paginated[api.Order] {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []api.Order
	for _, o := range s.orders {
		if statusFilter != "" && o.Status != statusFilter {
			continue
		}
		list = append(list, *o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, page, limit)
}

// ListQueue returns the production queue: active kitchen work, oldest first.
func (s *Store) ListQueue(statusFilter string, page, limit int) api.Paginated[api.Order] {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []api.Order
	for _, o := range s.orders {
		st := status.Status(o.Status)
		if st == status.Dibatalkan || st == status.Dibayar {
			continue
		}
		if statusFilter != "" && o.Status != statusFilter {
			continue
		}
		list = append(list, *o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return paginate(list, page, limit)
}

// UpdateStatus enforces the forward-only ladder. estimatedMinutes is recorded
// when moving into DIPROSES.
func (s *Store) UpdateStatus(id uuid.UUID, next status.Status, estimatedMinutes int) (api.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return api.Order{}, ErrNotFound
	}
	cur := status.Status(o.Status)
	if status.Terminal(cur) {
		return api.Order{}, ErrOrderFinalized
	}

	if next == status.Dibatalkan {
		o.Status = string(status.Dibatalkan)
	} else {
		curRank, ok1 := statusRank[cur]
		nextRank, ok2 := statusRank[next]
		if !ok1 || !ok2 || nextRank < curRank {
			return api.Order{}, ErrBadTransition
		}
		o.Status = string(next)
		if next == status.Diproses && estimatedMinutes > 0 {
			o.EstimatedMinutes = estimatedMinutes
		}
	}
	o.UpdatedAt = time.Now().UTC()
	s.appendLogLocked(o.ID, next, "")
	return *o, nil
}

func (s *Store) Logs(id uuid.UUID) ([]api.ProductionLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return nil, ErrNotFound
	}
	out := make([]api.ProductionLog, len(s.logs[id]))
	copy(out, s.logs[id])
	return out, nil
}

// BuildReceipt assembles the printable record for a paid order.
func (s *Store) BuildReceipt(id uuid.UUID) (api.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return api.Receipt{}, ErrNotFound
	}
	rec := api.Receipt{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		TableNumber: o.TableNumber,
		Items:       append([]api.OrderItem(nil), o.Items...),
		TotalPrice:  o.TotalPrice,
		OrderedAt:   o.CreatedAt,
	}
	if status.Status(o.Status) == status.Dibayar {
		t := o.UpdatedAt
		rec.PaidAt = &t
	}
	return rec, nil
}

func (s *Store) appendLogLocked(orderID uuid.UUID, st status.Status, note string) {
	s.logs[orderID] = append(s.logs[orderID], api.ProductionLog{
		ID:        uuid.New(),
		OrderID:   orderID,
		Status:    string(st),
		Note:      note,
		CreatedAt: time.Now().UTC(),
	})
}

func paginate[T any](list []T, page, limit int) api.Paginated[T] {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	total := len(list)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return api.Paginated[T]{Items: list[start:end], Page: page, Limit: limit, Total: total}
}
