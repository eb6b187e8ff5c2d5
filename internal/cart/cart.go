package cart

import (
	"sync"

	"github.com/caffe-tetangga/pos-client/internal/api"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one cart line: a product snapshot, a quantity and free-form notes.
// The price is the cached menu price; the server recomputes authoritatively at
// checkout.
type Item struct {
	Product  api.Product
	Quantity int
	Notes    string
}

// Cart holds the in-progress selection for one ordering session. It is
// volatile: nothing survives a restart. Safe for concurrent use.
type Cart struct {
	mu    sync.Mutex
	items []Item
}

func New() *Cart {
	return &Cart{}
}

// Add puts one unit of product in the cart, or bumps the quantity when the
// product is already there. No stock check happens here; the server decides
// at checkout.
func (c *Cart) Add(product api.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].Product.ID == product.ID {
			c.items[i].Quantity++
			return
		}
	}
	c.items = append(c.items, Item{Product: product, Quantity: 1})
}

// UpdateQuantity applies a delta to a line's quantity. A result of zero or
// less removes the line; a quantity below one never appears.
func (c *Cart) UpdateQuantity(productID uuid.UUID, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			q := c.items[i].Quantity + delta
			if q <= 0 {
				c.items = append(c.items[:i], c.items[i+1:]...)
			} else {
				c.items[i].Quantity = q
			}
			return
		}
	}
}

// UpdateNotes replaces a line's notes verbatim.
func (c *Cart) UpdateNotes(productID uuid.UUID, notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Notes = notes
			return
		}
	}
}

// Remove drops a line unconditionally.
func (c *Cart) Remove(productID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart. Called after a successful checkout or a table change.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Items returns a snapshot copy of the cart lines.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// TotalItems sums all quantities.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

// TotalPrice sums quantity x cached unit price. May drift from the server's
// total until checkout.
func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, it := range c.items {
		line := it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
	}
	return total
}
