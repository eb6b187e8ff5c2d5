package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a menu entry as served by GET /menu.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	IsAvailable bool            `json:"is_available"`
}

// Table is a physical table resolved from its printed number.
type Table struct {
	ID       uuid.UUID `json:"id"`
	Number   int       `json:"number"`
	Capacity int       `json:"capacity"`
	IsActive bool      `json:"is_active"`
}

// OrderItem is one line of an order, with the server-computed subtotal.
type OrderItem struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Notes       string          `json:"notes,omitempty"`
}

// Order is the server-owned order projection read by every view. Status stays
// a raw string here; internal/status owns its interpretation.
type Order struct {
	ID               uuid.UUID       `json:"id"`
	OrderNumber      string          `json:"order_number"`
	TableID          uuid.UUID       `json:"table_id"`
	TableNumber      int             `json:"table_number"`
	Status           string          `json:"status"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	EstimatedMinutes int             `json:"estimated_minutes,omitempty"`
	Items            []OrderItem     `json:"items"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Tracking is the customer-facing view of one order.
type Tracking struct {
	Order         Order  `json:"order"`
	EstimatedTime string `json:"estimated_time,omitempty"`
}

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	TableID uuid.UUID                `json:"table_id"`
	Items   []CreateOrderItemRequest `json:"items"`
}

type CreateOrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Notes     string    `json:"notes,omitempty"`
}

// UpdateProductionRequest moves a production order forward. EstimatedMinutes
// must accompany a move into DIPROSES.
type UpdateProductionRequest struct {
	Status           string `json:"status"`
	EstimatedMinutes int    `json:"estimated_minutes,omitempty"`
}

// ProductionLog is one entry of an order's status history.
type ProductionLog struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Receipt is the printable payment record for a paid order.
type Receipt struct {
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	TableNumber int             `json:"table_number"`
	Items       []OrderItem     `json:"items"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	OrderedAt   time.Time       `json:"ordered_at"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
}

// Paginated wraps list endpoints.
type Paginated[T any] struct {
	Items []T  `json:"items"`
	Page  int  `json:"page"`
	Limit int  `json:"limit"`
	Total int  `json:"total"`
}

// LoginResult is the payload of a successful POST /auth/login.
type LoginResult struct {
	Token string `json:"token"`
	User  struct {
		ID       uuid.UUID `json:"id"`
		Username string    `json:"username"`
		Role     string    `json:"role"`
	} `json:"user"`
}
