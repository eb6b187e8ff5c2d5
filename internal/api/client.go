package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caffe-tetangga/pos-client/internal/session"
	"github.com/google/uuid"
)

// DefaultTimeout bounds every request/response call. SSE connections are made
// elsewhere and carry no read timeout.
const DefaultTimeout = 10 * time.Second

// Client talks to the backend REST contract. All methods decode the standard
// {success, message, data} envelope.
type Client struct {
	baseURL string
	http    *http.Client
	sess    *session.Store
}

// New creates a Client. sess may not be nil; public endpoints simply never
// read from it. timeout <= 0 falls back to DefaultTimeout.
func New(baseURL string, timeout time.Duration, sess *session.Store) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		sess:    sess,
	}
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// Session returns the injected session store.
func (c *Client) Session() *session.Store { return c.sess }

// --- Envelope / errors ---

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Error is a server-rejected request (4xx/5xx). Message carries the server's
// message verbatim when one was present.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// --- Core request plumbing ---

type reqOptions struct {
	authed bool
	login  bool
	query  url.Values
}

func (c *Client) do(ctx context.Context, method, path string, opt reqOptions, body, out any) error {
	u := c.baseURL + path
	if len(opt.query) > 0 {
		u += "?" + opt.query.Encode()
	}

	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if opt.authed {
		if token := c.sess.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode == http.StatusUnauthorized && !opt.login {
		// Global session invalidation; the login call handles its own 401.
		c.sess.Invalidate()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if decodeErr == nil {
			msg = env.Message
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

// --- Auth ---

// Login authenticates staff and stores the resulting session. A 401 here does
// not invalidate the store; the caller just shows the error.
func (c *Client) Login(ctx context.Context, username, password string) (*session.User, error) {
	body := map[string]string{"username": username, "password": password}
	var res LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", reqOptions{login: true}, body, &res); err != nil {
		return nil, err
	}
	user := session.User{ID: res.User.ID.String(), Username: res.User.Username, Role: res.User.Role}
	c.sess.Login(res.Token, user)
	return &user, nil
}

// Logout clears the local session. Fire-and-forget on the server side.
func (c *Client) Logout(ctx context.Context) {
	_ = c.do(ctx, http.MethodPost, "/auth/logout", reqOptions{authed: true}, nil, nil)
	c.sess.Logout()
}

// --- Public catalog ---

// Menu fetches the public menu page. search and category are optional.
func (c *Client) Menu(ctx context.Context, page, limit int, search, category string) (*Paginated[Product], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if search != "" {
		q.Set("search", search)
	}
	if category != "" {
		q.Set("category", category)
	}
	var out Paginated[Product]
	if err := c.do(ctx, http.MethodGet, "/menu", reqOptions{query: q}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories fetches the distinct product categories.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/categories", reqOptions{}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateTable resolves a printed table number to a table.
func (c *Client) ValidateTable(ctx context.Context, number int) (*Table, error) {
	q := url.Values{}
	q.Set("number", strconv.Itoa(number))
	var out Table
	if err := c.do(ctx, http.MethodGet, "/tables/validate", reqOptions{query: q}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Orders ---

// CreateOrder submits a checkout payload and returns the created order.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPost, "/orders", reqOptions{}, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrackOrder fetches the public tracking view of one order.
func (c *Client) TrackOrder(ctx context.Context, id uuid.UUID) (*Tracking, error) {
	var out Tracking
	if err := c.do(ctx, http.MethodGet, "/orders/"+id.String()+"/tracking", reqOptions{}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders fetches the cashier's order list, optionally filtered by status.
func (c *Client) ListOrders(ctx context.Context, statusFilter string, page, limit int) (*Paginated[Order], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if statusFilter != "" {
		q.Set("status", statusFilter)
	}
	var out Paginated[Order]
	if err := c.do(ctx, http.MethodGet, "/orders", reqOptions{authed: true, query: q}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PayOrder marks an order paid.
func (c *Client) PayOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPatch, "/orders/"+id.String()+"/pay", reqOptions{authed: true}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelOrder cancels an order.
func (c *Client) CancelOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPatch, "/orders/"+id.String()+"/cancel", reqOptions{authed: true}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Receipt fetches the printable receipt for a paid order.
func (c *Client) Receipt(ctx context.Context, id uuid.UUID) (*Receipt, error) {
	var out Receipt
	if err := c.do(ctx, http.MethodGet, "/orders/"+id.String()+"/receipt", reqOptions{authed: true}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Production ---

// ProductionQueue fetches the kitchen queue, optionally filtered by status.
func (c *Client) ProductionQueue(ctx context.Context, statusFilter string, page, limit int) (*Paginated[Order], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if statusFilter != "" {
		q.Set("status", statusFilter)
	}
	var out Paginated[Order]
	if err := c.do(ctx, http.MethodGet, "/production/queue", reqOptions{authed: true, query: q}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduction requests a status transition on a production order.
func (c *Client) UpdateProduction(ctx context.Context, id uuid.UUID, req UpdateProductionRequest) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPatch, "/production/orders/"+id.String(), reqOptions{authed: true}, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProductionLogs fetches the status history of a production order.
func (c *Client) ProductionLogs(ctx context.Context, id uuid.UUID) ([]ProductionLog, error) {
	var out []ProductionLog
	if err := c.do(ctx, http.MethodGet, "/production/orders/"+id.String()+"/logs", reqOptions{authed: true}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- SSE endpoints (consumed by internal/stream) ---

// OrderStreamURL is the public tracking channel for one order.
func (c *Client) OrderStreamURL(id uuid.UUID) string {
	return c.baseURL + "/sse/orders/" + id.String()
}

// CashierStreamURL is the authenticated cashier channel.
func (c *Client) CashierStreamURL() string { return c.baseURL + "/sse/cashier" }

// ProductionStreamURL is the authenticated production channel.
func (c *Client) ProductionStreamURL() string { return c.baseURL + "/sse/production" }
