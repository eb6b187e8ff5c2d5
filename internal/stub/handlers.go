package stub

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/caffe-tetangga/pos-client/internal/api"
	"github.com/caffe-tetangga/pos-client/internal/status"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// envelope matches the response shape the client decodes.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondData(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(envelope{Success: true, Message: "ok", Data: data})
}

func respondError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(envelope{Success: false, Message: message})
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	u, err := s.store.FindUser(req.Username)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(req.Password)); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := generateToken(s.jwtSecret, u.ID, u.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	res := api.LoginResult{Token: token}
	res.User.ID = u.ID
	res.User.Username = u.Username
	res.User.Role = u.Role
	respondData(w, http.StatusOK, res)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, nil)
}

// --- Catalog ---

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	out := s.store.ListMenu(page, limit, r.URL.Query().Get("search"), r.URL.Query().Get("category"))
	respondData(w, http.StatusOK, out)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, s.store.Categories())
}

func (s *Server) handleValidateTable(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(r.URL.Query().Get("number"))
	if err != nil || number <= 0 {
		respondError(w, http.StatusBadRequest, "table number must be a positive number")
		return
	}
	table, err := s.store.FindTable(number)
	if err != nil {
		respondError(w, http.StatusNotFound, "table not found")
		return
	}
	respondData(w, http.StatusOK, table)
}

// --- Orders ---

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req api.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	order, err := s.store.CreateOrder(req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.notifyOrder(order, "order.created")
	respondData(w, http.StatusCreated, order)
}

func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	order, err := s.store.GetOrder(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}
	tr := api.Tracking{Order: order}
	if order.EstimatedMinutes > 0 {
		tr.EstimatedTime = strconv.Itoa(order.EstimatedMinutes) + " menit"
	}
	respondData(w, http.StatusOK, tr)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	out := s.store.ListOrders(r.URL.Query().Get("status"), page, limit)
	respondData(w, http.StatusOK, out)
}

func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, status.Dibayar, 0)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, status.Dibatalkan, 0)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	rec, err := s.store.BuildReceipt(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}
	respondData(w, http.StatusOK, rec)
}

// --- Production ---

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	out := s.store.ListQueue(r.URL.Query().Get("status"), page, limit)
	respondData(w, http.StatusOK, out)
}

func (s *Server) handleUpdateProduction(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateProductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !status.Known(req.Status) {
		respondError(w, http.StatusBadRequest, "unknown status")
		return
	}
	next := status.Status(req.Status)
	if next == status.Diproses && req.EstimatedMinutes <= 0 {
		respondError(w, http.StatusBadRequest, "estimated_minutes is required when starting production")
		return
	}
	s.transition(w, r, next, req.EstimatedMinutes)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	logs, err := s.store.Logs(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}
	respondData(w, http.StatusOK, logs)
}

// transition applies a status change and broadcasts the result.
func (s *Server) transition(w http.ResponseWriter, r *http.Request, next status.Status, estimatedMinutes int) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	order, err := s.store.UpdateStatus(id, next, estimatedMinutes)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respondError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, ErrBadTransition), errors.Is(err, ErrOrderFinalized):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	s.notifyOrder(order, "order.status_changed")
	respondData(w, http.StatusOK, order)
}

// notifyOrder pushes a change signal to every channel that watches the order.
func (s *Server) notifyOrder(order api.Order, eventType string) {
	payload, _ := json.Marshal(map[string]string{
		"order_id": order.ID.String(),
		"status":   order.Status,
	})
	s.hub.Broadcast(
		Event{Type: eventType, Payload: payload},
		"production", "cashier", "order:"+order.ID.String(),
	)
}

func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return page, limit
}
