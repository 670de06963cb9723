package mockremote

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"fake-store/go-client/internal/remote"
)

func withUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey{}).(string)
	return id
}

// pathParam unescapes a route parameter; chi matches on the raw path when the
// request path carries escapes.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(r, &req) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if strings.TrimSpace(req.Name) == "" || email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Unable to create account")
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[email]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "User already exists")
		return
	}
	acc := &account{id: s.nextUserID(), name: strings.TrimSpace(req.Name), email: email, passwordHash: hash}
	s.accounts[email] = acc
	token := s.issueToken(email)
	s.mu.Unlock()

	writeOK(w, authPayload(acc, token))
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(r, &req) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.mu.Lock()
	acc, ok := s.accounts[email]
	var snapshot account
	if ok {
		snapshot = *acc
	}
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(snapshot.passwordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusBadRequest, "Invalid email or password")
		return
	}

	s.mu.Lock()
	token := s.issueToken(email)
	s.mu.Unlock()
	writeOK(w, authPayload(&snapshot, token))
}

func authPayload(acc *account, token string) map[string]any {
	return map[string]any{
		"token": token,
		"id":    remote.ID(acc.id),
		"name":  acc.name,
		"email": acc.email,
	}
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if !decodeBody(r, &req) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	var hash []byte
	if req.Password != "" {
		var err error
		if hash, err = hashPassword(req.Password); err != nil {
			writeError(w, http.StatusInternalServerError, "Unable to update password")
			return
		}
	}

	s.mu.Lock()
	acc := s.accountByID(userID(r))
	if acc == nil {
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		acc.name = name
	}
	if hash != nil {
		acc.passwordHash = hash
	}
	name := acc.name
	s.mu.Unlock()

	writeOK(w, map[string]any{"name": name})
}

func (s *Server) accountByID(id string) *account {
	for _, acc := range s.accounts {
		if acc.id == id {
			return acc
		}
	}
	return nil
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := append([]remote.CartLine{}, s.carts[userID(r)]...)
	s.mu.Unlock()
	writeOK(w, map[string]any{"items": items})
}

func (s *Server) handlePutCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []remote.CartLine `json:"items"`
	}
	if !decodeBody(r, &req) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	s.carts[userID(r)] = append([]remote.CartLine{}, req.Items...)
	s.mu.Unlock()
	writeOK(w, nil)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stored := s.orders[userID(r)]
	out := make([]remote.Order, 0, len(stored))
	for _, o := range stored {
		encoded, _ := json.Marshal(o.items)
		quantity := 0
		for _, item := range o.items {
			quantity += item.Quantity
		}
		out = append(out, remote.Order{
			ID:          remote.ID(o.id),
			OrderItems:  string(encoded),
			IsPaid:      remote.Flag(o.isPaid),
			IsDelivered: remote.Flag(o.isDelivered),
			TotalPrice:  o.total,
			ItemNumbers: quantity,
		})
	}
	s.mu.Unlock()
	writeOK(w, map[string]any{"orders": out})
}

func (s *Server) handleNewOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []remote.OrderItem `json:"items"`
	}
	if !decodeBody(r, &req) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "Order has no items")
		return
	}
	total := 0.0
	for _, item := range req.Items {
		total += item.Price * float64(item.Quantity)
	}

	s.mu.Lock()
	o := &order{id: s.nextOrderID(), items: req.Items, total: math.Round(total*100) / 100}
	uid := userID(r)
	s.orders[uid] = append(s.orders[uid], o)
	s.mu.Unlock()

	writeOK(w, map[string]any{"id": remote.ID(o.id)})
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID     remote.ID   `json:"orderID"`
		IsPaid      remote.Flag `json:"isPaid"`
		IsDelivered remote.Flag `json:"isDelivered"`
	}
	if !decodeBody(r, &req) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders[userID(r)] {
		if o.id == string(req.OrderID) {
			o.isPaid = bool(req.IsPaid)
			o.isDelivered = bool(req.IsDelivered)
			writeOK(w, nil)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Order not found")
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	seen := make(map[string]bool)
	categories := []string{}
	for _, p := range s.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	s.mu.Unlock()
	writeOK(w, map[string]any{"categories": categories})
}

func (s *Server) handleProductsByCategory(w http.ResponseWriter, r *http.Request) {
	category := pathParam(r, "category")
	s.mu.Lock()
	out := []remote.Product{}
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	s.mu.Unlock()
	writeOK(w, map[string]any{"products": out})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if string(p.ID) == id {
			writeOK(w, map[string]any{"product": p})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Product not found")
}
