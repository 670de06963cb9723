// Package mockremote is an in-memory store service speaking the same JSON
// envelope as the real one. It backs local development and the tests.
package mockremote

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fake-store/go-client/internal/remote"
)

const statusOK = "OK"

type Call struct {
	Method     string
	Path       string
	RequestID  string
	Authorized bool
}

type account struct {
	id           string
	name         string
	email        string
	passwordHash []byte
}

type order struct {
	id          string
	items       []remote.OrderItem
	isPaid      bool
	isDelivered bool
	total       float64
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithProducts(products []remote.Product) Option {
	return func(s *Server) {
		s.products = append([]remote.Product(nil), products...)
	}
}

type Server struct {
	logger *slog.Logger
	router chi.Router

	mu        sync.Mutex
	accounts  map[string]*account
	tokens    map[string]string
	carts     map[string][]remote.CartLine
	orders    map[string][]*order
	products  []remote.Product
	failures  map[string]string
	calls     []Call
	nextUser  int
	nextOrder int
}

func New(opts ...Option) *Server {
	s := &Server{
		logger:   slog.New(slog.DiscardHandler),
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		carts:    make(map[string][]remote.CartLine),
		orders:   make(map[string][]*order),
		products: SeedProducts(),
		failures: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.injectFailures)

	r.Post(remote.EndpointSignUp, s.handleSignUp)
	r.Post(remote.EndpointSignIn, s.handleSignIn)

	r.Get(remote.EndpointCategories, s.handleCategories)
	r.Get("/products/category/{category}", s.handleProductsByCategory)
	r.Get("/products/{id}", s.handleProduct)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Post(remote.EndpointUpdateUser, s.handleUpdateUser)
		r.Get(remote.EndpointCart, s.handleGetCart)
		r.Put(remote.EndpointCart, s.handlePutCart)
		r.Get(remote.EndpointOrders, s.handleListOrders)
		r.Post(remote.EndpointNewOrder, s.handleNewOrder)
		r.Post(remote.EndpointUpdateOrder, s.handleUpdateOrder)
	})
	return r
}

// FailNext makes the next request to method and path answer with an
// application failure carrying message.
func (s *Server) FailNext(method, path, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[failureKey(method, path)] = message
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo counts recorded requests for one method and path.
func (s *Server) CallsTo(method, path string) int {
	n := 0
	for _, call := range s.Calls() {
		if call.Method == method && call.Path == path {
			n++
		}
	}
	return n
}

// RevokeTokens invalidates every issued token, as if all sessions expired.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:     r.Method,
			Path:       r.URL.Path,
			RequestID:  middleware.GetReqID(r.Context()),
			Authorized: r.Header.Get("Authorization") != "",
		})
		s.mu.Unlock()
		s.logger.Debug("mock request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := failureKey(r.Method, r.URL.Path)
		s.mu.Lock()
		message, ok := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()
		if ok {
			writeError(w, http.StatusOK, message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type userIDKey struct{}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		email, known := s.tokens[strings.TrimSpace(token)]
		var userID string
		if known {
			userID = s.accounts[email].id
		}
		s.mu.Unlock()
		if !ok || !known {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

func (s *Server) issueToken(email string) string {
	token := uuid.NewString()
	s.tokens[token] = email
	return token
}

func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
}

func failureKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

func writeJSON(w http.ResponseWriter, code int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeOK(w http.ResponseWriter, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["status"] = statusOK
	writeJSON(w, http.StatusOK, payload)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]any{"status": "error", "message": message})
}

func decodeBody(r *http.Request, out any) bool {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(out) == nil
}

func (s *Server) nextUserID() string {
	s.nextUser++
	return strconv.Itoa(s.nextUser)
}

func (s *Server) nextOrderID() string {
	s.nextOrder++
	return strconv.Itoa(s.nextOrder)
}
