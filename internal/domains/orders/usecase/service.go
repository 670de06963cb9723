package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	ordersmodel "fake-store/go-client/internal/domains/orders/model"
	"fake-store/go-client/internal/lifecycle"
	"fake-store/go-client/internal/remote"
	"fake-store/go-client/pkg/models"
)

const StoreName = "orders"

type Remote interface {
	ListOrders(ctx context.Context) ([]remote.Order, error)
	CreateOrder(ctx context.Context, items []remote.OrderItem) (remote.ID, error)
	UpdateOrder(ctx context.Context, orderID remote.ID, isPaid, isDelivered bool) error
}

type Options struct {
	Remote     Remote
	Hub        *lifecycle.Hub
	Logger     *slog.Logger
	Registerer prometheus.Registerer
	Namespace  string
}

type Service struct {
	remote   Remote
	hub      *lifecycle.Hub
	logger   *slog.Logger
	newGauge prometheus.Gauge

	mu    sync.Mutex
	state models.OrderCollection
}

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		remote: opts.Remote,
		hub:    opts.Hub,
		logger: logger,
		state:  models.OrderCollection{Orders: []models.Order{}},
	}
	if opts.Registerer != nil {
		s.newGauge = promauto.With(opts.Registerer).NewGauge(prometheus.GaugeOpts{
			Namespace: opts.Namespace,
			Subsystem: "orders",
			Name:      "new_count",
			Help:      "Orders that are neither paid nor delivered.",
		})
	}
	return s
}

func (s *Service) Snapshot() models.OrderCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ordersmodel.CloneCollection(s.state)
}

func (s *Service) NewCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.NewCount
}

func (s *Service) Grouped() ordersmodel.Groups {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ordersmodel.Group(s.state.Orders)
}

// FetchAll replaces the order list and is the only full recount of NewCount.
func (s *Service) FetchAll(ctx context.Context) (models.OrderCollection, error) {
	return lifecycle.Run(ctx, s.hub, StoreName, "fetchAll", func(ctx context.Context) (models.OrderCollection, error) {
		listed, err := s.remote.ListOrders(ctx)
		if err != nil {
			s.logger.Warn("orders fetch failed", "error", err)
			return models.OrderCollection{}, err
		}
		orders, err := ordersmodel.FromRemoteList(listed)
		if err != nil {
			s.logger.Warn("orders payload rejected", "error", err)
			return models.OrderCollection{}, &remote.TransportError{Method: http.MethodGet, Endpoint: remote.EndpointOrders, Err: err}
		}
		s.mu.Lock()
		s.state = models.OrderCollection{Orders: orders, NewCount: ordersmodel.CountNew(orders)}
		out := s.commitLocked()
		s.mu.Unlock()
		return out, nil
	})
}

// Create places an order. The order list is not refetched; NewCount grows by
// one because a fresh order is always New.
func (s *Service) Create(ctx context.Context, items []models.OrderLine) (string, error) {
	return lifecycle.Run(ctx, s.hub, StoreName, "create", func(ctx context.Context) (string, error) {
		id, err := s.remote.CreateOrder(ctx, ordersmodel.ToRemoteItems(items))
		if err != nil {
			s.logger.Warn("order create failed", "error", err, "lines", len(items))
			return "", err
		}
		s.mu.Lock()
		s.state.NewCount++
		s.commitLocked()
		s.mu.Unlock()
		s.logger.Info("order created", "order_id", string(id))
		return string(id), nil
	})
}

// UpdateStatus requests a forward transition and applies it only after the
// service confirms it.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, isPaid, isDelivered bool) (models.Order, error) {
	return lifecycle.Run(ctx, s.hub, StoreName, "updateStatus", func(ctx context.Context) (models.Order, error) {
		s.mu.Lock()
		i := ordersmodel.IndexOf(s.state.Orders, orderID)
		if i < 0 {
			s.mu.Unlock()
			return models.Order{}, ordersmodel.ErrOrderNotFound
		}
		current := s.state.Orders[i].Clone()
		s.mu.Unlock()

		if err := ordersmodel.ValidateTransition(current, isPaid, isDelivered); err != nil {
			return current, err
		}
		if err := s.remote.UpdateOrder(ctx, remote.ID(orderID), isPaid, isDelivered); err != nil {
			s.logger.Warn("order status update failed", "order_id", orderID, "error", err)
			return current, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		i = ordersmodel.IndexOf(s.state.Orders, orderID)
		if i < 0 {
			// The list was cleared while the call was in flight.
			current.IsPaid, current.IsDelivered = isPaid, isDelivered
			return current, nil
		}
		if s.state.Orders[i].IsNew() && isPaid {
			s.state.NewCount = max(s.state.NewCount-1, 0)
		}
		s.state.Orders[i].IsPaid = isPaid
		s.state.Orders[i].IsDelivered = isDelivered
		s.commitLocked()
		return s.state.Orders[i].Clone(), nil
	})
}

func (s *Service) Pay(ctx context.Context, orderID string) (models.Order, error) {
	return s.UpdateStatus(ctx, orderID, true, false)
}

func (s *Service) MarkDelivered(ctx context.Context, orderID string) (models.Order, error) {
	return s.UpdateStatus(ctx, orderID, true, true)
}

// Clear drops every local order, used when the session ends.
func (s *Service) Clear() {
	s.mu.Lock()
	s.state = models.OrderCollection{Orders: []models.Order{}}
	out := s.commitLocked()
	s.mu.Unlock()
	lifecycle.Changed(s.hub, StoreName, "clear", out)
}

func (s *Service) commitLocked() models.OrderCollection {
	if s.newGauge != nil {
		s.newGauge.Set(float64(s.state.NewCount))
	}
	return ordersmodel.CloneCollection(s.state)
}
