package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	cartmodel "fake-store/go-client/internal/domains/cart/model"
	"fake-store/go-client/internal/lifecycle"
	"fake-store/go-client/internal/remote"
	"fake-store/go-client/pkg/models"
)

const StoreName = "cart"

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrRemoteCartNotCleared = errors.New("order was placed but the remote cart was not cleared")
)

type Remote interface {
	GetCart(ctx context.Context) ([]remote.CartLine, error)
	PutCart(ctx context.Context, items []remote.CartLine) error
}

// OrderPlacer creates a server-side order and returns its id.
type OrderPlacer interface {
	Create(ctx context.Context, items []models.OrderLine) (string, error)
}

type Options struct {
	Remote Remote
	Orders OrderPlacer
	Hub    *lifecycle.Hub
	Logger *slog.Logger
	Gauges *Gauges
}

type Service struct {
	remote Remote
	orders OrderPlacer
	hub    *lifecycle.Hub
	logger *slog.Logger
	gauges *Gauges

	mu       sync.Mutex
	state    models.CartState
	inFlight int
}

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		remote: opts.Remote,
		orders: opts.Orders,
		hub:    opts.Hub,
		logger: logger,
		gauges: opts.Gauges,
		state:  cartmodel.NewState(),
	}
	s.gauges.observe(s.state)
	return s
}

func (s *Service) Snapshot() models.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// apply runs one reducer under the lock and returns a copy of the result.
func (s *Service) apply(reduce func(models.CartState) (models.CartState, bool)) (models.CartState, bool) {
	s.mu.Lock()
	next, changed := reduce(s.state)
	if changed {
		s.state = next
		s.gauges.observe(next)
	}
	out := s.state.Clone()
	s.mu.Unlock()
	return out, changed
}

func (s *Service) AddItem(p models.Product) (models.CartState, error) {
	var reduceErr error
	out, changed := s.apply(func(state models.CartState) (models.CartState, bool) {
		next, err := cartmodel.AddItem(state, p)
		if err != nil {
			reduceErr = err
			return state, false
		}
		return next, true
	})
	if reduceErr != nil {
		return out, reduceErr
	}
	if changed {
		lifecycle.Changed(s.hub, StoreName, "addItem", out)
	}
	return out, nil
}

// IncreaseQuantity is a no-op when id is not in the cart.
func (s *Service) IncreaseQuantity(id string) models.CartState {
	return s.mutate("increaseQuantity", func(state models.CartState) (models.CartState, bool) {
		return cartmodel.IncreaseQuantity(state, id)
	})
}

// DecreaseQuantity removes the line when its quantity would drop below 1.
func (s *Service) DecreaseQuantity(id string) models.CartState {
	return s.mutate("decreaseQuantity", func(state models.CartState) (models.CartState, bool) {
		return cartmodel.DecreaseQuantity(state, id)
	})
}

func (s *Service) RemoveItem(id string) models.CartState {
	return s.mutate("removeItem", func(state models.CartState) (models.CartState, bool) {
		return cartmodel.RemoveItem(state, id)
	})
}

func (s *Service) Clear() models.CartState {
	return s.mutate("clear", func(state models.CartState) (models.CartState, bool) {
		return cartmodel.Clear(state), true
	})
}

func (s *Service) mutate(action string, reduce func(models.CartState) (models.CartState, bool)) models.CartState {
	out, changed := s.apply(reduce)
	if changed {
		lifecycle.Changed(s.hub, StoreName, action, out)
	}
	return out
}

// FetchRemote replaces the local items with the service's cart. SyncStatus
// reads syncing while any fetch or push is in flight.
func (s *Service) FetchRemote(ctx context.Context) (models.CartState, error) {
	return lifecycle.Run(ctx, s.hub, StoreName, "fetchRemote", func(ctx context.Context) (models.CartState, error) {
		s.beginSync()
		lines, err := s.remote.GetCart(ctx)
		if err != nil {
			s.logger.Warn("cart fetch failed", "error", err)
			return s.endSync(err), err
		}
		s.mu.Lock()
		s.state = cartmodel.ReplaceItems(s.state, cartmodel.FromRemote(lines, s.state))
		s.gauges.observe(s.state)
		s.finishSyncLocked(nil)
		out := s.state.Clone()
		s.mu.Unlock()
		return out, nil
	})
}

// PushRemote replaces the service's cart with the local items as they are at
// call time. Concurrent local edits are not serialized against the push: the
// snapshot may be taken before or after an edit in flight, and the last push
// to resolve determines the service's view (last write wins).
func (s *Service) PushRemote(ctx context.Context) (int, error) {
	return lifecycle.Run(ctx, s.hub, StoreName, "pushRemote", func(ctx context.Context) (int, error) {
		s.mu.Lock()
		s.inFlight++
		s.state.SyncStatus = models.SyncSyncing
		lines := cartmodel.ToRemote(s.state.Items)
		s.mu.Unlock()

		if err := s.remote.PutCart(ctx, lines); err != nil {
			s.logger.Warn("cart push failed", "error", err, "lines", len(lines))
			s.endSync(err)
			return 0, err
		}
		s.endSync(nil)
		return len(lines), nil
	})
}

// Checkout places an order for the current items. The local cart is cleared
// and then an empty cart is pushed, both only after the order exists. A
// failed push after a successful order returns the order id together with
// ErrRemoteCartNotCleared.
func (s *Service) Checkout(ctx context.Context) (string, error) {
	return lifecycle.Run(ctx, s.hub, StoreName, "checkout", func(ctx context.Context) (string, error) {
		snapshot := s.Snapshot()
		if len(snapshot.Items) == 0 {
			return "", ErrEmptyCart
		}
		orderID, err := s.orders.Create(ctx, cartmodel.ToOrderItems(snapshot.Items))
		if err != nil {
			s.logger.Warn("checkout failed", "error", err, "items", len(snapshot.Items))
			return "", err
		}

		s.mutate("clear", func(state models.CartState) (models.CartState, bool) {
			return cartmodel.Clear(state), true
		})
		if err := s.remote.PutCart(ctx, []remote.CartLine{}); err != nil {
			s.logger.Warn("remote cart clear after checkout failed", "order_id", orderID, "error", err)
			return orderID, fmt.Errorf("%w: %w", ErrRemoteCartNotCleared, err)
		}
		s.logger.Info("checkout completed", "order_id", orderID, "items", len(snapshot.Items))
		return orderID, nil
	})
}

func (s *Service) beginSync() {
	s.mu.Lock()
	s.inFlight++
	s.state.SyncStatus = models.SyncSyncing
	s.mu.Unlock()
}

func (s *Service) endSync(err error) models.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishSyncLocked(err)
	return s.state.Clone()
}

func (s *Service) finishSyncLocked(err error) {
	if s.inFlight > 0 {
		s.inFlight--
	}
	if s.inFlight == 0 {
		s.state.SyncStatus = models.SyncIdle
	}
	if err != nil {
		s.state.SyncError = remote.UserMessage(err)
	} else {
		s.state.SyncError = ""
	}
}
