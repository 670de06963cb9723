package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"fake-store/go-client/internal/lifecycle"
	"fake-store/go-client/internal/remote"
	"fake-store/go-client/pkg/models"
)

const StoreName = "catalog"

var ErrInvalidProductID = errors.New("product id is required")

type Remote interface {
	Categories(ctx context.Context) ([]string, error)
	ProductsByCategory(ctx context.Context, category string) ([]remote.Product, error)
	Product(ctx context.Context, id string) (remote.Product, error)
}

type Options struct {
	Remote Remote
	Hub    *lifecycle.Hub
	Logger *slog.Logger
}

// Service reads the product catalog and remembers every product it has seen
// so the cart can be filled by id.
type Service struct {
	remote Remote
	hub    *lifecycle.Hub
	logger *slog.Logger

	mu       sync.RWMutex
	products map[string]models.Product
}

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		remote:   opts.Remote,
		hub:      opts.Hub,
		logger:   logger,
		products: make(map[string]models.Product),
	}
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return lifecycle.Run(ctx, s.hub, StoreName, "categories", func(ctx context.Context) ([]string, error) {
		categories, err := s.remote.Categories(ctx)
		if err != nil {
			return nil, err
		}
		if categories == nil {
			categories = []string{}
		}
		return categories, nil
	})
}

func (s *Service) Products(ctx context.Context, category string) ([]models.Product, error) {
	return lifecycle.Run(ctx, s.hub, StoreName, "products", func(ctx context.Context) ([]models.Product, error) {
		listed, err := s.remote.ProductsByCategory(ctx, strings.TrimSpace(category))
		if err != nil {
			return nil, err
		}
		out := make([]models.Product, 0, len(listed))
		for _, p := range listed {
			out = append(out, FromRemote(p))
		}
		s.remember(out...)
		return out, nil
	})
}

// Product returns a cached product when one is known and fetches it otherwise.
func (s *Service) Product(ctx context.Context, id string) (models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Product{}, ErrInvalidProductID
	}
	if p, ok := s.Lookup(id); ok {
		return p, nil
	}
	return lifecycle.Run(ctx, s.hub, StoreName, "product", func(ctx context.Context) (models.Product, error) {
		fetched, err := s.remote.Product(ctx, id)
		if err != nil {
			return models.Product{}, err
		}
		p := FromRemote(fetched)
		if p.ID == "" {
			p.ID = id
		}
		s.remember(p)
		return p, nil
	})
}

func (s *Service) Lookup(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *Service) remember(products ...models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		if p.ID != "" {
			s.products[p.ID] = p
		}
	}
}

func FromRemote(p remote.Product) models.Product {
	return models.Product{
		ID:          string(p.ID),
		Title:       p.Title,
		Price:       models.MoneyFromFloat(p.Price),
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
	}
}
