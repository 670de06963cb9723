package model

import (
	"errors"
	"fmt"

	"fake-store/go-client/internal/remote"
	"fake-store/go-client/pkg/models"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrBackwardTransition = errors.New("order status cannot move backward")
	ErrInvalidTransition  = errors.New("order cannot be delivered without being paid")
)

// FromRemote decodes one listed order, including the order_items string that
// carries a second JSON document.
func FromRemote(in remote.Order) (models.Order, error) {
	items, err := remote.DecodeOrderItems(in.OrderItems)
	if err != nil {
		return models.Order{}, fmt.Errorf("order %s: %w", in.ID, err)
	}
	lines := make([]models.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.OrderLine{
			ProductID: string(item.ProdID),
			Price:     models.MoneyFromFloat(item.Price),
			Quantity:  item.Quantity,
		})
	}
	return models.Order{
		ID:          string(in.ID),
		Items:       lines,
		IsPaid:      bool(in.IsPaid),
		IsDelivered: bool(in.IsDelivered),
		TotalPrice:  models.MoneyFromFloat(in.TotalPrice),
	}, nil
}

func FromRemoteList(in []remote.Order) ([]models.Order, error) {
	out := make([]models.Order, 0, len(in))
	for _, o := range in {
		order, err := FromRemote(o)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, nil
}

func ToRemoteItems(lines []models.OrderLine) []remote.OrderItem {
	out := make([]remote.OrderItem, 0, len(lines))
	for _, line := range lines {
		out = append(out, remote.OrderItem{
			ProdID:   remote.ID(line.ProductID),
			Price:    line.Price.Float64(),
			Quantity: line.Quantity,
		})
	}
	return out
}

// CountNew is the full recount used after a fetch.
func CountNew(orders []models.Order) int {
	n := 0
	for _, o := range orders {
		if o.IsNew() {
			n++
		}
	}
	return n
}

// ValidateTransition accepts New->Paid, Paid->Delivered, New->Delivered and
// same-state requests.
func ValidateTransition(current models.Order, isPaid, isDelivered bool) error {
	if isDelivered && !isPaid {
		return ErrInvalidTransition
	}
	if (current.IsPaid && !isPaid) || (current.IsDelivered && !isDelivered) {
		return fmt.Errorf("%w: %s", ErrBackwardTransition, current.Status())
	}
	return nil
}

func IndexOf(orders []models.Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}

func CloneCollection(in models.OrderCollection) models.OrderCollection {
	out := models.OrderCollection{NewCount: in.NewCount, Orders: make([]models.Order, len(in.Orders))}
	for i := range in.Orders {
		out.Orders[i] = in.Orders[i].Clone()
	}
	return out
}

type Groups struct {
	New       []models.Order `json:"new"`
	Paid      []models.Order `json:"paid"`
	Delivered []models.Order `json:"delivered"`
}

func Group(orders []models.Order) Groups {
	out := Groups{New: []models.Order{}, Paid: []models.Order{}, Delivered: []models.Order{}}
	for _, o := range orders {
		switch o.Status() {
		case models.OrderNew:
			out.New = append(out.New, o.Clone())
		case models.OrderPaid:
			out.Paid = append(out.Paid, o.Clone())
		case models.OrderDelivered:
			out.Delivered = append(out.Delivered, o.Clone())
		}
	}
	return out
}
