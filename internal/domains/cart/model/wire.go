package model

import (
	"fake-store/go-client/internal/remote"
	"fake-store/go-client/pkg/models"
)

// FromRemote maps the service's count-based lines to quantity-based items,
// keeping titles and images already known locally.
func FromRemote(lines []remote.CartLine, known models.CartState) []models.CartItem {
	out := make([]models.CartItem, 0, len(lines))
	for _, line := range lines {
		item := models.CartItem{
			ID:       string(line.ID),
			Price:    models.MoneyFromFloat(line.Price),
			Quantity: line.Count,
		}
		if prev, ok := known.Find(item.ID); ok {
			item.Title = prev.Title
			item.Image = prev.Image
		}
		out = append(out, item)
	}
	return out
}

func ToRemote(items []models.CartItem) []remote.CartLine {
	out := make([]remote.CartLine, 0, len(items))
	for _, item := range items {
		out = append(out, remote.CartLine{
			ID:    remote.ID(item.ID),
			Price: item.Price.Float64(),
			Count: item.Quantity,
		})
	}
	return out
}

func ToOrderItems(items []models.CartItem) []models.OrderLine {
	out := make([]models.OrderLine, 0, len(items))
	for _, item := range items {
		out = append(out, models.OrderLine{
			ProductID: item.ID,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return out
}
