// Package model holds the cart reducers. Every reducer returns a new state
// and never mutates its input, and every reducer that touches the item set
// finishes with Recompute so the aggregates always match the items.
package model

import (
	"errors"
	"strings"

	"fake-store/go-client/pkg/models"
)

var ErrInvalidItem = errors.New("cart item is invalid")

func NewState() models.CartState {
	return models.CartState{Items: []models.CartItem{}, SyncStatus: models.SyncIdle}
}

// Recompute rebuilds every line total and both aggregates from scratch.
func Recompute(state models.CartState) models.CartState {
	quantity := 0
	amount := models.Money(0)
	for i := range state.Items {
		state.Items[i].LineTotal = state.Items[i].Price.Times(state.Items[i].Quantity)
		quantity += state.Items[i].Quantity
		amount += state.Items[i].LineTotal
	}
	state.TotalQuantity = quantity
	state.TotalAmount = amount
	return state
}

func ValidateProduct(p models.Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.Join(ErrInvalidItem, errors.New("id is required"))
	}
	if p.Price < 0 {
		return errors.Join(ErrInvalidItem, errors.New("price must not be negative"))
	}
	return nil
}

// AddItem increments an existing line or appends a new line with quantity 1.
func AddItem(state models.CartState, p models.Product) (models.CartState, error) {
	if err := ValidateProduct(p); err != nil {
		return state, err
	}
	next := state.Clone()
	if i := indexOf(next.Items, p.ID); i >= 0 {
		next.Items[i].Quantity++
	} else {
		next.Items = append(next.Items, models.CartItem{
			ID:       p.ID,
			Title:    p.Title,
			Image:    p.Image,
			Price:    p.Price,
			Quantity: 1,
		})
	}
	return Recompute(next), nil
}

// IncreaseQuantity reports false and returns state unchanged when id is absent.
func IncreaseQuantity(state models.CartState, id string) (models.CartState, bool) {
	i := indexOf(state.Items, id)
	if i < 0 {
		return state, false
	}
	next := state.Clone()
	next.Items[i].Quantity++
	return Recompute(next), true
}

// DecreaseQuantity removes the line instead of letting its quantity reach 0.
func DecreaseQuantity(state models.CartState, id string) (models.CartState, bool) {
	i := indexOf(state.Items, id)
	if i < 0 {
		return state, false
	}
	if state.Items[i].Quantity <= 1 {
		return RemoveItem(state, id)
	}
	next := state.Clone()
	next.Items[i].Quantity--
	return Recompute(next), true
}

func RemoveItem(state models.CartState, id string) (models.CartState, bool) {
	i := indexOf(state.Items, id)
	if i < 0 {
		return state, false
	}
	next := state.Clone()
	next.Items = append(next.Items[:i:i], next.Items[i+1:]...)
	return Recompute(next), true
}

func Clear(state models.CartState) models.CartState {
	next := state.Clone()
	next.Items = []models.CartItem{}
	return Recompute(next)
}

// ReplaceItems installs an authoritative item set. Lines sharing an id are
// merged and lines without a positive quantity are dropped.
func ReplaceItems(state models.CartState, items []models.CartItem) models.CartState {
	next := state.Clone()
	next.Items = make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 || strings.TrimSpace(item.ID) == "" {
			continue
		}
		if i := indexOf(next.Items, item.ID); i >= 0 {
			next.Items[i].Quantity += item.Quantity
			continue
		}
		next.Items = append(next.Items, item)
	}
	return Recompute(next)
}

func indexOf(items []models.CartItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
