package model

import (
	"errors"
	"math/rand"
	"strconv"
	"testing"

	"fake-store/go-client/pkg/models"
)

func assertAggregates(t *testing.T, state models.CartState) {
	t.Helper()
	quantity := 0
	amount := models.Money(0)
	seen := map[string]bool{}
	for _, item := range state.Items {
		if item.Quantity < 1 {
			t.Fatalf("item %q retained with quantity %d", item.ID, item.Quantity)
		}
		if seen[item.ID] {
			t.Fatalf("duplicate item id %q", item.ID)
		}
		seen[item.ID] = true
		if item.LineTotal != item.Price.Times(item.Quantity) {
			t.Fatalf("stale line total for %q: got=%d want=%d", item.ID, item.LineTotal, item.Price.Times(item.Quantity))
		}
		quantity += item.Quantity
		amount += item.Price.Times(item.Quantity)
	}
	if state.TotalQuantity != quantity {
		t.Fatalf("total quantity drift: got=%d want=%d", state.TotalQuantity, quantity)
	}
	if state.TotalAmount != amount {
		t.Fatalf("total amount drift: got=%d want=%d", state.TotalAmount, amount)
	}
}

func TestAggregatesHoldAfterEveryMutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := make([]models.Product, 5)
	for i := range products {
		products[i] = models.Product{ID: strconv.Itoa(i), Price: models.Money(rng.Intn(10000))}
	}

	state := NewState()
	for step := 0; step < 2000; step++ {
		p := products[rng.Intn(len(products))]
		switch rng.Intn(4) {
		case 0:
			var err error
			state, err = AddItem(state, p)
			if err != nil {
				t.Fatalf("add failed: %v", err)
			}
		case 1:
			state, _ = IncreaseQuantity(state, p.ID)
		case 2:
			state, _ = DecreaseQuantity(state, p.ID)
		case 3:
			state, _ = RemoveItem(state, p.ID)
		}
		assertAggregates(t, state)
	}
}

func TestAddItemTwiceMergesLine(t *testing.T) {
	state := NewState()
	p := models.Product{ID: "x", Price: models.MoneyFromFloat(10)}
	state, _ = AddItem(state, p)
	state, _ = AddItem(state, p)

	if len(state.Items) != 1 {
		t.Fatalf("unexpected line count: got=%d want=1", len(state.Items))
	}
	item := state.Items[0]
	if item.Quantity != 2 || item.LineTotal != models.MoneyFromFloat(20) {
		t.Fatalf("unexpected line: quantity=%d total=%s", item.Quantity, item.LineTotal)
	}
}

func TestDecreaseAtOneRemovesItem(t *testing.T) {
	state, _ := AddItem(NewState(), models.Product{ID: "x", Price: 500})
	state, changed := DecreaseQuantity(state, "x")
	if !changed {
		t.Fatal("expected change")
	}
	if _, ok := state.Find("x"); ok {
		t.Fatal("item must be removed, not kept at quantity 0")
	}
	if state.TotalQuantity != 0 || state.TotalAmount != 0 {
		t.Fatalf("unexpected totals: %d %s", state.TotalQuantity, state.TotalAmount)
	}
}

func TestAbsentIDIsNoOp(t *testing.T) {
	state, _ := AddItem(NewState(), models.Product{ID: "a", Price: 100})
	for _, op := range []func(models.CartState, string) (models.CartState, bool){IncreaseQuantity, DecreaseQuantity, RemoveItem} {
		next, changed := op(state, "missing")
		if changed {
			t.Fatal("expected no change for absent id")
		}
		if next.TotalQuantity != state.TotalQuantity || next.TotalAmount != state.TotalAmount || len(next.Items) != len(state.Items) {
			t.Fatal("state changed for absent id")
		}
	}
}

func TestRemoveAbsentTwiceIsIdempotent(t *testing.T) {
	state, _ := AddItem(NewState(), models.Product{ID: "a", Price: 100})
	first, _ := RemoveItem(state, "zzz")
	second, _ := RemoveItem(first, "zzz")
	if first.TotalAmount != second.TotalAmount || first.TotalQuantity != second.TotalQuantity || len(first.Items) != len(second.Items) {
		t.Fatal("repeated removal of an absent id changed state")
	}
}

func TestReducersDoNotMutateInput(t *testing.T) {
	state, _ := AddItem(NewState(), models.Product{ID: "a", Price: 100})
	_, _ = IncreaseQuantity(state, "a")
	_, _ = RemoveItem(state, "a")
	_ = Clear(state)
	if state.Items[0].Quantity != 1 || state.TotalQuantity != 1 {
		t.Fatalf("input state mutated: %+v", state)
	}
}

func TestAddItemValidates(t *testing.T) {
	if _, err := AddItem(NewState(), models.Product{ID: "", Price: 1}); !errors.Is(err, ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem for empty id, got %v", err)
	}
	if _, err := AddItem(NewState(), models.Product{ID: "a", Price: -1}); !errors.Is(err, ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem for negative price, got %v", err)
	}
}

func TestReplaceItemsMergesAndDropsEmptyLines(t *testing.T) {
	state := ReplaceItems(NewState(), []models.CartItem{
		{ID: "a", Price: 100, Quantity: 2},
		{ID: "b", Price: 50, Quantity: 0},
		{ID: "a", Price: 100, Quantity: 1},
	})
	if len(state.Items) != 1 {
		t.Fatalf("unexpected line count: got=%d want=1", len(state.Items))
	}
	if state.TotalQuantity != 3 || state.TotalAmount != 300 {
		t.Fatalf("unexpected totals: %d %s", state.TotalQuantity, state.TotalAmount)
	}
}
