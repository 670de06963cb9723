package model

import (
	"errors"
	"testing"

	"fake-store/go-client/internal/remote"
	"fake-store/go-client/pkg/models"
)

func TestFromRemoteDecodesNestedItems(t *testing.T) {
	order, err := FromRemote(remote.Order{
		ID:          "12",
		OrderItems:  `[{"prodID":3,"price":9.99,"quantity":2}]`,
		IsPaid:      true,
		TotalPrice:  19.98,
	})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].ProductID != "3" || order.Items[0].Price != 999 || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
	if order.Status() != models.OrderPaid || order.TotalPrice != 1998 {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestFromRemoteRejectsBrokenItems(t *testing.T) {
	_, err := FromRemote(remote.Order{ID: "1", OrderItems: `[{"prodID":`})
	if !errors.Is(err, remote.ErrMalformedPayload) {
		t.Fatalf("expected malformed payload, got %v", err)
	}
}

func TestValidateTransition(t *testing.T) {
	newOrder := models.Order{}
	paid := models.Order{IsPaid: true}
	delivered := models.Order{IsPaid: true, IsDelivered: true}

	cases := []struct {
		name                string
		current             models.Order
		isPaid, isDelivered bool
		want                error
	}{
		{"new to paid", newOrder, true, false, nil},
		{"new to delivered", newOrder, true, true, nil},
		{"paid to delivered", paid, true, true, nil},
		{"paid again", paid, true, false, nil},
		{"paid to new", paid, false, false, ErrBackwardTransition},
		{"delivered to paid", delivered, true, false, ErrBackwardTransition},
		{"delivered unpaid", newOrder, false, true, ErrInvalidTransition},
	}
	for _, tc := range cases {
		err := ValidateTransition(tc.current, tc.isPaid, tc.isDelivered)
		if tc.want == nil && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: got=%v want=%v", tc.name, err, tc.want)
		}
	}
}

func TestCountNewAndGroup(t *testing.T) {
	orders := []models.Order{{ID: "1"}, {ID: "2"}, {ID: "3", IsPaid: true}, {ID: "4", IsPaid: true, IsDelivered: true}}
	if got := CountNew(orders); got != 2 {
		t.Fatalf("unexpected new count: got=%d want=2", got)
	}
	groups := Group(orders)
	if len(groups.New) != 2 || len(groups.Paid) != 1 || len(groups.Delivered) != 1 {
		t.Fatalf("unexpected groups: %+v", groups)
	}
}
