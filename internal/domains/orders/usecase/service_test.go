package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	ordersmodel "fake-store/go-client/internal/domains/orders/model"
	"fake-store/go-client/internal/lifecycle"
	"fake-store/go-client/internal/remote"
	"fake-store/go-client/pkg/models"
)

type updateCall struct {
	id                  remote.ID
	isPaid, isDelivered bool
}

type fakeRemote struct {
	orders    []remote.Order
	listErr   error
	createID  remote.ID
	createErr error
	updateErr error
	created   [][]remote.OrderItem
	updates   []updateCall
	onUpdate  func()
}

func (f *fakeRemote) ListOrders(context.Context) ([]remote.Order, error) {
	return f.orders, f.listErr
}

func (f *fakeRemote) CreateOrder(_ context.Context, items []remote.OrderItem) (remote.ID, error) {
	f.created = append(f.created, items)
	return f.createID, f.createErr
}

func (f *fakeRemote) UpdateOrder(_ context.Context, id remote.ID, isPaid, isDelivered bool) error {
	f.updates = append(f.updates, updateCall{id: id, isPaid: isPaid, isDelivered: isDelivered})
	if f.onUpdate != nil {
		f.onUpdate()
	}
	return f.updateErr
}

func newPaidListing() *fakeRemote {
	return &fakeRemote{orders: []remote.Order{
		{ID: "1", OrderItems: `[{"prodID":1,"price":10,"quantity":1}]`, TotalPrice: 10},
		{ID: "2", OrderItems: `[]`, TotalPrice: 0},
		{ID: "3", OrderItems: `[{"prodID":"2","price":5.5,"quantity":2}]`, IsPaid: true, TotalPrice: 11},
	}}
}

func TestNewCountFollowsFetchAndUpdates(t *testing.T) {
	svc := NewService(Options{Remote: newPaidListing()})
	ctx := context.Background()

	got, err := svc.FetchAll(ctx)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got.NewCount != 2 {
		t.Fatalf("unexpected new count after fetch: got=%d want=2", got.NewCount)
	}

	if _, err := svc.UpdateStatus(ctx, "1", true, false); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if svc.NewCount() != 1 {
		t.Fatalf("unexpected new count after pay: got=%d want=1", svc.NewCount())
	}

	order, err := svc.UpdateStatus(ctx, "3", true, true)
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if svc.NewCount() != 1 {
		t.Fatalf("delivering a paid order changed new count: got=%d want=1", svc.NewCount())
	}
	if order.Status() != models.OrderDelivered {
		t.Fatalf("unexpected status: %q", order.Status())
	}
}

func TestUpdateStatusRequiresLocalOrder(t *testing.T) {
	r := newPaidListing()
	svc := NewService(Options{Remote: r})
	_, err := svc.UpdateStatus(context.Background(), "404", true, false)
	if !errors.Is(err, ordersmodel.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if len(r.updates) != 0 {
		t.Fatal("no remote call may be made for an unknown order")
	}
}

func TestUpdateStatusRefusesBackwardTransition(t *testing.T) {
	r := newPaidListing()
	svc := NewService(Options{Remote: r})
	if _, err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	_, err := svc.UpdateStatus(context.Background(), "3", false, false)
	if !errors.Is(err, ordersmodel.ErrBackwardTransition) {
		t.Fatalf("expected ErrBackwardTransition, got %v", err)
	}
	if len(r.updates) != 0 {
		t.Fatal("backward transition must not reach the service")
	}
}

func TestUpdateStatusAppliesOnlyAfterConfirmation(t *testing.T) {
	r := newPaidListing()
	svc := NewService(Options{Remote: r})
	if _, err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	var sawPaidDuringCall bool
	r.onUpdate = func() {
		snap := svc.Snapshot()
		sawPaidDuringCall = snap.Orders[0].IsPaid || snap.NewCount != 2
	}
	r.updateErr = &remote.ApplicationError{Endpoint: remote.EndpointUpdateOrder, Message: "nope"}

	if _, err := svc.Pay(context.Background(), "1"); !errors.Is(err, remote.ErrApplication) {
		t.Fatalf("expected application failure, got %v", err)
	}
	if sawPaidDuringCall {
		t.Fatal("status was applied before the service answered")
	}
	snap := svc.Snapshot()
	if snap.Orders[0].IsPaid || snap.NewCount != 2 {
		t.Fatalf("state changed on failure: %+v", snap)
	}
}

func TestCreateIncrementsNewCountWithoutListing(t *testing.T) {
	r := &fakeRemote{createID: "41"}
	svc := NewService(Options{Remote: r})
	id, err := svc.Create(context.Background(), []models.OrderLine{{ProductID: "7", Price: 1250, Quantity: 2}})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if id != "41" || svc.NewCount() != 1 {
		t.Fatalf("unexpected create result: id=%q new=%d", id, svc.NewCount())
	}
	if len(svc.Snapshot().Orders) != 0 {
		t.Fatal("create must not fabricate a local order")
	}
	item := r.created[0][0]
	if item.ProdID != "7" || item.Price != 12.5 || item.Quantity != 2 {
		t.Fatalf("unexpected wire item: %+v", item)
	}
}

func TestFetchAllMalformedItemsKeepsState(t *testing.T) {
	r := newPaidListing()
	svc := NewService(Options{Remote: r})
	if _, err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	r.orders = []remote.Order{{ID: "9", OrderItems: "{"}}
	_, err := svc.FetchAll(context.Background())
	if !errors.Is(err, remote.ErrTransport) || !errors.Is(err, remote.ErrMalformedPayload) {
		t.Fatalf("expected malformed transport failure, got %v", err)
	}
	if len(svc.Snapshot().Orders) != 3 {
		t.Fatal("failed fetch replaced local orders")
	}
}

func TestClearAndGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	hub := lifecycle.NewHub(16)
	svc := NewService(Options{Remote: newPaidListing(), Hub: hub, Registerer: reg, Namespace: "test"})
	if _, err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got := testutil.ToFloat64(svc.newGauge); got != 2 {
		t.Fatalf("unexpected gauge: got=%v want=2", got)
	}
	svc.Clear()
	if got := testutil.ToFloat64(svc.newGauge); got != 0 {
		t.Fatalf("unexpected gauge after clear: got=%v want=0", got)
	}
	snap := svc.Snapshot()
	if len(snap.Orders) != 0 || snap.NewCount != 0 {
		t.Fatalf("orders not cleared: %+v", snap)
	}
	history := hub.History()
	if last := history[len(history)-1]; last.Action != "clear" {
		t.Fatalf("unexpected last action: %q", last.Action)
	}
}

func TestGroupedPartitionsByStatus(t *testing.T) {
	svc := NewService(Options{Remote: newPaidListing()})
	if _, err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	groups := svc.Grouped()
	if len(groups.New) != 2 || len(groups.Paid) != 1 || len(groups.Delivered) != 0 {
		t.Fatalf("unexpected groups: %+v", groups)
	}
}
