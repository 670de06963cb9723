package mockremote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fake-store/go-client/internal/remote"
)

func newClient(t *testing.T) (*remote.Client, *Server) {
	t.Helper()
	mock := New()
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)
	client, err := remote.NewClient(remote.Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	return client, mock
}

func signUp(t *testing.T, client *remote.Client) remote.AuthResponse {
	t.Helper()
	resp, err := client.SignUp(context.Background(), "Ann", "ann@example.com", "pw")
	if err != nil {
		t.Fatalf("sign up failed: %v", err)
	}
	client.SetToken(resp.Token)
	return resp
}

func TestSignUpThenSignIn(t *testing.T) {
	client, _ := newClient(t)
	created := signUp(t, client)
	if created.Token == "" || created.ID != "1" {
		t.Fatalf("unexpected sign up response: %+v", created)
	}

	if _, err := client.SignUp(context.Background(), "Ann", "ann@example.com", "pw"); !errors.Is(err, remote.ErrApplication) {
		t.Fatalf("duplicate sign up must fail, got %v", err)
	}
	if _, err := client.SignIn(context.Background(), "ann@example.com", "wrong"); remote.UserMessage(err) != "Invalid email or password" {
		t.Fatalf("unexpected sign in failure: %v", err)
	}
	again, err := client.SignIn(context.Background(), "ANN@example.com", "pw")
	if err != nil || again.Name != "Ann" || again.Token == created.Token {
		t.Fatalf("unexpected sign in: %+v err=%v", again, err)
	}
}

func TestCartAndOrdersRoundTrip(t *testing.T) {
	client, _ := newClient(t)
	signUp(t, client)
	ctx := context.Background()

	if err := client.PutCart(ctx, []remote.CartLine{{ID: "1", Price: 109.95, Count: 2}}); err != nil {
		t.Fatalf("put cart failed: %v", err)
	}
	lines, err := client.GetCart(ctx)
	if err != nil || len(lines) != 1 || lines[0].Count != 2 {
		t.Fatalf("unexpected cart: %+v err=%v", lines, err)
	}

	id, err := client.CreateOrder(ctx, []remote.OrderItem{{ProdID: "1", Price: 109.95, Quantity: 2}})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if err := client.UpdateOrder(ctx, id, true, false); err != nil {
		t.Fatalf("update order failed: %v", err)
	}
	orders, err := client.ListOrders(ctx)
	if err != nil || len(orders) != 1 {
		t.Fatalf("unexpected orders: %+v err=%v", orders, err)
	}
	if !bool(orders[0].IsPaid) || bool(orders[0].IsDelivered) || orders[0].TotalPrice != 219.9 {
		t.Fatalf("unexpected order: %+v", orders[0])
	}
	items, err := remote.DecodeOrderItems(orders[0].OrderItems)
	if err != nil || len(items) != 1 || items[0].ProdID != "1" {
		t.Fatalf("unexpected nested items: %+v err=%v", items, err)
	}

	if err := client.UpdateOrder(ctx, "999", true, true); remote.UserMessage(err) != "Order not found" {
		t.Fatalf("unexpected update failure: %v", err)
	}
}

func TestProtectedRoutesRejectUnknownTokens(t *testing.T) {
	client, mock := newClient(t)
	signUp(t, client)

	var refused string
	client.SetUnauthorizedHandler(func(token string) { refused = token })
	mock.RevokeTokens()

	_, err := client.GetCart(context.Background())
	var appErr *remote.ApplicationError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("expected 401 application error, got %v", err)
	}
	if refused == "" {
		t.Fatal("unauthorized hook did not fire")
	}
}

func TestFailNextAppliesOnce(t *testing.T) {
	client, mock := newClient(t)
	signUp(t, client)
	mock.FailNext(http.MethodPut, remote.EndpointCart, "cart locked")

	if err := client.PutCart(context.Background(), nil); remote.UserMessage(err) != "cart locked" {
		t.Fatalf("unexpected injected failure: %v", err)
	}
	if err := client.PutCart(context.Background(), nil); err != nil {
		t.Fatalf("failure must apply only once: %v", err)
	}
	if got := mock.CallsTo(http.MethodPut, remote.EndpointCart); got != 2 {
		t.Fatalf("unexpected call count: got=%d want=2", got)
	}
}

func TestCatalogRoutes(t *testing.T) {
	client, mock := newClient(t)
	ctx := context.Background()

	categories, err := client.Categories(ctx)
	if err != nil || len(categories) != 4 {
		t.Fatalf("unexpected categories: %v err=%v", categories, err)
	}
	products, err := client.ProductsByCategory(ctx, "men's clothing")
	if err != nil || len(products) != 2 {
		t.Fatalf("unexpected products: %+v err=%v", products, err)
	}
	product, err := client.Product(ctx, "9")
	if err != nil || product.Category != "electronics" {
		t.Fatalf("unexpected product: %+v err=%v", product, err)
	}
	if _, err := client.Product(ctx, "404"); !errors.Is(err, remote.ErrApplication) {
		t.Fatalf("expected not found failure, got %v", err)
	}
	for _, call := range mock.Calls() {
		if call.RequestID == "" {
			t.Fatalf("request id missing for %s %s", call.Method, call.Path)
		}
	}
}
