package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	EndpointSignUp      = "/users/signup"
	EndpointSignIn      = "/users/signin"
	EndpointUpdateUser  = "/users/update"
	EndpointCart        = "/cart"
	EndpointOrders      = "/orders/all"
	EndpointNewOrder    = "/orders/neworder"
	EndpointUpdateOrder = "/orders/updateorder"
	EndpointCategories  = "/products/categories"
)

// ID accepts either a JSON number or a JSON string and re-encodes numeric ids
// as numbers, which is what the service expects.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Flag is the service's 0/1 boolean. Real booleans are accepted on decode.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "1", "true":
		*f = true
	case "0", "false", "null":
		*f = false
	default:
		return fmt.Errorf("flag must be 0/1 or a boolean, got %s", data)
	}
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

type AuthResponse struct {
	Token string `json:"token"`
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CartLine struct {
	ID    ID      `json:"id"`
	Price float64 `json:"price"`
	Count int     `json:"count"`
}

type OrderItem struct {
	ProdID   ID      `json:"prodID"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order is the list representation; OrderItems is itself JSON text and has to
// be decoded a second time with DecodeOrderItems.
type Order struct {
	ID          ID      `json:"id"`
	OrderItems  string  `json:"order_items"`
	IsPaid      Flag    `json:"is_paid"`
	IsDelivered Flag    `json:"is_delivered"`
	TotalPrice  float64 `json:"total_price"`
	ItemNumbers int     `json:"item_numbers,omitempty"`
}

type Product struct {
	ID          ID      `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
}

func DecodeOrderItems(raw string) ([]OrderItem, error) {
	if strings.TrimSpace(raw) == "" {
		return []OrderItem{}, nil
	}
	var items []OrderItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, errors.Join(ErrMalformedPayload, fmt.Errorf("order_items: %w", err))
	}
	return items, nil
}

func (c *Client) SignUp(ctx context.Context, name, email, password string) (AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	err := c.Do(ctx, EndpointSignUp, http.MethodPost, body, &out)
	return out, err
}

func (c *Client) SignIn(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	err := c.Do(ctx, EndpointSignIn, http.MethodPost, body, &out)
	return out, err
}

// UpdateUser returns the name the service recorded.
func (c *Client) UpdateUser(ctx context.Context, name, password string) (string, error) {
	var out struct {
		Name string `json:"name"`
	}
	body := map[string]string{"name": name, "password": password}
	err := c.Do(ctx, EndpointUpdateUser, http.MethodPost, body, &out)
	return out.Name, err
}

func (c *Client) GetCart(ctx context.Context) ([]CartLine, error) {
	var out struct {
		Items []CartLine `json:"items"`
	}
	if err := c.Do(ctx, EndpointCart, http.MethodGet, nil, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []CartLine{}
	}
	return out.Items, nil
}

// PutCart replaces the service's cart with items.
func (c *Client) PutCart(ctx context.Context, items []CartLine) error {
	if items == nil {
		items = []CartLine{}
	}
	body := struct {
		Items []CartLine `json:"items"`
	}{Items: items}
	return c.Do(ctx, EndpointCart, http.MethodPut, body, nil)
}

func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var out struct {
		Orders []Order `json:"orders"`
	}
	if err := c.Do(ctx, EndpointOrders, http.MethodGet, nil, &out); err != nil {
		return nil, err
	}
	if out.Orders == nil {
		out.Orders = []Order{}
	}
	return out.Orders, nil
}

func (c *Client) CreateOrder(ctx context.Context, items []OrderItem) (ID, error) {
	var out struct {
		ID ID `json:"id"`
	}
	body := struct {
		Items []OrderItem `json:"items"`
	}{Items: items}
	if err := c.Do(ctx, EndpointNewOrder, http.MethodPost, body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &TransportError{Method: http.MethodPost, Endpoint: EndpointNewOrder, Err: errors.Join(ErrMalformedPayload, errors.New("missing order id"))}
	}
	return out.ID, nil
}

func (c *Client) UpdateOrder(ctx context.Context, orderID ID, isPaid, isDelivered bool) error {
	body := struct {
		OrderID     ID   `json:"orderID"`
		IsPaid      Flag `json:"isPaid"`
		IsDelivered Flag `json:"isDelivered"`
	}{OrderID: orderID, IsPaid: Flag(isPaid), IsDelivered: Flag(isDelivered)}
	return c.Do(ctx, EndpointUpdateOrder, http.MethodPost, body, nil)
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out struct {
		Categories []string `json:"categories"`
	}
	err := c.Do(ctx, EndpointCategories, http.MethodGet, nil, &out)
	return out.Categories, err
}

func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	var out struct {
		Products []Product `json:"products"`
	}
	err := c.Do(ctx, "/products/category/"+url.PathEscape(category), http.MethodGet, nil, &out)
	return out.Products, err
}

func (c *Client) Product(ctx context.Context, id string) (Product, error) {
	var out struct {
		Product Product `json:"product"`
	}
	err := c.Do(ctx, "/products/"+url.PathEscape(id), http.MethodGet, nil, &out)
	return out.Product, err
}
