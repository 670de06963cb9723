package models

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Credential struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type SessionStatus string

const (
	SessionAnonymous      SessionStatus = "anonymous"
	SessionAuthenticating SessionStatus = "authenticating"
	SessionAuthenticated  SessionStatus = "authenticated"
)

type SessionState struct {
	Status     SessionStatus `json:"status"`
	User       *User         `json:"user,omitempty"`
	Credential *Credential   `json:"-"`
	LastError  string        `json:"last_error,omitempty"`
}

func (s SessionState) Clone() SessionState {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Credential != nil {
		c := *s.Credential
		out.Credential = &c
	}
	return out
}

type Product struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Price       Money  `json:"price"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Image       string `json:"image,omitempty"`
}

// CartItem is one line of the cart. LineTotal is always Price*Quantity.
type CartItem struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Image     string `json:"image,omitempty"`
	Price     Money  `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal Money  `json:"line_total"`
}

type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncSyncing SyncStatus = "syncing"
)

type CartState struct {
	Items         []CartItem `json:"items"`
	TotalQuantity int        `json:"total_quantity"`
	TotalAmount   Money      `json:"total_amount"`
	SyncStatus    SyncStatus `json:"sync_status"`
	SyncError     string     `json:"sync_error,omitempty"`
}

func (s CartState) Clone() CartState {
	out := s
	out.Items = append([]CartItem(nil), s.Items...)
	return out
}

func (s CartState) Find(id string) (CartItem, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CartItem{}, false
}

type OrderLine struct {
	ProductID string `json:"product_id"`
	Price     Money  `json:"price"`
	Quantity  int    `json:"quantity"`
}

type OrderStatus string

const (
	OrderNew       OrderStatus = "new"
	OrderPaid      OrderStatus = "paid"
	OrderDelivered OrderStatus = "delivered"
)

type Order struct {
	ID          string      `json:"id"`
	Items       []OrderLine `json:"items"`
	IsPaid      bool        `json:"is_paid"`
	IsDelivered bool        `json:"is_delivered"`
	TotalPrice  Money       `json:"total_price"`
}

func (o Order) Status() OrderStatus {
	switch {
	case o.IsDelivered:
		return OrderDelivered
	case o.IsPaid:
		return OrderPaid
	default:
		return OrderNew
	}
}

func (o Order) IsNew() bool {
	return !o.IsPaid && !o.IsDelivered
}

func (o Order) Clone() Order {
	out := o
	out.Items = append([]OrderLine(nil), o.Items...)
	return out
}

type OrderCollection struct {
	Orders   []Order `json:"orders"`
	NewCount int     `json:"new_count"`
}
