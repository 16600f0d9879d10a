package qsapi

import "time"

// User is an account row from the admin user list.
type User struct {
	ID        uint64     `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username,omitempty"`
	APIKey    string     `json:"api_key"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// CreatedUser is the create-user response. APISecret is returned exactly once
// and never retrievable again.
type CreatedUser struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	APIKey    string    `json:"api_key"`
	APISecret string    `json:"api_secret"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// UserPage is one page of the admin user list. Data keeps server order.
type UserPage struct {
	Data  []User `json:"data"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// UserListOptions are the server-side filters for the user list. Zero values
// are omitted from the query string entirely; the remote service treats an
// empty search differently from an absent one.
type UserListOptions struct {
	Page   int
	Limit  int
	Search string
	Status string
}

// Fee is the nested fee object on orders and trades.
type Fee struct {
	Cost     float64 `json:"cost"`
	Currency string  `json:"currency"`
}

// Order is an order in the CCXT-style wire format the service speaks. The id
// is a string on the wire even though order ids are numeric.
type Order struct {
	ID            string   `json:"id"`
	ClientOrderID string   `json:"clientOrderId,omitempty"`
	Timestamp     int64    `json:"timestamp"`
	Datetime      string   `json:"datetime"`
	Symbol        string   `json:"symbol"`
	Type          string   `json:"type"`
	Side          string   `json:"side"`
	Price         *float64 `json:"price"`
	Amount        float64  `json:"amount"`
	Filled        float64  `json:"filled"`
	Remaining     float64  `json:"remaining"`
	Status        string   `json:"status"`
	Fee           Fee      `json:"fee"`
}

// OrderListOptions are the server-side order list filters, all optional.
type OrderListOptions struct {
	Symbol string
	Status string
	Side   string
	Type   string
}

// Trade is a fill in the CCXT-style wire format.
type Trade struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"order"`
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
	Cost      float64 `json:"cost"`
	Timestamp int64   `json:"timestamp"`
	Datetime  string  `json:"datetime"`
	Fee       Fee     `json:"fee"`
}

// Market is one tradable instrument.
type Market struct {
	Symbol string `json:"symbol"`
	ID     string `json:"id"`
	Base   string `json:"base"`
	Quote  string `json:"quote"`
	Active bool   `json:"active"`
}

// Ticker is a quote. Price fields are pointers: a missing field means "no
// price available", which is not the same thing as a price of zero.
type Ticker struct {
	Symbol      string
	Timestamp   int64
	Last        *float64
	Bid         *float64
	Ask         *float64
	High        *float64
	Low         *float64
	BaseVolume  *float64
	QuoteVolume *float64
}

// AssetBalance is one asset's funds split.
type AssetBalance struct {
	Free  float64 `json:"free"`
	Used  float64 `json:"used"`
	Total float64 `json:"total"`
}

// UserBalance is one row of the per-user admin balance listing.
type UserBalance struct {
	UserID    uint64  `json:"user_id"`
	Asset     string  `json:"asset"`
	Available float64 `json:"available"`
	Locked    float64 `json:"locked"`
}

// BalancePage is one page of the all-users balance summary.
type BalancePage struct {
	Data  []UserBalance `json:"data"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// AdjustRequest is the admin balance-adjustment body. Note is mandatory for
// the server-side audit trail.
type AdjustRequest struct {
	Asset     string  `json:"asset"`
	Amount    float64 `json:"amount"`
	Operation string  `json:"operation"` // add or deduct
	Note      string  `json:"note"`
}

// AdjustResult echoes the adjusted balance back to the operator.
type AdjustResult struct {
	Message string      `json:"message"`
	Balance UserBalance `json:"balance"`
	Note    string      `json:"note"`
}
