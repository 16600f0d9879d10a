package qsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/talkincode/qsadmin/pkg/gateway"
)

// Client is the typed endpoint surface over the gateway. One method per
// remote endpoint, with deterministic query construction: only non-empty
// filter values make it into the query string.
type Client struct {
	gw *gateway.Client
}

func New(gw *gateway.Client) *Client {
	return &Client{gw: gw}
}

// Health probes /health. Any error means the service is not usable.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.gw.Do(ctx, "GET", "/health", nil, nil)
	return err
}

func (c *Client) GetUsers(ctx context.Context, opts UserListOptions) (UserPage, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(opts.Page))
	query.Set("limit", strconv.Itoa(opts.Limit))
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	var page UserPage
	raw, err := c.gw.Do(ctx, "GET", "/v1/admin/users", query, nil)
	if err != nil {
		return page, err
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return page, fmt.Errorf("decode user page: %w", err)
	}
	return page, nil
}

func (c *Client) CreateUser(ctx context.Context, email, username string) (CreatedUser, error) {
	var created CreatedUser
	if email == "" {
		return created, errors.New("email is required")
	}

	body := map[string]string{"email": email}
	if username != "" {
		body["username"] = username
	}

	raw, err := c.gw.Do(ctx, "POST", "/v1/admin/users", nil, body)
	if err != nil {
		return created, err
	}
	if err := json.Unmarshal(raw, &created); err != nil {
		return created, fmt.Errorf("decode created user: %w", err)
	}
	return created, nil
}

func (c *Client) GetUser(ctx context.Context, id uint64) (User, error) {
	var user User
	raw, err := c.gw.Do(ctx, "GET", "/v1/admin/users/"+strconv.FormatUint(id, 10), nil, nil)
	if err != nil {
		return user, err
	}
	if err := json.Unmarshal(raw, &user); err != nil {
		return user, fmt.Errorf("decode user: %w", err)
	}
	return user, nil
}

// UpdateUser changes a user's status and/or rotates its API key. Empty
// status and a false regenerate flag are omitted from the body.
func (c *Client) UpdateUser(ctx context.Context, id uint64, status string, regenerateKey bool) (User, error) {
	var user User

	body := map[string]interface{}{}
	if status != "" {
		body["status"] = status
	}
	if regenerateKey {
		body["regenerate_api_key"] = true
	}
	if len(body) == 0 {
		return user, errors.New("nothing to update")
	}

	raw, err := c.gw.Do(ctx, "PUT", "/v1/admin/users/"+strconv.FormatUint(id, 10), nil, body)
	if err != nil {
		return user, err
	}
	if err := json.Unmarshal(raw, &user); err != nil {
		return user, fmt.Errorf("decode user: %w", err)
	}
	return user, nil
}

// DeleteUser soft-deletes one user on the remote service.
func (c *Client) DeleteUser(ctx context.Context, id uint64) error {
	_, err := c.gw.Do(ctx, "DELETE", "/v1/admin/users/"+strconv.FormatUint(id, 10), nil, nil)
	return err
}

func (c *Client) GetMarkets(ctx context.Context) ([]Market, error) {
	raw, err := c.gw.Do(ctx, "GET", "/v1/markets", nil, nil)
	if err != nil {
		return nil, err
	}
	var markets []Market
	if err := json.Unmarshal(raw, &markets); err != nil {
		return nil, fmt.Errorf("decode markets: %w", err)
	}
	return markets, nil
}

// GetTicker fetches a quote. Values are exposed exactly as the service sent
// them; absent fields stay nil rather than collapsing to zero.
func (c *Client) GetTicker(ctx context.Context, symbol string) (Ticker, error) {
	ticker := Ticker{Symbol: symbol}
	raw, err := c.gw.Do(ctx, "GET", "/v1/ticker/"+pathSymbol(symbol), nil, nil)
	if err != nil {
		return ticker, err
	}

	if v := gjson.GetBytes(raw, "symbol"); v.Exists() {
		ticker.Symbol = v.Str
	}
	ticker.Timestamp = gjson.GetBytes(raw, "timestamp").Int()
	ticker.Last = optFloat(raw, "last")
	ticker.Bid = optFloat(raw, "bid")
	ticker.Ask = optFloat(raw, "ask")
	ticker.High = optFloat(raw, "high")
	ticker.Low = optFloat(raw, "low")
	ticker.BaseVolume = optFloat(raw, "baseVolume")
	ticker.QuoteVolume = optFloat(raw, "quoteVolume")
	return ticker, nil
}

func (c *Client) GetOrders(ctx context.Context, opts OrderListOptions) ([]Order, error) {
	query := url.Values{}
	if opts.Symbol != "" {
		query.Set("symbol", opts.Symbol)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Side != "" {
		query.Set("side", opts.Side)
	}
	if opts.Type != "" {
		query.Set("type", opts.Type)
	}

	raw, err := c.gw.Do(ctx, "GET", "/v1/orders", query, nil)
	if err != nil {
		return nil, err
	}
	var orders []Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id uint64) (Order, error) {
	var order Order
	raw, err := c.gw.Do(ctx, "GET", "/v1/order/"+strconv.FormatUint(id, 10), nil, nil)
	if err != nil {
		return order, err
	}
	if err := json.Unmarshal(raw, &order); err != nil {
		return order, fmt.Errorf("decode order: %w", err)
	}
	return order, nil
}

func (c *Client) CancelOrder(ctx context.Context, id uint64) error {
	_, err := c.gw.Do(ctx, "DELETE", "/v1/order/"+strconv.FormatUint(id, 10), nil, nil)
	return err
}

func (c *Client) GetTrades(ctx context.Context, symbol string) ([]Trade, error) {
	raw, err := c.gw.Do(ctx, "GET", "/v1/trades/"+pathSymbol(symbol), nil, nil)
	if err != nil {
		return nil, err
	}
	var trades []Trade
	if err := json.Unmarshal(raw, &trades); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	return trades, nil
}

func (c *Client) GetMyTrades(ctx context.Context) ([]Trade, error) {
	raw, err := c.gw.Do(ctx, "GET", "/v1/myTrades", nil, nil)
	if err != nil {
		return nil, err
	}
	var trades []Trade
	if err := json.Unmarshal(raw, &trades); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	return trades, nil
}

// GetBalance returns the caller's own balances, keyed by asset.
func (c *Client) GetBalance(ctx context.Context) (map[string]AssetBalance, error) {
	raw, err := c.gw.Do(ctx, "GET", "/v1/balance", nil, nil)
	if err != nil {
		return nil, err
	}
	balances := map[string]AssetBalance{}
	if err := json.Unmarshal(raw, &balances); err != nil {
		return nil, fmt.Errorf("decode balances: %w", err)
	}
	return balances, nil
}

func (c *Client) GetUserBalances(ctx context.Context, userID uint64) ([]UserBalance, error) {
	raw, err := c.gw.Do(ctx, "GET", "/v1/admin/users/"+strconv.FormatUint(userID, 10)+"/balances", nil, nil)
	if err != nil {
		return nil, err
	}
	var balances []UserBalance
	if err := json.Unmarshal(raw, &balances); err != nil {
		return nil, fmt.Errorf("decode balances: %w", err)
	}
	return balances, nil
}

func (c *Client) GetAllBalances(ctx context.Context, page, limit int) (BalancePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var result BalancePage
	raw, err := c.gw.Do(ctx, "GET", "/v1/admin/balances", query, nil)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("decode balance page: %w", err)
	}
	return result, nil
}

// AdjustBalance validates the request locally, then posts it. A validation
// failure never reaches the remote service.
func (c *Client) AdjustBalance(ctx context.Context, userID uint64, req AdjustRequest) (AdjustResult, error) {
	var result AdjustResult
	if err := req.Validate(); err != nil {
		return result, err
	}

	raw, err := c.gw.Do(ctx, "POST", "/v1/admin/users/"+strconv.FormatUint(userID, 10)+"/balance/adjust", nil, req)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("decode adjust result: %w", err)
	}
	return result, nil
}

// Validate checks an adjustment before it is sent anywhere.
func (r AdjustRequest) Validate() error {
	if r.Asset == "" {
		return errors.New("asset is required")
	}
	if r.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if r.Operation != "add" && r.Operation != "deduct" {
		return errors.New("operation must be 'add' or 'deduct'")
	}
	if strings.TrimSpace(r.Note) == "" {
		return errors.New("note is required for audit")
	}
	return nil
}

// pathSymbol makes a trading pair URL-safe: BTC/USDT -> BTC-USDT.
func pathSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "-")
}

func optFloat(raw []byte, field string) *float64 {
	v := gjson.GetBytes(raw, field)
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	f := v.Float()
	return &f
}
