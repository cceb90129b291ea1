// Package coinbase implements the exchange collaborators against the
// Coinbase Advanced Trade REST API.
package coinbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"swingbot/internal/market"
)

const defaultBaseURL = "https://api.coinbase.com"

// Client talks to the brokerage v3 endpoints. With empty credentials only
// public endpoints work, which is enough for dry-run operation.
type Client struct {
	baseURL   string
	http      *http.Client
	keyName   string
	keySecret string
	log       zerolog.Logger
	now       func() time.Time
}

// Option configures Client construction.
type Option func(*Client)

// WithBaseURL points the client at a different API host (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient builds a client. keyName/keySecret are the CDP API key name
// and its EC private key PEM.
func NewClient(keyName, keySecret string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: 10 * time.Second},
		keyName:   keyName,
		keySecret: keySecret,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type productsResponse struct {
	Products []productPayload `json:"products"`
}

type productPayload struct {
	ProductID       string `json:"product_id"`
	Price           string `json:"price"`
	BaseIncrement   string `json:"base_increment"`
	TradingDisabled bool   `json:"trading_disabled"`
	IsDisabled      bool   `json:"is_disabled"`
}

// ListProducts returns every product the exchange reports, with its
// tradable flag resolved.
func (c *Client) ListProducts(ctx context.Context) ([]market.Product, error) {
	var resp productsResponse
	if err := c.get(ctx, "/api/v3/brokerage/products", nil, &resp); err != nil {
		return nil, fmt.Errorf("%w: list products: %v", market.ErrDataUnavailable, err)
	}

	products := make([]market.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		price, _ := strconv.ParseFloat(p.Price, 64)
		increment, _ := strconv.ParseFloat(p.BaseIncrement, 64)
		products = append(products, market.Product{
			ID:            p.ProductID,
			Price:         price,
			BaseIncrement: increment,
			Tradable:      !p.TradingDisabled && !p.IsDisabled,
		})
	}
	return products, nil
}

type candlesResponse struct {
	Candles []candlePayload `json:"candles"`
}

type candlePayload struct {
	Start  string `json:"start"`
	Low    string `json:"low"`
	High   string `json:"high"`
	Open   string `json:"open"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
}

// Candles fetches up to limit periods of history, returned oldest-first
// regardless of the API's ordering.
func (c *Client) Candles(ctx context.Context, productID string, granularity time.Duration, limit int) ([]market.Candle, error) {
	end := c.now()
	start := end.Add(-time.Duration(limit) * granularity)
	query := url.Values{
		"start":       {strconv.FormatInt(start.Unix(), 10)},
		"end":         {strconv.FormatInt(end.Unix(), 10)},
		"granularity": {granularityName(granularity)},
	}

	var resp candlesResponse
	path := "/api/v3/brokerage/products/" + url.PathEscape(productID) + "/candles"
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, fmt.Errorf("%w: candles %s: %v", market.ErrDataUnavailable, productID, err)
	}
	if len(resp.Candles) == 0 {
		return nil, fmt.Errorf("%w: candles %s: empty response", market.ErrDataUnavailable, productID)
	}

	candles := make([]market.Candle, 0, len(resp.Candles))
	for _, raw := range resp.Candles {
		ts, err := strconv.ParseInt(raw.Start, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: candles %s: bad timestamp %q", market.ErrDataUnavailable, productID, raw.Start)
		}
		open, _ := strconv.ParseFloat(raw.Open, 64)
		high, _ := strconv.ParseFloat(raw.High, 64)
		low, _ := strconv.ParseFloat(raw.Low, 64)
		cls, _ := strconv.ParseFloat(raw.Close, 64)
		volume, _ := strconv.ParseFloat(raw.Volume, 64)
		candles = append(candles, market.Candle{
			Ts:     time.Unix(ts, 0).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  cls,
			Volume: volume,
		})
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Ts.Before(candles[j].Ts) })
	return candles, nil
}

type orderRequest struct {
	ClientOrderID      string             `json:"client_order_id"`
	ProductID          string             `json:"product_id"`
	Side               string             `json:"side"`
	OrderConfiguration orderConfiguration `json:"order_configuration"`
}

type orderConfiguration struct {
	LimitGTC limitGTC `json:"limit_limit_gtc"`
}

type limitGTC struct {
	BaseSize   string `json:"base_size"`
	LimitPrice string `json:"limit_price"`
	PostOnly   bool   `json:"post_only"`
}

type orderResponse struct {
	Success         bool `json:"success"`
	SuccessResponse struct {
		OrderID string `json:"order_id"`
	} `json:"success_response"`
	ErrorResponse struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	} `json:"error_response"`
}

// PlaceLimitOrder submits a good-til-canceled limit order and returns the
// exchange order id. Exchange refusals surface as market.ErrOrderRejected.
func (c *Client) PlaceLimitOrder(ctx context.Context, productID string, side market.Side, size, limitPrice float64) (string, error) {
	req := orderRequest{
		ClientOrderID: uuid.NewString(),
		ProductID:     productID,
		Side:          string(side),
		OrderConfiguration: orderConfiguration{
			LimitGTC: limitGTC{
				BaseSize:   strconv.FormatFloat(size, 'f', -1, 64),
				LimitPrice: strconv.FormatFloat(limitPrice, 'f', -1, 64),
				PostOnly:   false,
			},
		},
	}

	var resp orderResponse
	if err := c.post(ctx, "/api/v3/brokerage/orders", req, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", market.ErrOrderRejected, err)
	}
	if !resp.Success {
		return "", fmt.Errorf("%w: %s %s", market.ErrOrderRejected, resp.ErrorResponse.Error, resp.ErrorResponse.Message)
	}
	return resp.SuccessResponse.OrderID, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	if c.keyName != "" && c.keySecret != "" {
		token, err := c.buildJWT(req.Method, path)
		if err != nil {
			return fmt.Errorf("sign request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d from %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func granularityName(granularity time.Duration) string {
	switch granularity {
	case time.Minute:
		return "ONE_MINUTE"
	case 5 * time.Minute:
		return "FIVE_MINUTE"
	case 15 * time.Minute:
		return "FIFTEEN_MINUTE"
	case 30 * time.Minute:
		return "THIRTY_MINUTE"
	case 2 * time.Hour:
		return "TWO_HOUR"
	case 6 * time.Hour:
		return "SIX_HOUR"
	case 24 * time.Hour:
		return "ONE_DAY"
	default:
		return "ONE_HOUR"
	}
}
