package alpaca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"helios/internal/adapters/broker"
	"helios/internal/metrics"
)

const (
	liveBaseURL  = "https://api.alpaca.markets"
	paperBaseURL = "https://paper-api.alpaca.markets"
	dataBaseURL  = "https://data.alpaca.markets"

	defaultHTTPTimeout = 10 * time.Second

	brokerName = "alpaca"
)

// Config configures the Alpaca client.
type Config struct {
	APIKey    string
	SecretKey string
	Paper     bool

	HTTPClient        *http.Client
	RequestsPerMinute int

	// BaseURL and DataBaseURL override the Alpaca endpoints. Used in tests.
	BaseURL     string
	DataBaseURL string
}

// NewClient creates a new Alpaca adapter.
func NewClient(cfg Config) (broker.Broker, error) {
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("alpaca: api key and secret key are required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 200
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}

	baseURL := liveBaseURL
	if cfg.Paper {
		baseURL = paperBaseURL
	}
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	dataURL := dataBaseURL
	if cfg.DataBaseURL != "" {
		dataURL = cfg.DataBaseURL
	}

	return &client{
		cfg:        cfg,
		baseURL:    baseURL,
		dataURL:    dataURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
	}, nil
}

type client struct {
	cfg        Config
	baseURL    string
	dataURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func (c *client) Name() string {
	return brokerName
}

func (c *client) GetAccount(ctx context.Context) (*broker.Account, error) {
	var res struct {
		ID               string `json:"id"`
		Cash             string `json:"cash"`
		BuyingPower      string `json:"buying_power"`
		Equity           string `json:"equity"`
		PortfolioValue   string `json:"portfolio_value"`
		Currency         string `json:"currency"`
		PatternDayTrader bool   `json:"pattern_day_trader"`
		TradingBlocked   bool   `json:"trading_blocked"`
		AccountBlocked   bool   `json:"account_blocked"`
		CreatedAt        string `json:"created_at"`
	}
	if err := c.get(ctx, c.baseURL, "/v2/account", nil, &res); err != nil {
		return nil, err
	}

	return &broker.Account{
		ID:               res.ID,
		Cash:             parseDecimal(res.Cash),
		BuyingPower:      parseDecimal(res.BuyingPower),
		Equity:           parseDecimal(res.Equity),
		PortfolioValue:   parseDecimal(res.PortfolioValue),
		Currency:         res.Currency,
		PatternDayTrader: res.PatternDayTrader,
		TradingBlocked:   res.TradingBlocked,
		AccountBlocked:   res.AccountBlocked,
		CreatedAt:        parseTime(res.CreatedAt),
	}, nil
}

func (c *client) GetPositions(ctx context.Context) ([]broker.Position, error) {
	var res []struct {
		Symbol         string `json:"symbol"`
		Qty            string `json:"qty"`
		Side           string `json:"side"`
		MarketValue    string `json:"market_value"`
		AvgEntryPrice  string `json:"avg_entry_price"`
		CurrentPrice   string `json:"current_price"`
		UnrealizedPL   string `json:"unrealized_pl"`
		UnrealizedPLPC string `json:"unrealized_plpc"`
		CostBasis      string `json:"cost_basis"`
	}
	if err := c.get(ctx, c.baseURL, "/v2/positions", nil, &res); err != nil {
		return nil, err
	}

	positions := make([]broker.Position, 0, len(res))
	for _, p := range res {
		positions = append(positions, broker.Position{
			Symbol:         p.Symbol,
			Qty:            parseDecimal(p.Qty),
			Side:           p.Side,
			MarketValue:    parseDecimal(p.MarketValue),
			AvgEntryPrice:  parseDecimal(p.AvgEntryPrice),
			CurrentPrice:   parseDecimal(p.CurrentPrice),
			UnrealizedPL:   parseDecimal(p.UnrealizedPL),
			UnrealizedPLPC: parseDecimal(p.UnrealizedPLPC),
			CostBasis:      parseDecimal(p.CostBasis),
		})
	}

	return positions, nil
}

func (c *client) GetPortfolioHistory(ctx context.Context, period, timeframe string) (*broker.PortfolioHistory, error) {
	payload := url.Values{}
	if period != "" {
		payload.Set("period", period)
	}
	if timeframe != "" {
		payload.Set("timeframe", timeframe)
	}

	var res struct {
		Timestamp     []int64   `json:"timestamp"`
		Equity        []float64 `json:"equity"`
		ProfitLoss    []float64 `json:"profit_loss"`
		ProfitLossPct []float64 `json:"profit_loss_pct"`
		BaseValue     float64   `json:"base_value"`
		Timeframe     string    `json:"timeframe"`
	}
	if err := c.get(ctx, c.baseURL, "/v2/account/portfolio/history", payload, &res); err != nil {
		return nil, err
	}

	history := &broker.PortfolioHistory{
		BaseValue: decimal.NewFromFloat(res.BaseValue),
		Timeframe: res.Timeframe,
	}
	for _, ts := range res.Timestamp {
		history.Timestamps = append(history.Timestamps, time.Unix(ts, 0).UTC())
	}
	for _, v := range res.Equity {
		history.Equity = append(history.Equity, decimal.NewFromFloat(v))
	}
	for _, v := range res.ProfitLoss {
		history.ProfitLoss = append(history.ProfitLoss, decimal.NewFromFloat(v))
	}
	for _, v := range res.ProfitLossPct {
		history.ProfitLossPct = append(history.ProfitLossPct, decimal.NewFromFloat(v))
	}

	return history, nil
}

func (c *client) PlaceOrder(ctx context.Context, req *broker.OrderRequest) (*broker.Order, error) {
	if req == nil || req.Symbol == "" || req.Qty.IsZero() {
		return nil, broker.NewAPIError(broker.CategoryUnknown, "order request requires symbol and qty", nil)
	}

	tif := req.TimeInForce
	if tif == "" {
		tif = "day"
	}

	body := map[string]interface{}{
		"symbol":        req.Symbol,
		"qty":           req.Qty.String(),
		"side":          string(req.Side),
		"type":          string(req.Type),
		"time_in_force": tif,
	}
	if req.Type == broker.OrderTypeLimit {
		body["limit_price"] = req.LimitPrice.String()
	}

	var res orderResponse
	if err := c.post(ctx, "/v2/orders", body, &res); err != nil {
		return nil, err
	}

	return res.toOrder(), nil
}

func (c *client) GetOrders(ctx context.Context, status broker.OrderStatusFilter, limit int) ([]broker.Order, error) {
	if status == "" {
		status = broker.OrdersOpen
	}
	if limit <= 0 {
		limit = 50
	}

	payload := url.Values{
		"status": []string{string(status)},
		"limit":  []string{fmt.Sprintf("%d", limit)},
	}

	var res []orderResponse
	if err := c.get(ctx, c.baseURL, "/v2/orders", payload, &res); err != nil {
		return nil, err
	}

	orders := make([]broker.Order, 0, len(res))
	for _, o := range res {
		orders = append(orders, *o.toOrder())
	}

	return orders, nil
}

func (c *client) CancelOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return broker.NewAPIError(broker.CategoryUnknown, "order id is required", nil)
	}
	return c.do(ctx, http.MethodDelete, c.baseURL, "/v2/orders/"+orderID, nil, nil, nil)
}

func (c *client) GetBars(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]broker.Bar, error) {
	if timeframe == "" {
		timeframe = "1Day"
	}

	payload := url.Values{
		"timeframe": []string{timeframe},
		"start":     []string{start.Format(time.RFC3339)},
		"end":       []string{end.Format(time.RFC3339)},
	}

	var res struct {
		Bars []struct {
			Timestamp time.Time `json:"t"`
			Open      float64   `json:"o"`
			High      float64   `json:"h"`
			Low       float64   `json:"l"`
			Close     float64   `json:"c"`
			Volume    int64     `json:"v"`
		} `json:"bars"`
	}
	if err := c.get(ctx, c.dataURL, "/v2/stocks/"+symbol+"/bars", payload, &res); err != nil {
		return nil, err
	}

	bars := make([]broker.Bar, 0, len(res.Bars))
	for _, b := range res.Bars {
		bars = append(bars, broker.Bar{
			Timestamp: b.Timestamp,
			Open:      decimal.NewFromFloat(b.Open),
			High:      decimal.NewFromFloat(b.High),
			Low:       decimal.NewFromFloat(b.Low),
			Close:     decimal.NewFromFloat(b.Close),
			Volume:    b.Volume,
		})
	}

	return bars, nil
}

func (c *client) GetLatestQuote(ctx context.Context, symbol string) (*broker.Quote, error) {
	var res struct {
		Symbol string `json:"symbol"`
		Quote  struct {
			AskPrice  float64   `json:"ap"`
			AskSize   int64     `json:"as"`
			BidPrice  float64   `json:"bp"`
			BidSize   int64     `json:"bs"`
			Timestamp time.Time `json:"t"`
		} `json:"quote"`
	}
	if err := c.get(ctx, c.dataURL, "/v2/stocks/"+symbol+"/quotes/latest", nil, &res); err != nil {
		return nil, err
	}

	return &broker.Quote{
		Symbol:    symbol,
		AskPrice:  decimal.NewFromFloat(res.Quote.AskPrice),
		AskSize:   res.Quote.AskSize,
		BidPrice:  decimal.NewFromFloat(res.Quote.BidPrice),
		BidSize:   res.Quote.BidSize,
		Timestamp: res.Quote.Timestamp,
	}, nil
}

func (c *client) GetClock(ctx context.Context) (*broker.Clock, error) {
	var res struct {
		Timestamp time.Time `json:"timestamp"`
		IsOpen    bool      `json:"is_open"`
		NextOpen  time.Time `json:"next_open"`
		NextClose time.Time `json:"next_close"`
	}
	if err := c.get(ctx, c.baseURL, "/v2/clock", nil, &res); err != nil {
		return nil, err
	}

	return &broker.Clock{
		Timestamp: res.Timestamp,
		IsOpen:    res.IsOpen,
		NextOpen:  res.NextOpen,
		NextClose: res.NextClose,
	}, nil
}

// orderResponse is the wire shape shared by order placement and listing.
type orderResponse struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	Qty        string `json:"qty"`
	Side       string `json:"side"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	LimitPrice string `json:"limit_price"`
	CreatedAt  string `json:"created_at"`
}

func (o *orderResponse) toOrder() *broker.Order {
	return &broker.Order{
		ID:         o.ID,
		Symbol:     o.Symbol,
		Qty:        parseDecimal(o.Qty),
		Side:       broker.OrderSide(o.Side),
		Type:       broker.OrderType(o.Type),
		Status:     o.Status,
		LimitPrice: parseDecimal(o.LimitPrice),
		CreatedAt:  parseTime(o.CreatedAt),
	}
}

func (c *client) get(ctx context.Context, base, endpoint string, payload url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, base, endpoint, payload, nil, out)
}

func (c *client) post(ctx context.Context, endpoint string, body map[string]interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPost, c.baseURL, endpoint, nil, body, out)
}

func (c *client) do(ctx context.Context, method, base, endpoint string, payload url.Values, body map[string]interface{}, out interface{}) error {
	start := time.Now()
	err := c.doRequest(ctx, method, base, endpoint, payload, body, out)
	metrics.RecordBrokerAPICall(brokerName, endpoint, time.Since(start), err)
	return err
}

func (c *client) doRequest(ctx context.Context, method, base, endpoint string, payload url.Values, body map[string]interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return broker.NewAPIError(broker.CategoryRateLimited, "local rate limiter", err)
	}

	fullURL := base + endpoint
	if len(payload) > 0 {
		fullURL += "?" + payload.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return broker.NewAPIError(broker.CategoryUnknown, "marshal request body", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return broker.NewAPIError(broker.CategoryUnknown, "create request", err)
	}
	req.Header.Set("APCA-API-KEY-ID", c.cfg.APIKey)
	req.Header.Set("APCA-API-SECRET-KEY", c.cfg.SecretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return broker.NewAPIError(broker.CategoryUnknown, "send request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return broker.NewAPIError(broker.CategoryUnknown, "read response", err)
	}

	if resp.StatusCode >= 400 {
		return classifyHTTPError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return broker.NewAPIError(broker.CategoryUnknown, "decode response", err)
		}
	}

	return nil
}

// classifyHTTPError maps Alpaca HTTP failures into the broker error taxonomy.
func classifyHTTPError(status int, body []byte) *broker.APIError {
	message := strings.TrimSpace(string(body))
	var apiMsg struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiMsg); err == nil && apiMsg.Message != "" {
		message = apiMsg.Message
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return broker.NewAPIError(broker.CategoryAuthFailed, message, nil)
	case status == http.StatusTooManyRequests:
		return broker.NewAPIError(broker.CategoryRateLimited, message, nil)
	case status == http.StatusNotFound:
		return broker.NewAPIError(broker.CategoryNotFound, message, nil)
	case status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(message), "market is closed"):
		return broker.NewAPIError(broker.CategoryMarketClosed, message, nil)
	default:
		return broker.NewAPIError(broker.CategoryUnknown, fmt.Sprintf("HTTP %d: %s", status, message), nil)
	}
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
