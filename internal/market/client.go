package market

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"starcg-market-api/internal/metrics"
	"starcg-market-api/internal/model"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every upstream request.
const DefaultTimeout = 30 * time.Second

// Fixed query parameters sent with every search request.
var searchParams = map[string]string{
	"ajax":   "1",
	"type":   "all",
	"server": "all",
	"exact":  "0",
}

// ClientConfig configures the upstream client.
type ClientConfig struct {
	MarketURL      string
	HistoryURL     string
	Timeout        time.Duration
	RequestsPerSec float64 // <= 0 disables throttling
	HTTPClient     *http.Client
}

// Client issues single page requests against the market website.
// It never retries; continuation is the caller's decision.
type Client struct {
	httpClient *http.Client
	marketURL  string
	historyURL string
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *zap.SugaredLogger
	metrics    *metrics.Metrics
}

// NewClient creates an upstream client.
func NewClient(cfg ClientConfig, logger *zap.SugaredLogger, m *metrics.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}

	return &Client{
		httpClient: httpClient,
		marketURL:  cfg.MarketURL,
		historyURL: cfg.HistoryURL,
		timeout:    timeout,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger.Named("market"),
		metrics:    m,
	}
}

// FetchPage requests one page of search results and normalizes it.
func (c *Client) FetchPage(ctx context.Context, search string, page int) (*model.MarketResponse, error) {
	params := url.Values{}
	for k, v := range searchParams {
		params.Set(k, v)
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("search", search)

	body, err := c.getJSON(ctx, "market", c.marketURL, params)
	if err != nil {
		return nil, err
	}

	resp, err := NormalizeMarketResponse(body)
	if err != nil {
		return nil, &InvalidResponseError{URL: c.marketURL, Err: err}
	}

	c.logger.Debugw("Fetched market page", "search", search, "page", page, "stalls", len(resp.Stalls))
	return resp, nil
}

// getJSON performs a GET bounded by the client timeout and returns the raw body.
func (c *Client) getJSON(ctx context.Context, endpoint, baseURL string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestURL := fmt.Sprintf("%s?%s", baseURL, params.Encode())
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = c.classify(reqCtx, baseURL, err)
		c.record(ctx, endpoint, "error")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.record(ctx, endpoint, strconv.Itoa(resp.StatusCode))
		return nil, &UpstreamStatusError{URL: baseURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = c.classify(reqCtx, baseURL, err)
		c.record(ctx, endpoint, "error")
		return nil, err
	}

	c.record(ctx, endpoint, strconv.Itoa(resp.StatusCode))
	return body, nil
}

func (c *Client) classify(reqCtx context.Context, baseURL string, err error) error {
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{URL: baseURL, Timeout: c.timeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{URL: baseURL, Timeout: c.timeout, Err: err}
	}
	return &NetworkError{URL: baseURL, Err: err}
}

func (c *Client) record(ctx context.Context, endpoint, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordUpstreamRequest(ctx, endpoint, outcome)
	}
}
