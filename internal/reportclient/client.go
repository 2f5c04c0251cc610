package reportclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"trading-etl-go/internal/config"
	"trading-etl-go/internal/models"
	"trading-etl-go/internal/report"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxAttempts bounds how often one call is sent, including the first try.
const maxAttempts = 3

// ClientInterface defines the reporting API operations used by the CLI.
type ClientInterface interface {
	GetSummary(ctx context.Context, limit int) ([]models.StockSummary, error)
	GetHighValueTrades(ctx context.Context) ([]models.HighValueTrade, error)
	GetTransactionCounts(ctx context.Context) ([]report.TransactionCount, error)
}

var _ ClientInterface = (*Client)(nil)

// Client is a rate-limited client for the reporting API served by cmd/ui.
// Throttled (429) and server-side (5xx) responses are retried with backoff.
type Client struct {
	client *resty.Client
	logger *zap.Logger
}

// NewClient creates a client for the API at cfg.BaseURL.
func NewClient(cfg *config.Report, logger *zap.Logger) *Client {
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)
	return newClient(cfg.BaseURL, limiter, time.Second, logger)
}

func newClient(baseURL string, limiter *rate.Limiter, backoff time.Duration, logger *zap.Logger) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetRetryCount(maxAttempts-1).
		SetRetryWaitTime(backoff).
		SetRetryMaxWaitTime(8 * backoff).
		AddRetryCondition(shouldRetry).
		SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
			return retryAfter(resp, backoff), nil
		}).
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if err := limiter.Wait(req.Context()); err != nil {
				return fmt.Errorf("rate limiter wait failed: %w", err)
			}
			logger.Debug("Executing request", zap.String("method", req.Method), zap.String("url", req.URL))
			return nil
		}).
		AddRetryHook(func(resp *resty.Response, err error) {
			status := 0
			if resp != nil {
				status = resp.StatusCode()
			}
			logger.Warn("Request failed, retrying", zap.Int("status", status), zap.Error(err))
		})

	return &Client{client: rc, logger: logger}
}

// shouldRetry accepts transport errors, throttling and server errors.
func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// retryAfter honours a Retry-After header given in seconds, scaled by unit.
// Zero lets resty fall back to its jittered backoff.
func retryAfter(resp *resty.Response, unit time.Duration) time.Duration {
	if resp == nil {
		return 0
	}
	seconds, err := strconv.Atoi(resp.Header().Get("Retry-After"))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * unit
}

// GetSummary fetches total value per symbol. A negative limit returns every symbol.
func (c *Client) GetSummary(ctx context.Context, limit int) ([]models.StockSummary, error) {
	var summary []models.StockSummary
	req := c.client.R().
		SetResult(&summary).
		SetQueryParam("limit", strconv.Itoa(limit))

	if err := c.get(ctx, "/api/summary", req); err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return summary, nil
}

// GetHighValueTrades fetches the high-value trade set.
func (c *Client) GetHighValueTrades(ctx context.Context) ([]models.HighValueTrade, error) {
	var trades []models.HighValueTrade
	if err := c.get(ctx, "/api/high-value", c.client.R().SetResult(&trades)); err != nil {
		return nil, fmt.Errorf("failed to get high value trades: %w", err)
	}
	return trades, nil
}

// GetTransactionCounts fetches the BUY/SELL split.
func (c *Client) GetTransactionCounts(ctx context.Context) ([]report.TransactionCount, error) {
	var counts []report.TransactionCount
	if err := c.get(ctx, "/api/transactions", c.client.R().SetResult(&counts)); err != nil {
		return nil, fmt.Errorf("failed to get transaction counts: %w", err)
	}
	return counts, nil
}

func (c *Client) get(ctx context.Context, path string, req *resty.Request) error {
	resp, err := req.SetContext(ctx).Get(path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
	}
	return nil
}
