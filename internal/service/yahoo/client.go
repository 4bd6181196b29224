package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"ETFSheet/internal/domain/models"
	xhttp "ETFSheet/pkg/http"
	"ETFSheet/pkg/logger"
)

// Option configures Client.
type Option func(*Client)

// Client fetches daily close history from the Yahoo Finance chart API.
type Client struct {
	http         *xhttp.Client
	baseURL      string
	userAgent    string
	lookbackDays int
	logger       *logger.Logger
	now          func() time.Time
}

// NewClient creates a Yahoo chart API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:         xhttp.NewClient(),
		baseURL:      "https://query1.finance.yahoo.com/v8/finance/chart",
		userAgent:    "curl/8.5.0",
		lookbackDays: 400,
		logger:       logger.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *xhttp.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithBaseURL sets the chart API base URL.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = base
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLookbackDays sets the calendar-day history window.
func WithLookbackDays(days int) Option {
	return func(c *Client) {
		if days > 0 {
			c.lookbackDays = days
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// chartResponse mirrors the Yahoo v8 chart payload. Close values are
// nullable: sessions with no trade come back as null.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyCloses fetches the daily close series for one ticker covering
// the configured lookback window, sorted ascending by time with null
// sessions dropped.
func (c *Client) DailyCloses(ctx context.Context, ticker string) (models.PriceSeries, error) {
	now := c.now()
	period1 := now.AddDate(0, 0, -c.lookbackDays)

	var chart chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(ticker)),
		Headers: map[string]string{
			"User-Agent": c.userAgent,
		},
		QueryParams: map[string][]string{
			"interval": {"1d"},
			"period1":  {strconv.FormatInt(period1.Unix(), 10)},
			"period2":  {strconv.FormatInt(now.Unix(), 10)},
			"events":   {"history"},
		},
	}, &chart)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w", ticker, err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error for %s: %s", ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data for %s", ticker)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no quote data for %s", ticker)
	}
	closes := result.Indicators.Quote[0].Close

	series := make(models.PriceSeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		series = append(series, models.PricePoint{
			Time:  time.Unix(ts, 0),
			Close: *closes[i],
		})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })

	if len(series) == 0 {
		return nil, fmt.Errorf("yahoo: only null sessions for %s", ticker)
	}

	c.logger.Debug("fetched daily closes",
		logger.String("ticker", ticker),
		logger.Int("observations", len(series)),
	)
	return series, nil
}
