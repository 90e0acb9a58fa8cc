// Package market resolves recognized item names to live trade prices and
// caches them on disk between sessions.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/lootlens/platform/internal/errx"
	"github.com/lootlens/platform/internal/resilience"
	"github.com/lootlens/platform/internal/trace"
)

// ItemRef is one tradable item in the market catalog.
type ItemRef struct {
	ID       string `json:"id"`
	URLName  string `json:"url_name"`
	ItemName string `json:"item_name"`
}

// Order is one listed trade offer.
type Order struct {
	OrderType string  `json:"order_type"`
	Platinum  float64 `json:"platinum"`
	Quantity  int     `json:"quantity"`
	Visible   bool    `json:"visible"`
	User      struct {
		Status string `json:"status"`
	} `json:"user"`
}

// ItemDetail carries the per-item fields we keep beyond the catalog entry.
type ItemDetail struct {
	URLName string `json:"url_name"`
	Ducats  int    `json:"ducats"`
}

// Client talks to the market API under a shared rate limit, retry policy,
// and circuit breaker. The public API allows 3 requests per second; the
// limiter enforces that across all callers.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	retry   resilience.RetryConfig
}

// NewClient creates a client for the API at baseURL, e.g.
// "https://api.warframe.market/v1".
func NewClient(baseURL string, requestsPerSec float64) *Client {
	return &Client{
		base:    baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		breaker: resilience.New(resilience.MarketConfig()),
		retry:   resilience.MarketRetryConfig(),
	}
}

type itemsPayload struct {
	Payload struct {
		Items []ItemRef `json:"items"`
	} `json:"payload"`
}

type ordersPayload struct {
	Payload struct {
		Orders []Order `json:"orders"`
	} `json:"payload"`
}

type itemPayload struct {
	Payload struct {
		Item struct {
			ItemsInSet []ItemDetail `json:"items_in_set"`
		} `json:"item"`
	} `json:"payload"`
}

// ListItems fetches the full tradable-item catalog.
func (c *Client) ListItems(ctx context.Context) ([]ItemRef, error) {
	var out itemsPayload
	if err := c.get(ctx, "/items", &out); err != nil {
		return nil, err
	}
	return out.Payload.Items, nil
}

// Orders fetches the current order book for one item.
func (c *Client) Orders(ctx context.Context, urlName string) ([]Order, error) {
	var out ordersPayload
	if err := c.get(ctx, "/items/"+urlName+"/orders", &out); err != nil {
		return nil, err
	}
	return out.Payload.Orders, nil
}

// ItemDucats fetches the ducat value for one item, 0 when it has none.
func (c *Client) ItemDucats(ctx context.Context, urlName string) (int, error) {
	var out itemPayload
	if err := c.get(ctx, "/items/"+urlName, &out); err != nil {
		return 0, err
	}
	for _, d := range out.Payload.Item.ItemsInSet {
		if d.URLName == urlName {
			return d.Ducats, nil
		}
	}
	return 0, nil
}

// get performs one rate-limited GET with retry and breaker protection,
// decoding the JSON body into v.
func (c *Client) get(ctx context.Context, path string, v any) error {
	span := trace.Start("market_fetch")
	span.Attr("path", path)
	defer span.End()

	return resilience.Retry(ctx, c.retry, func() error {
		return c.breaker.Execute(func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			return c.getOnce(ctx, path, v)
		})
	})
}

func (c *Client) getOnce(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return errx.Wrap(err, errx.KindMarketUnavailable, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Platform", "pc")

	resp, err := c.http.Do(req)
	if err != nil {
		return errx.Wrapf(err, errx.KindMarketUnavailable, "GET %s", path)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return errx.Newf(errx.KindMarketUnavailable, "GET %s: status %d", path, resp.StatusCode)
	default:
		// 4xx other than 429 will not improve on retry.
		return errx.Wrap(fmt.Errorf("status %d", resp.StatusCode), errx.KindMarketDecode, "GET "+path)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errx.Wrapf(err, errx.KindMarketDecode, "decode %s", path)
	}
	return nil
}
