package market

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/lootlens/platform/internal/errx"
)

// topOrderCount bounds how many of the cheapest live sell orders feed the
// quote statistics.
const topOrderCount = 5

// Service ties the catalog, the price cache, and the API client together.
// Lookups come from the cache when fresh; a background loop keeps the
// stalest entries moving.
type Service struct {
	client  *Client
	store   *Store
	index   *Index
	refresh time.Duration
	maxAge  time.Duration
}

// NewService wires a client and store. Call LoadCatalog before Resolve.
func NewService(client *Client, store *Store, refresh, maxAge time.Duration) *Service {
	return &Service{
		client:  client,
		store:   store,
		refresh: refresh,
		maxAge:  maxAge,
	}
}

// LoadCatalog fetches the tradable-item list and builds the name index.
func (s *Service) LoadCatalog(ctx context.Context) error {
	items, err := s.client.ListItems(ctx)
	if err != nil {
		return err
	}
	s.index = NewIndex(items)
	slog.Info("market catalog loaded", "items", s.index.Len())
	return nil
}

// Resolve maps a recognized item name to a price. Names missing from the
// catalog are cached as unknown so they are not re-queried every cycle.
func (s *Service) Resolve(ctx context.Context, recognized string) (Price, error) {
	if s.index == nil {
		return Price{}, errx.New(errx.KindMarketUnavailable, "catalog not loaded")
	}
	ref, ok := s.index.Match(recognized)
	if !ok {
		if p, cached := s.store.Get(recognized); cached {
			return p, nil
		}
		s.store.InsertUnknown(recognized)
		p, _ := s.store.Get(recognized)
		return p, nil
	}

	if p, fresh := s.store.GetFresh(ref.ItemName, s.maxAge); fresh {
		return p, nil
	}
	return s.fetch(ctx, ref)
}

// fetch pulls the order book and ducat value for one item and caches the
// resulting quote.
func (s *Service) fetch(ctx context.Context, ref ItemRef) (Price, error) {
	orders, err := s.client.Orders(ctx, ref.URLName)
	if err != nil {
		// A stale quote beats no quote when the API is down.
		if p, cached := s.store.Get(ref.ItemName); cached {
			slog.Warn("serving stale quote", "item", ref.ItemName, "error", err)
			return p, nil
		}
		return Price{}, err
	}
	ducats, err := s.client.ItemDucats(ctx, ref.URLName)
	if err != nil {
		slog.Debug("ducat lookup failed", "item", ref.ItemName, "error", err)
		ducats = 0
	}

	p := quoteFromOrders(ref, orders, ducats)
	s.store.Put(p)
	return p, nil
}

// quoteFromOrders reduces an order book to min/avg/max over the cheapest
// live sell orders.
func quoteFromOrders(ref ItemRef, orders []Order, ducats int) Price {
	var sells []float64
	for _, o := range orders {
		if o.OrderType != "sell" || !o.Visible || o.User.Status != "ingame" {
			continue
		}
		sells = append(sells, o.Platinum)
	}
	sort.Float64s(sells)
	if len(sells) > topOrderCount {
		sells = sells[:topOrderCount]
	}

	p := Price{Name: ref.ItemName, URLName: ref.URLName, Ducats: ducats, Known: true}
	if len(sells) == 0 {
		return p
	}
	p.MinPlatinum = sells[0]
	p.MaxPlatinum = sells[len(sells)-1]
	var sum float64
	for _, v := range sells {
		sum += v
	}
	p.AvgPlatinum = sum / float64(len(sells))
	return p
}

// Run keeps the cache warm: every refresh interval the stalest entry is
// re-fetched, and the cache is flushed to disk. Blocks until ctx ends.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.store.Save(); err != nil {
				slog.Error("price cache save failed", "error", err)
			}
			return
		case <-ticker.C:
			s.refreshOldest(ctx)
		}
	}
}

func (s *Service) refreshOldest(ctx context.Context) {
	oldest, ok := s.store.Oldest()
	if !ok || time.Since(oldest.UpdatedAt) < s.maxAge/2 {
		return
	}
	if s.index == nil {
		return
	}
	ref, ok := s.index.Match(oldest.Name)
	if !ok {
		return
	}
	if _, err := s.fetch(ctx, ref); err != nil {
		slog.Warn("background refresh failed", "item", oldest.Name, "error", err)
		return
	}
	if err := s.store.Save(); err != nil {
		slog.Error("price cache save failed", "error", err)
	}
}
