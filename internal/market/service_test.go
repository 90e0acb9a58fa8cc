package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func marketServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/items", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"payload":{"items":[
			{"id":"1","url_name":"lith_g1_relic","item_name":"Lith G1 Relic"}
		]}}`))
	})
	mux.HandleFunc("/items/lith_g1_relic/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"payload":{"orders":[
			{"order_type":"sell","platinum":20,"quantity":1,"visible":true,"user":{"status":"ingame"}},
			{"order_type":"sell","platinum":10,"quantity":1,"visible":true,"user":{"status":"ingame"}},
			{"order_type":"sell","platinum":15,"quantity":1,"visible":true,"user":{"status":"offline"}},
			{"order_type":"buy","platinum":5,"quantity":1,"visible":true,"user":{"status":"ingame"}}
		]}}`))
	})
	mux.HandleFunc("/items/lith_g1_relic", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"payload":{"item":{"items_in_set":[
			{"url_name":"lith_g1_relic","ducats":0}
		]}}}`))
	})
	return httptest.NewServer(mux)
}

func newTestService(t *testing.T, url string) *Service {
	t.Helper()
	svc := NewService(fastClient(url), NewStore(tempCache(t)), time.Second, time.Hour)
	if err := svc.LoadCatalog(context.Background()); err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	return svc
}

func TestServiceResolveFetchesAndCaches(t *testing.T) {
	srv := marketServer(t)
	defer srv.Close()
	svc := newTestService(t, srv.URL)

	p, err := svc.Resolve(context.Background(), "Lith G1 Relic")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// Offline and buy orders are excluded: sells are [10, 20].
	if p.MinPlatinum != 10 || p.MaxPlatinum != 20 || p.AvgPlatinum != 15 {
		t.Errorf("quote = %+v, want min 10 / avg 15 / max 20", p)
	}
	if !p.Known {
		t.Error("resolved item must be marked known")
	}

	if _, fresh := svc.store.GetFresh("Lith G1 Relic", time.Hour); !fresh {
		t.Error("resolve must cache the quote")
	}
}

func TestServiceResolveUnknownName(t *testing.T) {
	srv := marketServer(t)
	defer srv.Close()
	svc := newTestService(t, srv.URL)

	p, err := svc.Resolve(context.Background(), "zzzz qqqq")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Known {
		t.Error("uncatalogued name must resolve to an unknown marker")
	}
	if _, cached := svc.store.Get("zzzz qqqq"); !cached {
		t.Error("unknown names must be cached to stop re-queries")
	}
}

func TestServiceServesStaleQuoteWhenAPIDown(t *testing.T) {
	srv := marketServer(t)
	svc := newTestService(t, srv.URL)

	if _, err := svc.Resolve(context.Background(), "Lith G1 Relic"); err != nil {
		t.Fatalf("warm-up resolve: %v", err)
	}
	srv.Close()
	svc.maxAge = 0 // force a refetch attempt

	p, err := svc.Resolve(context.Background(), "Lith G1 Relic")
	if err != nil {
		t.Fatalf("Resolve with API down: %v", err)
	}
	if p.MinPlatinum != 10 {
		t.Errorf("stale quote = %+v, want the cached one", p)
	}
}

func TestQuoteFromOrdersTakesCheapestFive(t *testing.T) {
	ref := ItemRef{ItemName: "Neo N9 Relic", URLName: "neo_n9_relic"}
	var orders []Order
	for _, plat := range []float64{50, 10, 30, 20, 40, 60, 70} {
		o := Order{OrderType: "sell", Platinum: plat, Visible: true}
		o.User.Status = "ingame"
		orders = append(orders, o)
	}

	p := quoteFromOrders(ref, orders, 25)
	if p.MinPlatinum != 10 || p.MaxPlatinum != 50 {
		t.Errorf("range = [%v, %v], want [10, 50] over the cheapest five", p.MinPlatinum, p.MaxPlatinum)
	}
	if p.AvgPlatinum != 30 {
		t.Errorf("avg = %v, want 30", p.AvgPlatinum)
	}
	if p.Ducats != 25 {
		t.Errorf("ducats = %v, want 25", p.Ducats)
	}
}

func TestQuoteFromOrdersNoSellOrders(t *testing.T) {
	p := quoteFromOrders(ItemRef{ItemName: "Forma Blueprint"}, nil, 0)
	if !p.Known {
		t.Error("catalogued item stays known even without orders")
	}
	if p.MinPlatinum != 0 || p.AvgPlatinum != 0 {
		t.Errorf("empty book quote = %+v", p)
	}
}
