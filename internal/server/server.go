// Package server exposes the overlay over HTTP and WebSocket: clients
// subscribe to detection events on /ws and send trigger requests back.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/lootlens/platform/internal/geom"
	"github.com/lootlens/platform/internal/ocr"
	"github.com/lootlens/platform/internal/orchestrator"
)

// Inbound rate limit per connection.
const (
	RateLimitMessages = 10
	RateLimitWindow   = time.Second
)

// Pipeline is the orchestrator surface the server needs.
type Pipeline interface {
	Trigger() bool
	Events() <-chan orchestrator.Event
	LatestItems() []ocr.Item
}

// Message types.
type Message struct {
	Type string `json:"type"`
}

type Box struct {
	MinX float32 `json:"min_x"`
	MinY float32 `json:"min_y"`
	MaxX float32 `json:"max_x"`
	MaxY float32 `json:"max_y"`
}

func box(b geom.AABB) Box {
	return Box{MinX: b.Min.X, MinY: b.Min.Y, MaxX: b.Max.X, MaxY: b.Max.Y}
}

type ItemPayload struct {
	Name   string `json:"name"`
	Bounds Box    `json:"bounds"`
}

type ItemsMessage struct {
	Type      string        `json:"type"`
	CycleID   string        `json:"cycle_id"`
	Region    Box           `json:"region"`
	Items     []ItemPayload `json:"items"`
	ElapsedMS int64         `json:"elapsed_ms"`
}

type PriceMessage struct {
	Type        string  `json:"type"`
	CycleID     string  `json:"cycle_id"`
	Item        string  `json:"item"`
	Known       bool    `json:"known"`
	AvgPlatinum float64 `json:"avg_platinum"`
	MinPlatinum float64 `json:"min_platinum"`
	MaxPlatinum float64 `json:"max_platinum"`
	Ducats      int     `json:"ducats"`
}

type StatusMessage struct {
	Type   string `json:"type"`
	State  string `json:"state"`
	Detail string `json:"detail,omitempty"`
}

type AckMessage struct {
	Type     string `json:"type"`
	Accepted bool   `json:"accepted"`
}

type RateLimitedMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// rateLimiter tracks message timestamps using a sliding window.
type rateLimiter struct {
	timestamps []time.Time
	mu         sync.Mutex
}

func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitWindow)

	valid := r.timestamps[:0]
	for _, t := range r.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.timestamps = valid

	if len(r.timestamps) >= RateLimitMessages {
		return false
	}

	r.timestamps = append(r.timestamps, now)
	return true
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	pipe       Pipeline
	mu         sync.RWMutex
	conns      map[*websocket.Conn]struct{}
	rateLimits map[*websocket.Conn]*rateLimiter
}

// New creates a server and starts the event broadcaster.
func New(pipe Pipeline) *Server {
	s := &Server{
		pipe:       pipe,
		conns:      make(map[*websocket.Conn]struct{}),
		rateLimits: make(map[*websocket.Conn]*rateLimiter),
	}
	go s.broadcastEvents()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/items", s.handleItems)
	mux.HandleFunc("POST /api/trigger", s.handleTrigger)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.rateLimits[conn] = &rateLimiter{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		delete(s.rateLimits, conn)
		s.mu.Unlock()
	}()

	ctx := r.Context()
	slog.Info("websocket connected", "remote", r.RemoteAddr)

	for {
		var msg json.RawMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			slog.Debug("websocket read error", "error", err)
			return
		}

		s.mu.RLock()
		rl := s.rateLimits[conn]
		s.mu.RUnlock()

		if !rl.allow() {
			slog.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			_ = wsjson.Write(ctx, conn, RateLimitedMessage{
				Type:    "error",
				Message: "rate limit exceeded",
			})
			continue
		}

		var base Message
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}

		switch base.Type {
		case "trigger":
			accepted := s.pipe.Trigger()
			_ = wsjson.Write(ctx, conn, AckMessage{Type: "trigger_ack", Accepted: accepted})
		}
	}
}

// broadcastEvents translates pipeline events to wire messages and fans
// them out to every connection.
func (s *Server) broadcastEvents() {
	for ev := range s.pipe.Events() {
		msg, ok := translate(ev)
		if !ok {
			continue
		}

		s.mu.RLock()
		for conn := range s.conns {
			go func(c *websocket.Conn, m any) {
				_ = wsjson.Write(context.Background(), c, m)
			}(conn, msg)
		}
		s.mu.RUnlock()
	}
}

func translate(ev orchestrator.Event) (any, bool) {
	switch {
	case ev.Items != nil:
		items := make([]ItemPayload, 0, len(ev.Items.Items))
		for _, it := range ev.Items.Items {
			items = append(items, ItemPayload{Name: it.Name, Bounds: box(it.Bounds)})
		}
		return ItemsMessage{
			Type:      "items",
			CycleID:   ev.Items.CycleID,
			Region:    box(ev.Items.Region),
			Items:     items,
			ElapsedMS: ev.Items.Elapsed.Milliseconds(),
		}, true
	case ev.Price != nil:
		return PriceMessage{
			Type:        "price",
			CycleID:     ev.Price.CycleID,
			Item:        ev.Price.Item,
			Known:       ev.Price.Price.Known,
			AvgPlatinum: ev.Price.Price.AvgPlatinum,
			MinPlatinum: ev.Price.Price.MinPlatinum,
			MaxPlatinum: ev.Price.Price.MaxPlatinum,
			Ducats:      ev.Price.Price.Ducats,
		}, true
	case ev.Status != nil:
		return StatusMessage{Type: "status", State: ev.Status.State, Detail: ev.Status.Detail}, true
	default:
		return nil, false
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	items := s.pipe.LatestItems()
	payload := make([]ItemPayload, 0, len(items))
	for _, it := range items {
		payload = append(payload, ItemPayload{Name: it.Name, Bounds: box(it.Bounds)})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	accepted := s.pipe.Trigger()
	json.NewEncoder(w).Encode(map[string]bool{"accepted": accepted})
}
