// # internal/ui/web/hub.go
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"vreport/internal/core/ports"
	"vreport/internal/engine/navigation"
	"vreport/internal/engine/results"
	"vreport/internal/shared/observability"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 16
)

// Command types accepted from websocket clients.
const (
	CommandSelect          = "select"
	CommandNext            = "next"
	CommandPrevious        = "previous"
	CommandToggleComponent = "toggleComponent"
	CommandToggleStory     = "toggleStory"
)

// Command is a client request to move its cursor.
type Command struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Message is pushed to clients: "navigation" carries a navigation.View,
// "error" a string.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Version   int64       `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
}

type command struct {
	client *Client
	cmd    Command
}

// Hub owns every client cursor. All cursor mutations happen on the Run
// goroutine, so clients never share state with each other.
type Hub struct {
	upgrader   websocket.Upgrader
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	commands   chan command
	notify     chan struct{}
	done       chan struct{}

	pendingMu sync.Mutex
	pending   *ports.Snapshot

	records []results.Record
	version int64
}

type Client struct {
	ID        string
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	requested string
	cursor    *navigation.Cursor
}

// NewHub seeds the hub with the current snapshot and subscribes to later ones.
func NewHub(svc ports.ReportService, allowedOrigins []string) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan command),
		notify:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	if svc != nil {
		snap := svc.Snapshot()
		h.records = snap.Report.Results
		h.version = snap.Version
		svc.Subscribe(h.Publish)
	}
	return h
}

// Publish hands a snapshot to Run without blocking. Only the newest pending
// snapshot is kept.
func (h *Hub) Publish(snap ports.Snapshot) {
	h.pendingMu.Lock()
	if h.pending == nil || snap.Version > h.pending.Version {
		h.pending = &snap
	}
	h.pendingMu.Unlock()

	select {
	case h.notify <- struct{}{}:
	default:
	}
}

func (h *Hub) takePending() (ports.Snapshot, bool) {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()
	if h.pending == nil {
		return ports.Snapshot{}, false
	}
	snap := *h.pending
	h.pending = nil
	return snap, true
}

// Run serves hub events until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			h.remove(client)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client] = true
			client.cursor = navigation.NewCursor(h.records, client.requested)
			observability.WebsocketClients.Inc()
			slog.Debug("websocket client connected", "client", client.ID, "clients", len(h.clients))
			h.push(client)

		case client := <-h.unregister:
			if h.clients[client] {
				h.remove(client)
				slog.Debug("websocket client disconnected", "client", client.ID, "clients", len(h.clients))
			}

		case c := <-h.commands:
			if !h.clients[c.client] {
				continue
			}
			if err := apply(c.client.cursor, c.cmd); err != "" {
				h.send(c.client, Message{Type: "error", Data: err, Version: h.version, Timestamp: time.Now().UTC()})
				continue
			}
			h.push(c.client)

		case <-h.notify:
			snap, ok := h.takePending()
			if !ok || snap.Version <= h.version {
				continue
			}
			h.version = snap.Version
			h.records = snap.Report.Results
			for client := range h.clients {
				client.cursor.Replace(h.records)
				h.push(client)
			}
		}
	}
}

func apply(cursor *navigation.Cursor, cmd Command) string {
	switch cmd.Type {
	case CommandSelect:
		cursor.Select(cmd.ID)
	case CommandNext:
		cursor.Next()
	case CommandPrevious:
		cursor.Previous()
	case CommandToggleComponent:
		cursor.ToggleComponent(cmd.Name)
	case CommandToggleStory:
		cursor.ToggleStory(cmd.Name)
	default:
		return "unknown command " + cmd.Type
	}
	return ""
}

func (h *Hub) push(client *Client) {
	h.send(client, Message{
		Type:      "navigation",
		Data:      client.cursor.View(),
		Version:   h.version,
		Timestamp: time.Now().UTC(),
	})
}

func (h *Hub) send(client *Client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to encode websocket message", "client", client.ID, "error", err)
		return
	}
	select {
	case client.send <- data:
	default:
		slog.Warn("websocket client too slow, dropping", "client", client.ID)
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	close(client.send)
	observability.WebsocketClients.Dec()
}

// ServeWS upgrades the request. The initial active id comes from the same
// query parameter as page locations.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		ID:        uuid.NewString(),
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		requested: navigation.FromLocation(c.Request.URL),
	}

	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", "client", c.ID, "error", err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			cmd = Command{Type: "invalid"}
		}
		select {
		case c.hub.commands <- command{client: c, cmd: cmd}:
		case <-c.hub.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// originChecker accepts same-host requests, requests without an Origin, and
// the configured origins.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	allowAll := false
	for _, origin := range allowed {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			allowAll = true
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
