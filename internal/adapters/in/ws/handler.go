// Package ws serves live tracking updates over websockets.
//
// A client joins a tracking number with {"action":"join","trackingNumber":"TRK..."}
// and leaves it with "leave". Every event of a joined shipment arrives as
// {"type":"status_updated"|"location_updated"|"eta_updated"|"agent_assigned", ...}.
// Closing the socket leaves every joined tracking number.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/core/ports"

	"github.com/gorilla/websocket"
)

const (
	DefaultWriteTimeout = 10 * time.Second
	DefaultPongTimeout  = 60 * time.Second

	maxFrameSize = 4 << 10
)

// Hub manages subscriptions of live connections.
type Hub interface {
	Join(conn ports.Connection, number shipment.TrackingNumber) bool
	Leave(conn ports.Connection, number shipment.TrackingNumber)
	DropConnection(conn ports.Connection)
}

type Config struct {
	WriteTimeout time.Duration
	// PongTimeout is how long a silent client is kept; pings go out at half of it.
	PongTimeout time.Duration
	// CheckOrigin defaults to accepting every origin.
	CheckOrigin func(r *http.Request) bool
}

// Handler upgrades requests and runs the subscription protocol.
type Handler struct {
	hub      Hub
	config   Config
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewHandler(hub Hub, config Config, logger *slog.Logger) *Handler {
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultWriteTimeout
	}
	if config.PongTimeout <= 0 {
		config.PongTimeout = DefaultPongTimeout
	}
	checkOrigin := config.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		hub:    hub,
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin:     checkOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With("component", "WebsocketHandler"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already answered with an HTTP error
		h.logger.Debug("upgrade failed", "error", err)
		return
	}

	conn := newConnection(socket, h.config.WriteTimeout)
	h.logger.Debug("client connected", "connection", conn.ID(), "remote", r.RemoteAddr)

	go h.keepAlive(conn)
	h.readLoop(r.Context(), conn)
}

func (h *Handler) readLoop(ctx context.Context, conn *Connection) {
	defer func() {
		h.hub.DropConnection(conn)
		_ = conn.Close()
		h.logger.Debug("client disconnected", "connection", conn.ID())
	}()

	conn.conn.SetReadLimit(maxFrameSize)
	_ = conn.conn.SetReadDeadline(time.Now().Add(h.config.PongTimeout))
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(h.config.PongTimeout))
	})

	for {
		_, data, err := conn.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.conn.SetReadDeadline(time.Now().Add(h.config.PongTimeout))

		reply := h.handleFrame(conn, data)
		if err = conn.write(ctx, reply); err != nil {
			return
		}
	}
}

func (h *Handler) handleFrame(conn *Connection, data []byte) ServerFrame {
	var frame ClientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return ServerFrame{Type: FrameError, Message: "malformed frame"}
	}

	number, err := shipment.ParseTrackingNumber(frame.TrackingNumber)
	if err != nil {
		return ServerFrame{Type: FrameError, Message: err.Error()}
	}

	switch frame.Action {
	case ActionJoin:
		h.hub.Join(conn, number)
		return ServerFrame{Type: FrameJoined, TrackingNumber: number.String()}
	case ActionLeave:
		h.hub.Leave(conn, number)
		return ServerFrame{Type: FrameLeft, TrackingNumber: number.String()}
	default:
		return ServerFrame{Type: FrameError, TrackingNumber: number.String(), Message: "unknown action " + frame.Action}
	}
}

func (h *Handler) keepAlive(conn *Connection) {
	ticker := time.NewTicker(h.config.PongTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-conn.closed:
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}
