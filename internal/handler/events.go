package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/efreitasn/stockserver/internal/events"
	"github.com/gorilla/websocket"
)

const (
	eventWriteWait = 10 * time.Second
	eventPongWait  = 60 * time.Second
	eventPingEvery = eventPongWait * 9 / 10
)

// EventsHandler streams completed transactions over a websocket.
type EventsHandler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(hub *events.Hub, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// Stream handles GET /events. Each completed transaction is written as one
// JSON text message. Messages from the client are read and discarded.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		h.logger.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	id, ch := h.hub.Subscribe()
	defer h.hub.Unsubscribe(id)

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(eventPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(eventPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Debug("event subscriber read error",
						slog.Int64("subscriber", id),
						slog.String("error", err.Error()),
					)
				}
				return
			}
		}
	}()

	ping := time.NewTicker(eventPingEvery)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				// Dropped by the hub for lagging behind.
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "lagging"),
					time.Now().Add(eventWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(eventWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventWriteWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
