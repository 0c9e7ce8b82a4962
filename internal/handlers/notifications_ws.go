package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AnshRaj112/watchlist-backend/internal/apperr"
)

const (
	streamPongWait   = 90 * time.Second
	streamPingPeriod = 30 * time.Second
	streamWriteWait  = 10 * time.Second
	streamReadLimit  = 4 * 1024
)

// NotificationStream pushes every new notification addressed to the caller
// over a WebSocket. Browsers cannot set headers on the upgrade request, so
// besides the Bearer header and the jwt cookie the token may be passed as
// ?token=.
func (h *Handler) NotificationStream(w http.ResponseWriter, r *http.Request) {
	token := h.auth.TokenFromRequest(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}

	user, err := h.auth.Authenticate(r.Context(), token)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subscribe before upgrading so nothing published after the handshake
	// completes can be missed.
	events, unsubscribe, err := h.notifications.Subscribe(ctx, user.ID)
	if err != nil {
		h.fail(w, r, apperr.Internal(err, "subscribe to notifications"))
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		return
	}
	defer conn.Close()

	// Reader: clients send nothing useful, but reading is how pongs and
	// close frames are processed.
	conn.SetReadLimit(streamReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}
