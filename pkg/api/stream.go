package api

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	readLimit  = 512
)

func (a *API) upgrader() *websocket.Upgrader {
	u := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if len(a.allowedOrigins) > 0 {
		u.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if slices.Contains(a.allowedOrigins, "*") {
				return true
			}
			parsed, err := url.Parse(origin)
			return err == nil && slices.Contains(a.allowedOrigins, parsed.Scheme+"://"+parsed.Host)
		}
	}
	return u
}

// stream pushes inbox events of one user over a websocket until either side
// goes away. Events are JSON-encoded inapp.Event values.
func (a *API) stream(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	conn, err := a.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client.
		a.logger.DebugContext(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub := a.inbox.Subscribe(ctx, userID)
	log := a.logger.With(logger.UserID(userID))
	log.InfoContext(ctx, "inbox stream opened")
	defer log.InfoContext(ctx, "inbox stream closed")

	// Reader: only pongs and close frames matter.
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Dropped as a slow consumer or hub closed.
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream closed"))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.DebugContext(ctx, "inbox stream write failed", logger.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.DebugContext(ctx, "inbox stream ping failed", logger.Error(err))
				return
			}
		}
	}
}
