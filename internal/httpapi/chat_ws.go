package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/streamcast/streamcast/internal/storage"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST surface is already wide open for the demo frontend, so the
	// websocket feed follows the same policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatSocket streams new chat messages for one stream over a websocket.
// The connection is read-only for the client; messages are posted through
// the REST endpoint.
func (h *handler) chatSocket(w http.ResponseWriter, r *http.Request) {
	streamID := mux.Vars(r)["id"]
	if _, err := h.streams.Get(r.Context(), streamID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("Stream not found"))
			return
		}
		h.writeServiceError(w, err, "Stream not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	feed, cancel := h.chat.Subscribe(streamID)
	defer cancel()

	// Drain client frames so pings and close messages are processed. The
	// read loop exits when the client goes away, which cancels the feed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case msg, ok := <-feed:
			if !ok {
				return
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				h.log.WithError(err).Error("could not encode chat message")
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
