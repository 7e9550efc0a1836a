package http

import (
	"context"
	"net/http"
	"time"

	"expo-admin/internal/domain"
	"github.com/gorilla/websocket"
)

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeStream upgrades to a websocket and pushes every new quiz result as
// {"type":"result","payload":{...}} until either side closes.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	send := make(chan outboundMessage[domain.QuizResult], 16)
	writerDone := make(chan struct{})

	// Single writer; gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.WithError(err).Debug("ws write error")
				cancel()
				return
			}
		}
	}()

	// The client never sends data; reading only surfaces its close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	err = h.backend.StreamResults(ctx, func(res domain.QuizResult) {
		select {
		case send <- outboundMessage[domain.QuizResult]{Type: "result", Payload: res}:
		case <-ctx.Done():
		}
	})
	if err != nil {
		h.log.WithError(err).Warn("result stream ended")
	}

	close(send)
	<-writerDone
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
}
