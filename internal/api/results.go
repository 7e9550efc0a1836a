package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"expo-admin/internal/domain"
	"github.com/gorilla/websocket"
)

// Results lists quiz results finished at or after since.
func (c *Client) Results(ctx context.Context, since time.Time) ([]domain.QuizResult, error) {
	req := c.request(ctx)
	if !since.IsZero() {
		req.SetQueryParam("since", since.UTC().Format(time.RFC3339))
	}
	resp, err := req.Get(resourcePath(domain.ResourceResults))
	if err := c.check("list results", resp, err); err != nil {
		return nil, err
	}
	return decodeList[domain.QuizResult](resp.Body())
}

type streamFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// StreamResults subscribes to live quiz results and calls handle for each one.
// It returns nil when ctx ends or the server closes the socket normally.
func (c *Client) StreamResults(ctx context.Context, handle func(domain.QuizResult)) error {
	header := http.Header{}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			header.Set("Authorization", "Bearer "+token)
		}
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.streamURL+"/results/stream", header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			if c.tokens != nil {
				c.tokens.Expire()
			}
			return fmt.Errorf("stream results: %w", domain.ErrUnauthorized)
		}
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("stream results: %w: %v", domain.ErrTransport, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		var frame streamFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				c.log.WithError(err).Warn("skipping malformed stream frame")
				continue
			}
			return fmt.Errorf("stream results: %w: %v", domain.ErrTransport, err)
		}
		if frame.Type != "result" {
			continue
		}
		var result domain.QuizResult
		if err := json.Unmarshal(frame.Payload, &result); err != nil {
			c.log.WithError(err).Warn("skipping malformed result")
			continue
		}
		handle(result)
	}
}
