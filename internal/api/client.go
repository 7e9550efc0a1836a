// Package api is the REST/JSON client of the exhibition admin backend.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"expo-admin/internal/domain"
	"expo-admin/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// TokenSource supplies the bearer token and is told when the API rejects it.
type TokenSource interface {
	Token() (string, bool)
	Expire()
}

type Options struct {
	BaseURL string
	// StreamURL is the websocket base; derived from BaseURL when empty.
	StreamURL string
	Timeout   time.Duration
	Retries   int
	Tokens    TokenSource
	Log       *logrus.Entry
}

// Client talks to the persistence API. It is safe for concurrent use.
type Client struct {
	http      *resty.Client
	streamURL string
	tokens    TokenSource
	log       *logrus.Entry
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if !base.IsAbs() || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("base URL must be absolute http(s), got: %s", opts.BaseURL)
	}
	streamURL := opts.StreamURL
	if streamURL == "" {
		streamURL = deriveStreamURL(base)
	}
	log := opts.Log
	if log == nil {
		log = logger.For("api")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		streamURL: strings.TrimRight(streamURL, "/"),
		tokens:    opts.Tokens,
		log:       log,
	}
	c.http = resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	c.http.AddRetryCondition(retryCondition)
	c.http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if c.tokens == nil || r.Token != "" {
			return nil
		}
		if token, ok := c.tokens.Token(); ok {
			r.SetAuthToken(token)
		}
		return nil
	})
	return c, nil
}

// retryCondition retries idempotent reads on network errors, 429 and 5xx.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	code := r.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// check turns a transport error or an error status into a domain error.
func (c *Client) check(op string, resp *resty.Response, err error) error {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", op, err)
		}
		c.log.WithError(err).WithField("op", op).Warn("api unreachable")
		return fmt.Errorf("%s: %w: %v", op, domain.ErrTransport, err)
	}
	code := resp.StatusCode()
	if code < http.StatusBadRequest {
		return nil
	}

	var sentinel error
	switch {
	case code == http.StatusUnauthorized:
		sentinel = domain.ErrUnauthorized
		if c.tokens != nil {
			c.tokens.Expire()
		}
	case code == http.StatusNotFound:
		sentinel = domain.ErrNotFound
	case code < http.StatusInternalServerError:
		sentinel = domain.ErrValidation
	default:
		sentinel = domain.ErrServer
	}
	c.log.WithFields(logrus.Fields{"op": op, "status": code}).Debug("api error")
	if msg := parseAPIError(resp.Body()); msg != "" {
		return fmt.Errorf("%s: %w (status %d): %s", op, sentinel, code, msg)
	}
	return fmt.Errorf("%s: %w (status %d)", op, sentinel, code)
}

func deriveStreamURL(base *url.URL) string {
	u := *base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	return u.String()
}
