// Package stream speaks the Polygon real-time WebSocket protocol: connect,
// authenticate, subscribe, then deliver events as they arrive.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrNoAPIKey   = errors.New("missing API key for streaming")
	ErrAuthFailed = errors.New("stream authentication failed")
	// ErrStop may be returned by a Handler to end Run without an error.
	ErrStop = errors.New("stop streaming")
)

var Clusters = []string{"stocks", "crypto", "forex", "options", "indices"}

// Handler receives each non-status event as raw JSON.
type Handler func(event json.RawMessage) error

type Options struct {
	URL     string
	Cluster string
	APIKey  string
	// HandshakeTimeout bounds the dial and the auth exchange.
	HandshakeTimeout time.Duration
	Logger           *slog.Logger
}

type Client struct {
	conn      *websocket.Conn
	logger    *slog.Logger
	closeOnce sync.Once
}

type statusEvent struct {
	Ev      string `json:"ev"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type action struct {
	Action string `json:"action"`
	Params string `json:"params"`
}

func validCluster(c string) bool {
	for _, known := range Clusters {
		if c == known {
			return true
		}
	}
	return false
}

// Dial connects to <URL>/<Cluster> and authenticates.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if !validCluster(opts.Cluster) {
		return nil, fmt.Errorf("unknown cluster %q: use one of %s", opts.Cluster, strings.Join(Clusters, ", "))
	}
	timeout := opts.HandshakeTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	url := strings.TrimRight(opts.URL, "/") + "/" + opts.Cluster
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	logger = logger.With("url", url)

	c := &Client{conn: conn, logger: logger}
	if err := c.handshake(opts.APIKey, timeout); err != nil {
		c.Close()
		return nil, err
	}
	logger.Info("Stream authenticated")
	return c, nil
}

func (c *Client) handshake(apiKey string, timeout time.Duration) error {
	c.conn.SetReadDeadline(time.Now().Add(timeout))
	defer c.conn.SetReadDeadline(time.Time{})

	if _, err := c.waitStatus("connected"); err != nil {
		return fmt.Errorf("waiting for connect: %w", err)
	}
	if err := c.conn.WriteJSON(action{Action: "auth", Params: apiKey}); err != nil {
		return fmt.Errorf("failed to send auth: %w", err)
	}
	st, err := c.waitStatus("auth_success", "auth_failed")
	if err != nil {
		return fmt.Errorf("waiting for auth: %w", err)
	}
	if st.Status != "auth_success" {
		return fmt.Errorf("%w: %s", ErrAuthFailed, st.Message)
	}
	return nil
}

// waitStatus reads frames until one carries a status in want.
func (c *Client) waitStatus(want ...string) (statusEvent, error) {
	for {
		var events []statusEvent
		if err := c.conn.ReadJSON(&events); err != nil {
			return statusEvent{}, err
		}
		for _, ev := range events {
			c.logger.Debug("Stream status", "status", ev.Status, "message", ev.Message)
			for _, w := range want {
				if ev.Ev == "status" && ev.Status == w {
					return ev, nil
				}
			}
		}
	}
}

// Subscribe asks for channels such as "T.AAPL" or "XA.*".
func (c *Client) Subscribe(channels ...string) error {
	params := joinChannels(channels)
	if params == "" {
		return errors.New("no channels to subscribe to")
	}
	if err := c.conn.WriteJSON(action{Action: "subscribe", Params: params}); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", params, err)
	}
	c.logger.Info("Subscribed", "channels", params)
	return nil
}

func joinChannels(channels []string) string {
	var out []string
	for _, ch := range channels {
		for _, part := range strings.Split(ch, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return strings.Join(out, ",")
}

// Run delivers events to h until ctx is done, the server closes the
// connection, or h returns an error. ErrStop and cancellation end cleanly.
func (c *Client) Run(ctx context.Context, h Handler) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("stream read: %w", err)
		}

		var events []json.RawMessage
		if err := json.Unmarshal(data, &events); err != nil {
			c.logger.Warn("Skipping malformed frame", "error", err)
			continue
		}
		for _, ev := range events {
			var st statusEvent
			if json.Unmarshal(ev, &st) == nil && st.Ev == "status" {
				c.logger.Debug("Stream status", "status", st.Status, "message", st.Message)
				continue
			}
			if err := h(ev); err != nil {
				c.Close()
				if errors.Is(err, ErrStop) {
					return nil
				}
				return err
			}
		}
	}
}

// Close sends a normal close frame and closes the connection. Safe to call
// more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}
