// Package stream is the real-time subscription client. It maintains a
// single websocket connection, a deduplicated subscription set that is
// replayed verbatim after every (re)connect, and typed handler fan-out.
package stream

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	// ErrClosed is returned for any call after Disconnect.
	ErrClosed = errors.New("stream client is closed")

	// ErrMaxReconnects is delivered to error handlers when the reconnect
	// attempt ceiling is reached. The client stops retrying afterwards.
	ErrMaxReconnects = errors.New("maximum reconnect attempts reached")

	// ErrNoTickers is returned when Subscribe is called without tickers.
	ErrNoTickers = errors.New("at least one ticker is required; use SubscribeAll for channel-wide scope")
)

// Config configures client behavior.
type Config struct {
	// ReconnectInterval is the fixed delay between reconnect attempts.
	ReconnectInterval time.Duration
	// MaxReconnectAttempts bounds consecutive failed reconnects.
	MaxReconnectAttempts int
	// HandshakeTimeout bounds the websocket handshake.
	HandshakeTimeout time.Duration
	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration
	// Logger receives connection lifecycle messages. Defaults to a no-op.
	Logger Logger
}

// DefaultConfig returns the platform defaults.
func DefaultConfig() Config {
	return Config{
		ReconnectInterval:    5 * time.Second,
		MaxReconnectAttempts: 10,
		HandshakeTimeout:     10 * time.Second,
		WriteTimeout:         10 * time.Second,
		Logger:               nopLogger{},
	}
}

// Logger is the minimal logging surface the client needs. *log.Logger
// and logrus loggers both satisfy it.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Client is a websocket subscription client. The zero value is not
// usable; create one with New.
type Client struct {
	endpoint string
	config   Config

	// mu guards conn, state and the subscription set, and serializes
	// frame writes.
	mu     sync.Mutex
	conn   *websocket.Conn
	state  State
	subs   map[Channel]map[string]struct{}
	subAll map[Channel]bool
	done   chan struct{}

	// dialDone is closed when the in-flight Connect dial settles, so
	// concurrent Connect callers can wait for its outcome in dialErr.
	dialDone chan struct{}
	dialErr  error

	handlers registry
}

// New creates a client for the given websocket endpoint. The client
// starts disconnected; call Connect.
func New(endpoint string, config *Config) *Client {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
		if cfg.ReconnectInterval <= 0 {
			cfg.ReconnectInterval = 5 * time.Second
		}
		if cfg.MaxReconnectAttempts <= 0 {
			cfg.MaxReconnectAttempts = 10
		}
		if cfg.HandshakeTimeout <= 0 {
			cfg.HandshakeTimeout = 10 * time.Second
		}
		if cfg.WriteTimeout <= 0 {
			cfg.WriteTimeout = 10 * time.Second
		}
		if cfg.Logger == nil {
			cfg.Logger = nopLogger{}
		}
	}

	return &Client{
		endpoint: endpoint,
		config:   cfg,
		state:    StateDisconnected,
		subs:     make(map[Channel]map[string]struct{}),
		subAll:   make(map[Channel]bool),
		done:     make(chan struct{}),
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether the connection is currently up.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Connect establishes the connection and replays the subscription set.
// It returns once the connection is up: a concurrent Connect during an
// in-flight dial waits for that dial's outcome instead of returning
// early. Calling Connect while connected or reconnecting is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return ErrClosed
	case StateConnected, StateReconnecting:
		c.mu.Unlock()
		return nil
	case StateConnecting:
		done := c.dialDone
		c.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		switch c.state {
		case StateConnected:
			return nil
		case StateClosed:
			return ErrClosed
		default:
			return c.dialErr
		}
	}
	c.state = StateConnecting
	c.dialDone = make(chan struct{})
	c.dialErr = nil
	c.mu.Unlock()

	err := c.dial(ctx)

	c.mu.Lock()
	if err != nil && c.state == StateConnecting {
		c.state = StateDisconnected
	}
	c.dialErr = err
	close(c.dialDone)
	c.mu.Unlock()
	return err
}

// dial opens the websocket, installs it and replays subscriptions. The
// replay happens under the client lock so no concurrent Subscribe frame
// can interleave with it.
func (c *Client) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.config.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		conn.Close()
		return ErrClosed
	}
	c.conn = conn
	c.state = StateConnected
	replayErr := c.replayLocked()
	c.mu.Unlock()

	if replayErr != nil {
		// The read loop will observe the broken connection and drive the
		// usual reconnect path.
		c.config.Logger.Printf("stream: replay after connect failed: %v", replayErr)
	}

	go c.readLoop(conn)
	return nil
}

// replayLocked re-sends the full subscription set, one frame per
// channel, tickers sorted. Callers hold c.mu.
func (c *Client) replayLocked() error {
	channels := make([]Channel, 0, len(c.subs)+len(c.subAll))
	seen := make(map[Channel]struct{})
	for ch := range c.subAll {
		channels = append(channels, ch)
		seen[ch] = struct{}{}
	}
	for ch := range c.subs {
		if _, ok := seen[ch]; !ok {
			channels = append(channels, ch)
		}
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })

	for _, ch := range channels {
		if c.subAll[ch] {
			if err := c.writeLocked(request{Type: "subscribe", Channel: ch, All: true}); err != nil {
				return err
			}
			continue
		}
		tickers := sortedTickers(c.subs[ch])
		if len(tickers) == 0 {
			continue
		}
		if err := c.writeLocked(request{Type: "subscribe", Channel: ch, Tickers: tickers}); err != nil {
			return err
		}
	}
	return nil
}

func sortedTickers(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	tickers := make([]string, 0, len(set))
	for tk := range set {
		tickers = append(tickers, tk)
	}
	sort.Strings(tickers)
	return tickers
}

// writeLocked sends one frame. Callers hold c.mu with a live conn.
func (c *Client) writeLocked(req request) error {
	if c.conn == nil {
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write %s frame: %w", req.Type, err)
	}
	return nil
}

// Subscribe adds tickers to the channel's subscription set. While
// connected the frame is sent immediately; otherwise the set is queued
// and flushed by the next (re)connect replay. Re-subscribing an already
// subscribed ticker is a server-side no-op, not an error.
func (c *Client) Subscribe(channel Channel, tickers ...string) error {
	if len(tickers) == 0 {
		return ErrNoTickers
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return ErrClosed
	}

	if c.subs[channel] == nil {
		c.subs[channel] = make(map[string]struct{})
	}
	for _, tk := range tickers {
		c.subs[channel][tk] = struct{}{}
	}

	if c.state == StateConnected {
		return c.writeLocked(request{Type: "subscribe", Channel: channel, Tickers: tickers})
	}
	return nil
}

// SubscribeAll subscribes to every ticker on the channel.
func (c *Client) SubscribeAll(channel Channel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return ErrClosed
	}

	c.subAll[channel] = true

	if c.state == StateConnected {
		return c.writeLocked(request{Type: "subscribe", Channel: channel, All: true})
	}
	return nil
}

// Unsubscribe removes tickers from the channel's subscription set.
func (c *Client) Unsubscribe(channel Channel, tickers ...string) error {
	if len(tickers) == 0 {
		return ErrNoTickers
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return ErrClosed
	}

	for _, tk := range tickers {
		delete(c.subs[channel], tk)
	}

	if c.state == StateConnected {
		return c.writeLocked(request{Type: "unsubscribe", Channel: channel, Tickers: tickers})
	}
	return nil
}

// UnsubscribeAll clears the channel's entire subscription scope, both
// the all flag and any per-ticker subscriptions.
func (c *Client) UnsubscribeAll(channel Channel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return ErrClosed
	}

	delete(c.subAll, channel)
	delete(c.subs, channel)

	if c.state == StateConnected {
		return c.writeLocked(request{Type: "unsubscribe", Channel: channel, All: true})
	}
	return nil
}

// Disconnect closes the connection and the client. It never blocks on
// in-flight dispatch, so it is safe to call from a handler. The client
// cannot be reused afterwards.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	conn := c.conn
	c.conn = nil
	close(c.done)
	c.mu.Unlock()

	if conn != nil {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}
	return nil
}

// readLoop reads and dispatches frames until the connection breaks.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleReadError(conn, err)
			return
		}
		c.dispatch(data)
	}
}

// handleReadError transitions to reconnecting unless the client was
// closed or the connection already replaced.
func (c *Client) handleReadError(conn *websocket.Conn, err error) {
	conn.Close()

	c.mu.Lock()
	if c.state == StateClosed || c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = StateReconnecting
	c.mu.Unlock()

	c.config.Logger.Printf("stream: connection lost: %v", err)
	go c.reconnectLoop()
}

// reconnectLoop retries on a fixed interval up to the attempt ceiling,
// then gives up for good and reports ErrMaxReconnects.
func (c *Client) reconnectLoop() {
	for attempt := 1; attempt <= c.config.MaxReconnectAttempts; attempt++ {
		select {
		case <-c.done:
			return
		case <-time.After(c.config.ReconnectInterval):
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.config.HandshakeTimeout)
		err := c.dial(ctx)
		cancel()
		if err == nil {
			return
		}
		if errors.Is(err, ErrClosed) {
			return
		}
		c.config.Logger.Printf("stream: reconnect attempt %d/%d failed: %v",
			attempt, c.config.MaxReconnectAttempts, err)
	}

	c.mu.Lock()
	if c.state != StateClosed {
		c.state = StateDisconnected
	}
	c.mu.Unlock()
	c.handlers.notifyError(ErrMaxReconnects)
}
