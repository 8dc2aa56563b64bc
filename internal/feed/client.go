package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/AurifyAE/Honor-TV-View/internal/httputil"
	"github.com/AurifyAE/Honor-TV-View/internal/models"
)

const writeWait = 10 * time.Second

// State is the connection state of the feed client.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Dialer opens a websocket connection. *websocket.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

type Options struct {
	URL     string
	Secret  string
	Symbols []string

	Backoff     httputil.Backoff
	ReadTimeout time.Duration
	TickBuffer  int
	Dialer      Dialer

	// OnStateChange is called from the connection goroutine on every
	// transition. It must not block.
	OnStateChange func(from, to State)
}

// Client owns one streaming connection to the quote server. Parsed ticks
// are published on Ticks(); connection failures are recovered by
// reconnecting and resubscribing.
type Client struct {
	opts  Options
	ticks chan models.Tick
	state atomic.Int32
	log   *log.Entry

	runOnce sync.Once
	dropped atomic.Uint64
}

func NewClient(opts Options) *Client {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.TickBuffer <= 0 {
		opts.TickBuffer = 256
	}
	if opts.Backoff.Base <= 0 {
		opts.Backoff = httputil.DefaultBackoff
	}
	if opts.Dialer == nil {
		d := *websocket.DefaultDialer
		d.HandshakeTimeout = 10 * time.Second
		opts.Dialer = &d
	}
	syms := make([]string, 0, len(opts.Symbols))
	for _, s := range opts.Symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			syms = append(syms, s)
		}
	}
	opts.Symbols = syms

	return &Client{
		opts:  opts,
		ticks: make(chan models.Tick, opts.TickBuffer),
		log:   log.WithField("component", "feed"),
	}
}

// Ticks is closed when Run returns.
func (c *Client) Ticks() <-chan models.Tick { return c.ticks }

func (c *Client) State() State { return State(c.state.Load()) }

// Connected is the read-only health flag.
func (c *Client) Connected() bool { return c.State() == Connected }

// Symbols returns the subscription list.
func (c *Client) Symbols() []string {
	out := make([]string, len(c.opts.Symbols))
	copy(out, c.opts.Symbols)
	return out
}

// Dropped counts inbound frames that were discarded as malformed.
func (c *Client) Dropped() uint64 { return c.dropped.Load() }

func (c *Client) setState(to State) {
	from := State(c.state.Swap(int32(to)))
	if from == to {
		return
	}
	c.log.WithField("state", to.String()).Debugf("feed %s -> %s", from, to)
	if c.opts.OnStateChange != nil {
		c.opts.OnStateChange(from, to)
	}
}

// Run connects and keeps the feed alive until ctx is cancelled. Cancelling
// ctx closes the live connection and stops any pending reconnect. Run may
// only be called once.
func (c *Client) Run(ctx context.Context) error {
	started := false
	c.runOnce.Do(func() { started = true })
	if !started {
		return errors.New("feed client already started")
	}
	defer close(c.ticks)
	defer c.setState(Disconnected)

	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}

	attempt := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		c.setState(Connecting)
		conn, err := c.connect(ctx, endpoint)
		if err == nil {
			attempt = 0
			c.setState(Connected)
			err = c.session(ctx, conn)
		}
		c.setState(Disconnected)

		if ctx.Err() != nil {
			return nil
		}

		delay := c.opts.Backoff.Delay(attempt)
		attempt++
		c.log.WithError(err).Warnf("feed down, reconnecting in %s (attempt %d)", delay, attempt)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (c *Client) endpoint() (string, error) {
	if c.opts.URL == "" {
		return "", errors.New("feed URL is empty")
	}
	u, err := url.Parse(c.opts.URL)
	if err != nil {
		return "", fmt.Errorf("parse feed URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported feed URL scheme %q", u.Scheme)
	}
	if c.opts.Secret != "" {
		q := u.Query()
		q.Set("secret", c.opts.Secret)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) connect(ctx context.Context, endpoint string) (*websocket.Conn, error) {
	conn, resp, err := c.opts.Dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial: %w (HTTP %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial: %w", err)
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(SubscribeMessage(c.opts.Symbols)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	conn.SetWriteDeadline(time.Time{})
	return conn, nil
}

// session reads frames until the connection fails or ctx is cancelled.
func (c *Client) session(ctx context.Context, conn *websocket.Conn) error {
	sessionLog := c.log.WithField("session", uuid.NewString())
	sessionLog.WithField("symbols", strings.Join(c.opts.Symbols, ",")).Info("connected to quote server")

	// Pings keep a quiet but healthy connection inside the read deadline;
	// each pong pushes the deadline forward.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ping := time.NewTicker(c.pingInterval())
		defer ping.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-done:
				return
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					sessionLog.WithError(err).Debug("ping failed")
					return
				}
			}
		}
	}()
	defer conn.Close()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
	})

	for {
		conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}

		tick, err := ParseTick(raw, time.Now())
		if err != nil {
			c.handleNonTick(sessionLog, raw, err)
			continue
		}

		select {
		case c.ticks <- tick:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) pingInterval() time.Duration {
	return c.opts.ReadTimeout / 2
}

func (c *Client) handleNonTick(l *log.Entry, raw []byte, err error) {
	if errors.Is(err, ErrUnknownEvent) {
		var env Envelope
		if jsonErr := json.Unmarshal(raw, &env); jsonErr == nil && env.Event == EventError {
			l.WithField("data", string(env.Data)).Error("quote server reported an error")
			return
		}
		l.WithError(err).Debug("ignoring frame")
		return
	}
	c.dropped.Add(1)
	l.WithError(err).Warn("received malformed market data")
}
