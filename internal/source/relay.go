package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/detector"
)

// Relay client timings.
const (
	ReconnectDelay = time.Second
	pollTimeout    = 500 * time.Millisecond
)

// RelayClient joins a relay room as an observer and publishes every
// skeleton it receives. While the socket is down it polls the relay's
// latest-landmarks endpoint instead.
type RelayClient struct {
	wsURL   string
	httpURL string
	room    string
	box     *Mailbox
	dialer  *websocket.Dialer
	http    *http.Client
	logger  *log.Logger
	delay   time.Duration
}

// NewRelayClient returns a client for the relay at base, an http(s) or
// ws(s) URL of the server root.
func NewRelayClient(base, room string, box *Mailbox, logger *log.Logger) (*RelayClient, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse relay url: %w", err)
	}
	if room == "" {
		room = DefaultRoom
	}
	if logger == nil {
		logger = log.Default()
	}

	ws, hu := *u, *u
	switch u.Scheme {
	case "http", "ws":
		ws.Scheme, hu.Scheme = "ws", "http"
	case "https", "wss":
		ws.Scheme, hu.Scheme = "wss", "https"
	default:
		return nil, fmt.Errorf("unsupported relay scheme %q", u.Scheme)
	}

	q := url.Values{"room": {room}, "role": {RoleObserver}}
	ws.Path += "/api/landmarks"
	ws.RawQuery = q.Encode()
	hu.Path += "/api/landmarks/latest"
	hu.RawQuery = url.Values{"room_id": {room}}.Encode()

	return &RelayClient{
		wsURL:   ws.String(),
		httpURL: hu.String(),
		room:    room,
		box:     box,
		dialer:  &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		http:    &http.Client{Timeout: pollTimeout},
		logger:  logger,
		delay:   ReconnectDelay,
	}, nil
}

// Run connects and reconnects until ctx is done.
func (c *RelayClient) Run(ctx context.Context) error {
	for {
		if err := c.session(ctx); err != nil && ctx.Err() == nil {
			c.logger.Printf("Relay connection lost: %v", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if hands, err := c.FetchLatest(ctx); err == nil && hands != nil {
			c.box.Publish(hands)
		}

		t := time.NewTimer(c.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (c *RelayClient) session(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.wsURL, err)
	}
	defer conn.Close()
	c.logger.Printf("Joined relay room %s", c.room)

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Printf("Ignoring malformed relay message: %v", err)
			continue
		}
		if msg.RoomID != "" && msg.RoomID != c.room {
			continue
		}
		if err := c.box.Publish(msg.Landmarks()); err != nil {
			return err
		}
	}
}

// FetchLatest reads the room's cached skeleton over HTTP. It returns nil
// hands without error when the room is empty or its data is stale.
func (c *RelayClient) FetchLatest(ctx context.Context) ([]detector.HandLandmarks, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.httpURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("latest landmarks: %s", resp.Status)
	}

	var body Latest
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode latest landmarks: %w", err)
	}
	if body.Data == nil {
		return nil, nil
	}
	if time.Since(time.UnixMilli(body.Data.UpdatedAt)) > DefaultMaxAge {
		return nil, nil
	}
	msg := Message{Skeleton: body.Data.Skeleton, Hands: body.Data.Hands}
	hands := msg.Landmarks()
	if hands == nil {
		// a cleared room is fresh data with no hands
		hands = []detector.HandLandmarks{}
	}
	return hands, nil
}
