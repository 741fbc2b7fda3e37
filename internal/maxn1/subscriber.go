// Package maxn1 keeps the latest max climb N1 pushed by the performance
// service over its WebSocket feed.
//
// Protocol: once the socket is open the client sends {"request":"sub_max_n1"},
// then answers every server message with {"request":"ping"}. The server
// pushes {"success","message","max_n1"}.
package maxn1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cockpit-server/internal/perfapi"

	"github.com/gorilla/websocket"
)

// InitialMaxN1 is shown until the first accepted push.
const InitialMaxN1 = 104.0

const writeTimeout = 5 * time.Second

type request struct {
	Request string `json:"request"`
}

var (
	subscribeRequest = request{Request: "sub_max_n1"}
	pingRequest      = request{Request: "ping"}
)

// Push is one server message on the feed.
type Push struct {
	Success perfapi.LooseBool `json:"success"`
	Message string            `json:"message"`
	MaxN1   *float64          `json:"max_n1"`
}

// accepted mirrors the console rule: success flag set or message "Success".
func (p Push) accepted() bool {
	return bool(p.Success) || p.Message == perfapi.SuccessMessage
}

// Snapshot is the subscriber state exposed to handlers.
type Snapshot struct {
	MaxN1     float64   `json:"max_n1"`
	Connected bool      `json:"connected"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

type Subscriber struct {
	url       string
	reconnect time.Duration
	dialer    *websocket.Dialer
	logger    *slog.Logger

	mu        sync.RWMutex
	value     float64
	connected bool
	updatedAt time.Time

	// onUpdate is called after every accepted value, outside the lock.
	onUpdate func(float64)
}

func NewSubscriber(url string, reconnect time.Duration, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{
		url:       url,
		reconnect: reconnect,
		dialer:    &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:    logger,
		value:     InitialMaxN1,
	}
}

// SetUpdateHandler registers fn to receive every accepted max N1 value.
// Call before Run.
func (s *Subscriber) SetUpdateHandler(fn func(float64)) {
	s.onUpdate = fn
}

// Run keeps the subscription alive until ctx is done. Every dropped or failed
// connection is retried after the fixed reconnect interval.
func (s *Subscriber) Run(ctx context.Context) error {
	for {
		err := s.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		s.logger.Warn("max n1 feed disconnected", "url", s.url, "error", err, "retry_in", s.reconnect)

		t := time.NewTimer(s.reconnect)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

func (s *Subscriber) session(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()
	defer func() {
		_ = conn.Close()
		s.setConnected(false)
	}()

	s.setConnected(true)
	s.logger.Info("max n1 feed connected", "url", s.url)

	if err := s.send(conn, subscribeRequest); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var cerr *websocket.CloseError
			if errors.As(err, &cerr) {
				return fmt.Errorf("closed by server: %w", err)
			}
			return fmt.Errorf("read: %w", err)
		}
		s.handle(data)

		if err := s.send(conn, pingRequest); err != nil {
			return fmt.Errorf("ping: %w", err)
		}
	}
}

func (s *Subscriber) send(conn *websocket.Conn, req request) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(req)
}

func (s *Subscriber) handle(data []byte) {
	var p Push
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Warn("max n1 feed: bad message", "error", err, "payload", string(data))
		return
	}
	if !p.accepted() {
		s.logger.Debug("max n1 feed: push rejected", "message", p.Message)
		return
	}
	if p.MaxN1 == nil {
		return
	}

	v := *p.MaxN1
	s.mu.Lock()
	s.value = v
	s.updatedAt = time.Now()
	s.mu.Unlock()

	s.logger.Debug("max n1 updated", "max_n1", v)
	if s.onUpdate != nil {
		s.onUpdate(v)
	}
}

// Current returns the latest accepted max N1.
func (s *Subscriber) Current() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Connected reports whether the feed socket is currently open.
func (s *Subscriber) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *Subscriber) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{MaxN1: s.value, Connected: s.connected, UpdatedAt: s.updatedAt}
}

func (s *Subscriber) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}
