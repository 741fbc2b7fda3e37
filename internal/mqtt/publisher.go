package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cockpit-server/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Cockpit event names, published under <prefix>/<event>.
const (
	EventTakeoff = "takeoff"
	EventTrim    = "trim"
	EventN1Set   = "n1_set"
	EventMaxN1   = "max_n1"
)

const publishTimeout = 5 * time.Second

var ErrNotConnected = errors.New("mqtt client not connected")

// Event is the JSON envelope sent for every cockpit event.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Publisher sends cockpit events to the broker. A nil or disabled Publisher
// accepts every call and does nothing, so callers need no broker checks.
type Publisher struct {
	client    mqtt.Client
	prefix    string
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPublisher builds a publisher for cfg. It returns a disabled publisher
// when no broker is configured.
func NewPublisher(cfg config.Config, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{
		prefix: cfg.MQTTTopicPrefix,
		logger: logger,
		stopCh: make(chan struct{}),
	}
	if cfg.MQTTBroker == "" {
		return p
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)

	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

// Enabled reports whether a broker is configured.
func (p *Publisher) Enabled() bool {
	return p != nil && p.client != nil
}

// Connect waits for the initial broker connection, honouring ctx and
// Disconnect. It is a no-op for a disabled publisher.
func (p *Publisher) Connect(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	select {
	case <-p.stopCh:
		return fmt.Errorf("publisher stopped")
	default:
	}

	if p.IsConnected() {
		return nil
	}

	token := p.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return fmt.Errorf("publisher stopped")
		default:
		}
	}
}

// Topic returns the full topic for event.
func (p *Publisher) Topic(event string) string {
	if p == nil || p.prefix == "" {
		return event
	}
	return p.prefix + "/" + event
}

// Publish sends data as event. max_n1 is retained so late subscribers get the
// current value.
func (p *Publisher) Publish(event string, data any) error {
	if !p.Enabled() {
		return nil
	}
	if !p.IsConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(Event{Type: event, Timestamp: time.Now().UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}

	topic := p.Topic(event)
	retained := event == EventMaxN1
	token := p.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	p.logger.Debug("published event", "topic", topic, "retained", retained)
	return nil
}

// PublishMaxN1 publishes a max N1 update and logs failures. It matches the
// subscriber update-handler signature.
func (p *Publisher) PublishMaxN1(v float64) {
	if err := p.Publish(EventMaxN1, map[string]float64{"max_n1": v}); err != nil {
		p.logger.Warn("publish max n1 failed", "error", err)
	}
}

// IsConnected returns whether the client is connected.
func (p *Publisher) IsConnected() bool {
	if !p.Enabled() {
		return false
	}
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect stops the publisher and closes the MQTT connection.
// Idempotent and safe to call multiple times.
func (p *Publisher) Disconnect() {
	if !p.Enabled() {
		return
	}
	p.stopOnce.Do(func() { close(p.stopCh) })

	p.client.Disconnect(250)

	p.setConnected(false)
	p.logger.Info("mqtt disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
