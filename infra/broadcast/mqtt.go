package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/medfleet/dispatch/core/events"
	"github.com/medfleet/dispatch/core/model"
	"github.com/medfleet/dispatch/infra/logger"
	"github.com/medfleet/dispatch/internal/eventbus"
)

// Config defines the connection parameters for the MQTT broadcaster.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "medfleet-" + uuid.NewString()
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "ems"
	}
}

// mqttClient is the subset of the Paho client the broadcaster uses.
type mqttClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PositionSink receives resource positions ingested from the broker.
type PositionSink interface {
	UpsertResourcePosition(model.ResourcePosition) error
}

var newMQTTClient = func(opts *paho.ClientOptions) mqttClient {
	return paho.NewClient(opts)
}

// Broadcaster forwards engine events to the external notification layer over
// MQTT. Delivery is best-effort: the engine publishes to the in-process bus
// and never blocks on the broker.
type Broadcaster struct {
	cli    mqttClient
	prefix string
	qos    byte
	log    logger.Logger
}

// New connects to the broker and returns a ready Broadcaster.
func New(cfg Config) (*Broadcaster, error) {
	cfg.SetDefaults()
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	cli := newMQTTClient(opts)
	tok := cli.Connect()
	tok.Wait()
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("broadcast: connect %s: %w", cfg.Broker, err)
	}
	return &Broadcaster{
		cli:    cli,
		prefix: cfg.TopicPrefix,
		qos:    cfg.QoS,
		log:    logger.New("broadcast"),
	}, nil
}

// Run forwards bus events to the broker until the context is canceled or the
// bus closes.
func (b *Broadcaster) Run(ctx context.Context, bus eventbus.EventBus) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	for {
		select {
		case ev, ok := <-sub:
			if !ok {
				return
			}
			b.forward(ev)
		case <-ctx.Done():
			return
		}
	}
}

// forward maps the event type to its topic and publishes the JSON payload.
func (b *Broadcaster) forward(ev eventbus.Event) {
	var topic string
	switch ev.(type) {
	case events.CapacityChangedEvent:
		topic = b.prefix + "/capacity"
	case events.AssignmentMadeEvent:
		topic = b.prefix + "/assignments"
	case events.StatusChangedEvent:
		topic = b.prefix + "/status"
	case events.DispatchOutcomeEvent:
		topic = b.prefix + "/dispatch"
	case events.CapacityAlertEvent:
		topic = b.prefix + "/alerts"
	default:
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		b.log.Errorf("marshal event for %s: %v", topic, err)
		return
	}
	tok := b.cli.Publish(topic, b.qos, false, payload)
	tok.Wait()
	if err := tok.Error(); err != nil {
		b.log.Warnf("publish %s: %v", topic, err)
	}
}

// ListenPositions subscribes to the fleet position topic and feeds decoded
// updates into the sink. Malformed or invalid payloads are logged and dropped.
func (b *Broadcaster) ListenPositions(sink PositionSink) error {
	topic := b.prefix + "/positions"
	tok := b.cli.Subscribe(topic, b.qos, func(_ paho.Client, msg paho.Message) {
		var pos model.ResourcePosition
		if err := json.Unmarshal(msg.Payload(), &pos); err != nil {
			b.log.Warnf("decode position update: %v", err)
			return
		}
		if err := sink.UpsertResourcePosition(pos); err != nil {
			b.log.Warnf("ingest position %s: %v", pos.ResourceID, err)
		}
	})
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("broadcast: subscribe %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (b *Broadcaster) Close() {
	if b.cli.IsConnected() {
		b.cli.Disconnect(250)
	}
}
