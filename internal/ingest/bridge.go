//
//
package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/fleet-control/vdagw/internal/config"
	"github.com/fleet-control/vdagw/internal/metrics"
	"github.com/fleet-control/vdagw/internal/vda"
)

// RecordStore is the write side of the robot state store.
type RecordStore interface {
	Apply(rec vda.Record) bool
}

// RecordPublisher is the hub's fan-out entry point.
type RecordPublisher interface {
	Publish(rec vda.Record)
}

// Recorder receives accepted records for journaling. A nil-safe
// implementation is expected.
type Recorder interface {
	Record(rec vda.Record)
}

// Bridge connects the broker to the store and hub.
type Bridge struct {
	cfg     config.MQTTConfig
	store   RecordStore
	hub     RecordPublisher
	journal Recorder
	metrics *metrics.Metrics
	client  mqtt.Client
}

// New creates a bridge. journal may be nil.
func New(cfg config.MQTTConfig, store RecordStore, hub RecordPublisher, journal Recorder, m *metrics.Metrics) *Bridge {
	return &Bridge{
		cfg:     cfg,
		store:   store,
		hub:     hub,
		journal: journal,
		metrics: m,
	}
}

// Start connects to the broker and subscribes to the namespace wildcard.
// The subscription is re-established on every reconnect. Start returns
// once the initial connection is up or ctx expires.
func (b *Bridge) Start(ctx context.Context) error {
	filter := vda.SubscriptionFilter(b.cfg.Namespace)
	qos := byte(b.cfg.QoS)

	opts := mqtt.NewClientOptions().
		AddBroker(b.cfg.BrokerURL).
		SetClientID(b.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetryInterval(2 * time.Second).
		SetOnConnectHandler(func(client mqtt.Client) {
			log.Printf("MQTT connected to %s, subscribing to %s", b.cfg.BrokerURL, filter)
			if token := client.Subscribe(filter, qos, b.handleMessage); token.Wait() && token.Error() != nil {
				log.Printf("MQTT subscribe to %s failed: %v", filter, token.Error())
			}
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("MQTT connection lost: %v", err)
		})

	b.client = mqtt.NewClient(opts)

	token := b.client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("failed to connect to MQTT broker %s: %w", b.cfg.BrokerURL, err)
		}
	case <-ctx.Done():
		b.client.Disconnect(0)
		return ctx.Err()
	}

	return nil
}

// Stop disconnects from the broker, allowing in-flight work to finish.
func (b *Bridge) Stop() {
	if b.client != nil && b.client.IsConnected() {
		b.client.Disconnect(250)
	}
}

// handleMessage runs on a broker delivery goroutine.
func (b *Bridge) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	b.process(msg.Topic(), msg.Payload())
}

// process is the ingest pipeline for one raw message: parse topic,
// decode payload, apply to the store, publish if accepted. Every failure
// mode drops the message locally; nothing on this path is fatal. The
// hub's own internals keep the fan-out non-blocking, so no lock is held
// across Publish.
func (b *Bridge) process(topic string, payload []byte) {
	b.metrics.MessageReceived()

	_, id, kind, err := vda.ParseTopic(topic)
	if err != nil {
		// Command topics published by the gateway itself land here too;
		// they are not telemetry and are skipped without logging.
		b.metrics.MessageDropped(metrics.ReasonTopic)
		return
	}

	rec, err := vda.Decode(id, kind, payload)
	if err != nil {
		log.Printf("Dropping undecodable %s message from %s: %v", kind, id, err)
		b.metrics.MessageDropped(metrics.ReasonDecode)
		return
	}

	if !b.store.Apply(rec) {
		b.metrics.RecordStale()
		return
	}

	b.metrics.RecordAccepted(string(rec.Kind))
	if b.journal != nil {
		b.journal.Record(rec)
	}
	b.hub.Publish(rec)
}

// PublishCommand forwards a raw command body to the robot's command
// topic. The gateway does not interpret the body.
func (b *Bridge) PublishCommand(id vda.Identity, body []byte) error {
	if b.client == nil || !b.client.IsConnected() {
		return fmt.Errorf("not connected to MQTT broker")
	}

	topic := vda.CommandTopic(b.cfg.Namespace, id)
	token := b.client.Publish(topic, byte(b.cfg.QoS), false, body)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish command to %s: %w", topic, token.Error())
	}
	return nil
}
