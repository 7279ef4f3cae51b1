// v1
// internal/telemetry/mqtt.go
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const mqttDisconnectQuiesceMs = 250

// MQTTConfig describes the broker connection.
type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

// mqttPublisher mirrors the subset of mqtt.Client used by the sink.
type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTSink publishes each bin on <prefix>/<bin_id>/telemetry.
type MQTTSink struct {
	client mqttPublisher
	prefix string
	qos    byte
}

// NewMQTTSink connects to the broker.
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker: %w", token.Error())
	}
	return newMQTTSink(client, cfg.TopicPrefix, cfg.QoS), nil
}

func newMQTTSink(client mqttPublisher, prefix string, qos byte) *MQTTSink {
	if prefix == "" {
		prefix = "ssacity/bins"
	}
	return &MQTTSink{client: client, prefix: prefix, qos: qos}
}

// Name labels the sink in logs and metrics.
func (m *MQTTSink) Name() string { return "mqtt" }

// Publish sends each reading to its bin topic and waits for the broker.
func (m *MQTTSink) Publish(ctx context.Context, batch Batch) error {
	for _, r := range batch.Readings() {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal reading %s: %w", r.BinID, err)
		}
		topic := m.prefix + "/" + r.BinID + "/telemetry"
		token := m.client.Publish(topic, m.qos, false, payload)
		select {
		case <-token.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish to topic %s: %w", topic, err)
		}
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTTSink) Close() error {
	m.client.Disconnect(mqttDisconnectQuiesceMs)
	return nil
}
