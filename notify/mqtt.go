// path: notify/mqtt.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 2 * time.Second

// MQTT publishes events to a broker topic at QoS 0. Used when
// NOTIFY_MQTT_URL is configured; downstream dispatchers (push, email,
// admin dashboards) subscribe to the topic.
type MQTT struct {
	client mqtt.Client
	topic  string
}

func NewMQTT(brokerURL, clientID, topic string) (*MQTT, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", brokerURL, err)
	}

	return &MQTT{client: client, topic: topic}, nil
}

func (m *MQTT) Notify(_ context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	token := m.client.Publish(m.topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish of %s timed out", ev.Type)
	}
	return token.Error()
}

func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
