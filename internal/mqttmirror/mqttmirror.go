// Package mqttmirror mirrors each emitted snapshot onto a configured
// MQTT topic for ground test rigs, grounded on the teacher's
// pervasive MQTT-producer pattern (internal/app/imu_producer.go,
// gps_producer.go, web.go). Connection is best-effort: a broker that
// never connects leaves the mirror permanently inert, logged once,
// never fatal to the aggregator.
package mqttmirror

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Niettzche/Rocket/internal/logging"
)

const sourceTag = "MQTT"

// Mirror publishes snapshot bytes to one topic at QoS 0.
type Mirror struct {
	client mqtt.Client
	topic  string
	ready  bool
}

// Connect attempts to connect to broker with the given client ID. A
// connection failure degrades to a permanently-inert Mirror rather
// than a fatal error, matching the radio transport's contingency for
// an absent dependency.
func Connect(broker, clientID, topic string) *Mirror {
	m := &Mirror{topic: topic}
	if broker == "" {
		logging.Warn(sourceTag, "no broker configured, mirror stubbed")
		return m
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(2 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(2*time.Second) || token.Error() != nil {
		logging.Warn(sourceTag, "connect failed, mirror stubbed: %v", token.Error())
		return m
	}

	m.client = client
	m.ready = true
	return m
}

// Publish sends payload to the configured topic at QoS 0. A publish
// failure is logged and otherwise ignored.
func (m *Mirror) Publish(payload []byte) {
	if !m.ready {
		return
	}
	token := m.client.Publish(m.topic, 0, false, payload)
	if token.WaitTimeout(1*time.Second) && token.Error() != nil {
		logging.Error(sourceTag, "publish failed: %v", token.Error())
	}
}

// Close disconnects the client with a short grace period, matching
// the teacher's client.Disconnect(250) idiom.
func (m *Mirror) Close() {
	if m.ready {
		m.client.Disconnect(250)
	}
}
