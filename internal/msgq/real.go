package msgq

import (
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// inboundDepth bounds commands held between receives. A controller that
// outruns the daemon by this much loses the oldest overflow.
const inboundDepth = 64

// MQTTChannel is a command channel over an MQTT broker. Commands arrive
// on <base>/cmd, replies go to <base>/reply, and status documents go to
// <base>/status.
type MQTTChannel struct {
	client      paho.Client
	replyTopic  string
	statusTopic string
	in          chan []byte
	ready       chan struct{}
}

// Connect dials the broker and subscribes to the command topic.
func Connect(broker, base, clientID string) (*MQTTChannel, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	c := &MQTTChannel{
		client:      client,
		replyTopic:  base + "/reply",
		statusTopic: base + "/status",
		in:          make(chan []byte, inboundDepth),
		ready:       make(chan struct{}, 1),
	}

	token = client.Subscribe(base+"/cmd", 1, c.onMessage)
	if !token.WaitTimeout(5 * time.Second) {
		client.Disconnect(250)
		return nil, fmt.Errorf("subscribe timeout")
	}
	if err := token.Error(); err != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	return c, nil
}

func (c *MQTTChannel) onMessage(_ paho.Client, m paho.Message) {
	select {
	case c.in <- m.Payload():
	default:
		log.Printf("msgq: inbound queue full, dropping command")
	}
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

// ReceiveNonblocking returns the next pending command, if any.
func (c *MQTTChannel) ReceiveNonblocking() ([]byte, bool) {
	select {
	case m := <-c.in:
		return m, true
	default:
		return nil, false
	}
}

// Ready signals when a command may be pending.
func (c *MQTTChannel) Ready() <-chan struct{} {
	return c.ready
}

// Send publishes a reply to the reply topic.
func (c *MQTTChannel) Send(reply []byte) error {
	// QoS 1: query replies must not be lost on a flaky link.
	token := c.client.Publish(c.replyTopic, 1, false, reply)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish reply: %w", err)
	}
	return nil
}

// PublishStatus publishes a retained status document, so a controller
// connecting later still sees the last session state.
func (c *MQTTChannel) PublishStatus(payload []byte) error {
	token := c.client.Publish(c.statusTopic, 1, true, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish status timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish status: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is active.
func (c *MQTTChannel) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects from the broker.
func (c *MQTTChannel) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
