// Package mqtt mirrors committed render-registry state to an external renderer over MQTT.
package mqtt

import (
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	// defaultConnectTimeout is the maximum time to wait for initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2
)

var (
	// ErrConnectionFailed is returned when the broker cannot be reached.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed is returned when a publish is not acknowledged.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrInvalidQoS is returned for QoS levels above 2.
	ErrInvalidQoS = errors.New("mqtt: invalid qos")
)

// Config selects the broker and the topic namespace of the bridge.
type Config struct {
	// Broker is a URL such as tcp://localhost:1883.
	Broker   string
	ClientID string
	Username string
	Password string
	// Topic is the prefix every bridge topic hangs off.
	Topic string
	QoS   byte
}

// Publisher sends one message. Client implements it over paho.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// Client is a connected paho client.
type Client struct {
	client pahomqtt.Client
	cfg    Config
}

// Connect dials the broker. The broker publishes a retained offline status on
// <topic>/status if the editor disappears without closing.
func Connect(cfg Config) (*Client, error) {
	if cfg.QoS > maxQoS {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQoS, cfg.QoS)
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)
	opts.SetWill(StatusTopic(cfg.Topic), statusPayload("offline", cfg.ClientID), 1, true)

	c := &Client{client: pahomqtt.NewClient(opts), cfg: cfg}
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if err := c.Publish(StatusTopic(cfg.Topic), 1, true, []byte(statusPayload("online", cfg.ClientID))); err != nil {
		c.client.Disconnect(defaultDisconnectQuiesce)
		return nil, err
	}
	return c, nil
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %s: timeout after %v", ErrPublishFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}
	return nil
}

// Close publishes a graceful offline status and disconnects.
func (c *Client) Close() error {
	if c.client.IsConnected() {
		_ = c.Publish(StatusTopic(c.cfg.Topic), 1, true, []byte(statusPayload("offline", c.cfg.ClientID)))
	}
	c.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}

func statusPayload(status, clientID string) string {
	return fmt.Sprintf(`{"status":%q,"client_id":%q,"timestamp":%q}`,
		status, clientID, time.Now().UTC().Format(time.RFC3339))
}
