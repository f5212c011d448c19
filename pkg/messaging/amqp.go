package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"speechwell-server/pkg/errors"
	"speechwell-server/pkg/metrics"
	"speechwell-server/pkg/webhook"
)

// AMQPConfig holds AMQP client configuration
type AMQPConfig struct {
	URL          string
	QueueName    string
	ExchangeName string
	RoutingKey   string
}

// AMQPClient publishes analyzed session results to a message queue so
// downstream consumers can pick them up for archival or review.
type AMQPClient struct {
	logger    *logrus.Logger
	config    AMQPConfig
	conn      *amqp.Connection
	channel   *amqp.Channel
	connected bool
	connMutex sync.RWMutex
	stopChan  chan struct{}
}

// NewAMQPClient creates a new AMQP client
func NewAMQPClient(logger *logrus.Logger, config AMQPConfig) *AMQPClient {
	if config.RoutingKey == "" {
		config.RoutingKey = config.QueueName
	}

	return &AMQPClient{
		logger:   logger,
		config:   config,
		stopChan: make(chan struct{}),
	}
}

// Connect establishes a connection to the AMQP server and declares the
// result queue. It fails fast when the broker is unreachable so startup
// does not hang.
func (c *AMQPClient) Connect() error {
	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if c.connected {
		return nil
	}

	if c.config.URL == "" || c.config.QueueName == "" {
		return fmt.Errorf("AMQP URL or queue name not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connChan := make(chan struct {
		conn *amqp.Connection
		err  error
	}, 1)

	go func() {
		conn, err := amqp.Dial(c.config.URL)
		select {
		case <-ctx.Done():
			if conn != nil {
				conn.Close()
			}
		case connChan <- struct {
			conn *amqp.Connection
			err  error
		}{conn, err}:
		}
	}()

	var conn *amqp.Connection
	var err error
	select {
	case result := <-connChan:
		conn = result.conn
		err = result.err
	case <-ctx.Done():
		c.countConnectionError("dial_timeout")
		return fmt.Errorf("connection to AMQP server timed out after 5 seconds")
	}

	if err != nil {
		c.countConnectionError("dial_failed")
		return fmt.Errorf("failed to connect to AMQP server: %w", err)
	}
	c.conn = conn

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		c.countConnectionError("channel_failed")
		return fmt.Errorf("failed to open AMQP channel: %w", err)
	}
	c.channel = channel

	_, err = channel.QueueDeclare(
		c.config.QueueName,
		true,  // Durable
		false, // Delete when unused
		false, // Exclusive
		false, // No-wait
		nil,   // Arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		c.countConnectionError("queue_declare_failed")
		return fmt.Errorf("failed to declare AMQP queue: %w", err)
	}

	c.connected = true
	c.setConnectionGauge(1)
	c.logger.WithFields(logrus.Fields{
		"url":   c.config.URL,
		"queue": c.config.QueueName,
	}).Info("Connected to AMQP server")

	// Fresh stop channel in case this is a reconnect
	c.stopChan = make(chan struct{})
	go c.monitorConnection()

	return nil
}

// Disconnect closes the AMQP connection
func (c *AMQPClient) Disconnect() {
	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if !c.connected {
		return
	}

	close(c.stopChan)

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}

	c.connected = false
	c.setConnectionGauge(0)
	c.logger.Info("Disconnected from AMQP server")
}

// IsConnected returns the connection status
func (c *AMQPClient) IsConnected() bool {
	c.connMutex.RLock()
	defer c.connMutex.RUnlock()
	return c.connected
}

// PublishResult publishes an analyzed session result to the queue as
// a persistent JSON message.
func (c *AMQPClient) PublishResult(result webhook.SessionResult) error {
	if !c.IsConnected() {
		c.countPublish("failed")
		return errors.Wrap(errors.ErrPublishFailed, "not connected to AMQP server")
	}

	bodyBytes, err := json.Marshal(result)
	if err != nil {
		c.countPublish("failed")
		return errors.Wrap(err, "failed to marshal session result to JSON")
	}

	c.connMutex.RLock()
	defer c.connMutex.RUnlock()

	if !c.connected || c.channel == nil {
		c.countPublish("failed")
		return errors.Wrap(errors.ErrPublishFailed, "lost AMQP connection before publishing")
	}

	err = c.channel.Publish(
		c.config.ExchangeName,
		c.config.RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         bodyBytes,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		c.countPublish("failed")
		return errors.Wrap(errors.ErrPublishFailed, err.Error())
	}

	c.countPublish("ok")
	c.logger.WithFields(logrus.Fields{
		"conversation_id": result.ConversationID,
		"queue":           c.config.QueueName,
	}).Debug("Published session result to AMQP")
	return nil
}

// monitorConnection watches for the broker closing the connection and
// updates the connection state so publishes fail cleanly.
func (c *AMQPClient) monitorConnection() {
	c.connMutex.RLock()
	conn := c.conn
	stopChan := c.stopChan
	c.connMutex.RUnlock()

	if conn == nil {
		return
	}

	closeChan := make(chan *amqp.Error, 1)
	conn.NotifyClose(closeChan)

	select {
	case <-stopChan:
		return
	case amqpErr := <-closeChan:
		c.connMutex.Lock()
		c.connected = false
		c.connMutex.Unlock()
		c.setConnectionGauge(0)
		c.countConnectionError("connection_closed")

		if amqpErr != nil {
			c.logger.WithError(amqpErr).Warn("AMQP connection closed by server")
		} else {
			c.logger.Info("AMQP connection closed")
		}
	}
}

func (c *AMQPClient) countPublish(status string) {
	if metrics.IsMetricsEnabled() && metrics.GetRegistry() != nil {
		metrics.AMQPPublishedMessages.WithLabelValues(c.config.QueueName, status).Inc()
	}
}

func (c *AMQPClient) countConnectionError(errorType string) {
	if metrics.IsMetricsEnabled() && metrics.GetRegistry() != nil {
		metrics.AMQPConnectionErrors.WithLabelValues(errorType).Inc()
	}
}

func (c *AMQPClient) setConnectionGauge(value float64) {
	if metrics.IsMetricsEnabled() && metrics.GetRegistry() != nil {
		metrics.AMQPConnectionStatus.Set(value)
	}
}
