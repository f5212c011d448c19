package messaging

import (
	"github.com/sirupsen/logrus"

	"speechwell-server/pkg/webhook"
)

// ResultPublisher is the subset of the AMQP client the listener needs.
type ResultPublisher interface {
	PublishResult(result webhook.SessionResult) error
	IsConnected() bool
}

// AMQPResultListener forwards analyzed session results to the message
// queue. Publish failures are logged and dropped; the webhook response
// must not depend on broker availability.
type AMQPResultListener struct {
	logger    *logrus.Entry
	publisher ResultPublisher
}

// NewAMQPResultListener creates a listener that publishes results via
// the given publisher.
func NewAMQPResultListener(logger *logrus.Logger, publisher ResultPublisher) *AMQPResultListener {
	return &AMQPResultListener{
		logger:    logger.WithField("component", "amqp_listener"),
		publisher: publisher,
	}
}

// OnSessionResult implements the webhook.ResultListener interface
func (l *AMQPResultListener) OnSessionResult(result webhook.SessionResult) {
	if !l.publisher.IsConnected() {
		l.logger.WithField("conversation_id", result.ConversationID).
			Debug("Skipping AMQP publish, broker not connected")
		return
	}

	if err := l.publisher.PublishResult(result); err != nil {
		l.logger.WithError(err).WithField("conversation_id", result.ConversationID).
			Error("Failed to publish session result to AMQP")
	}
}
