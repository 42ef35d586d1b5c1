// Package notify carries "a job was created" signals between the API service
// and the print executors over RabbitMQ. The signal is a latency optimization
// only: executors poll the durable queue and a lost message costs at most one
// poll interval.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fondaapp/print-fulfillment/shared/rabbitmq"
)

type jobCreatedMessage struct {
	JobID string `json:"job_id"`
}

// Publisher sends job-created notifications.
type Publisher struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

// NewPublisher creates a Publisher on top of a connected RabbitMQ client.
func NewPublisher(client *rabbitmq.Client, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// PublishJobCreated announces a freshly enqueued job.
func (p *Publisher) PublishJobCreated(ctx context.Context, jobID string) error {
	body, err := json.Marshal(jobCreatedMessage{JobID: jobID})
	if err != nil {
		return fmt.Errorf("failed to marshal job notification: %w", err)
	}

	if err := p.client.PublishWithRetry(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish job notification: %w", err)
	}

	p.logger.Debug("job notification published",
		slog.String("job_id", jobID),
	)
	return nil
}

// Nudger is the executor-side hook a consumer pokes when a notification
// arrives.
type Nudger interface {
	Nudge()
}

// Consumer turns job-created notifications into executor nudges.
type Consumer struct {
	client *rabbitmq.Client
	nudger Nudger
	logger *slog.Logger
	tag    string
}

// NewConsumer creates a Consumer identified by tag.
func NewConsumer(client *rabbitmq.Client, nudger Nudger, logger *slog.Logger, tag string) *Consumer {
	return &Consumer{
		client: client,
		nudger: nudger,
		logger: logger,
		tag:    tag,
	}
}

// Run consumes notifications until the context is canceled. Every message is
// acknowledged regardless of content: the durable queue in the database is
// the source of truth, so there is nothing to redeliver.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.client.Consume(c.tag)
	if err != nil {
		return fmt.Errorf("failed to start notification consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("notification consumer stopped")
			return nil

		case delivery, ok := <-deliveries:
			if !ok {
				c.logger.Warn("notification channel closed")
				return nil
			}

			var msg jobCreatedMessage
			if err := json.Unmarshal(delivery.Body, &msg); err != nil {
				c.logger.Warn("dropping malformed notification",
					slog.String("error", err.Error()),
					slog.String("body", string(delivery.Body)),
				)
			} else {
				c.logger.Debug("job notification received",
					slog.String("job_id", msg.JobID),
				)
				c.nudger.Nudge()
			}

			if err := delivery.Ack(false); err != nil {
				c.logger.Error("failed to ack notification",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
