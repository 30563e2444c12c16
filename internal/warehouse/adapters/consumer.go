package adapters

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"basketstore/pkg/events"
	"basketstore/pkg/logger"
	"basketstore/pkg/rabbitmq"
)

// BasketsSoldConsumer consumes BasketsSold events. The handler only
// logs the sale; it exists to exercise the retry and dead-letter path
// end to end.
type BasketsSoldConsumer struct {
	consumer *rabbitmq.Consumer
	log      *logger.Logger
}

// NewBasketsSoldConsumer creates a new consumer for BasketsSold events
func NewBasketsSoldConsumer(conn *rabbitmq.Connection, retry rabbitmq.RetryPolicy, log *logger.Logger) (*BasketsSoldConsumer, error) {
	consumer, err := rabbitmq.NewConsumer(
		conn,
		events.QueueBasketsSold,
		events.ExchangeWarehouse,
		[]string{events.RoutingKeyBasketsSold},
		retry,
		log,
	)
	if err != nil {
		return nil, err
	}

	return &BasketsSoldConsumer{
		consumer: consumer,
		log:      log,
	}, nil
}

// Start starts consuming BasketsSold events
func (c *BasketsSoldConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

type basketsSoldEnvelope struct {
	EventType string             `json:"event_type"`
	TraceID   string             `json:"trace_id"`
	Payload   events.BasketsSold `json:"payload"`
}

func (c *BasketsSoldConsumer) handleMessage(ctx context.Context, body []byte) error {
	var event basketsSoldEnvelope
	if err := json.Unmarshal(body, &event); err != nil {
		c.log.WithContext(ctx).Error("failed to unmarshal BasketsSold event",
			zap.Error(err),
		)
		return err
	}

	c.log.WithContext(ctx).Info("received BasketsSold event",
		zap.Int("quantity", event.Payload.Quantity),
		zap.Float64("total_value", event.Payload.TotalValue),
		zap.String("transaction_id", event.Payload.TransactionID),
		zap.String("trace_id", event.TraceID),
	)

	return nil
}
