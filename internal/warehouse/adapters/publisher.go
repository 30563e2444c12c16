package adapters

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"basketstore/internal/warehouse/ports"
	"basketstore/pkg/events"
	"basketstore/pkg/logger"
	"basketstore/pkg/rabbitmq"
)

// RabbitMQPublisher implements EventPublisher using RabbitMQ, bound to
// the warehouse exchange. The fact type alone decides the routing key.
type RabbitMQPublisher struct {
	publisher *rabbitmq.Publisher
	log       *logger.Logger
}

// NewRabbitMQPublisher creates a new RabbitMQ event publisher
func NewRabbitMQPublisher(publisher *rabbitmq.Publisher, log *logger.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		publisher: publisher,
		log:       log,
	}
}

var _ ports.EventPublisher = (*RabbitMQPublisher)(nil)

// Publish routes a fact by its type and emits it in the standard
// envelope. Broker failures are logged and swallowed; unknown fact
// types are logged and dropped.
func (p *RabbitMQPublisher) Publish(ctx context.Context, fact interface{}) error {
	if p.publisher == nil {
		p.log.WithContext(ctx).Warn("broker disabled, dropping event",
			zap.String("fact_type", fmt.Sprintf("%T", fact)),
		)
		return nil
	}

	routingKey, err := routingKeyFor(fact)
	if err != nil {
		p.log.WithContext(ctx).Error("dropping fact with no route",
			zap.Error(err),
		)
		return nil
	}

	event := events.NewEvent(routingKey, logger.GetTraceID(ctx), fact)
	if err := p.publisher.Publish(ctx, routingKey, event); err != nil {
		p.log.WithContext(ctx).Error("failed to publish event",
			zap.Error(err),
			zap.String("routing_key", routingKey),
		)
		return nil
	}
	return nil
}

// PublishAll emits the facts one by one in argument order.
func (p *RabbitMQPublisher) PublishAll(ctx context.Context, facts ...interface{}) error {
	for _, fact := range facts {
		if err := p.Publish(ctx, fact); err != nil {
			return err
		}
	}
	return nil
}

func routingKeyFor(fact interface{}) (string, error) {
	switch fact.(type) {
	case events.DeliveryReceived, *events.DeliveryReceived:
		return events.RoutingKeyDeliveryReceived, nil
	case events.BasketsSold, *events.BasketsSold:
		return events.RoutingKeyBasketsSold, nil
	case events.BasketsDisposed, *events.BasketsDisposed:
		return events.RoutingKeyBasketsDisposed, nil
	default:
		return "", fmt.Errorf("no routing key for fact type %T", fact)
	}
}
