package adapters

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"basketstore/internal/storefront/ports"
	"basketstore/pkg/events"
	"basketstore/pkg/logger"
	"basketstore/pkg/rabbitmq"
)

// RabbitMQPublisher implements EventPublisher using RabbitMQ. The fact
// type alone decides the routing key; the table below is the complete
// set of facts this service emits.
type RabbitMQPublisher struct {
	publisher *rabbitmq.Publisher
	log       *logger.Logger
}

// NewRabbitMQPublisher creates a new RabbitMQ event publisher bound to
// the storefront exchange.
func NewRabbitMQPublisher(publisher *rabbitmq.Publisher, log *logger.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		publisher: publisher,
		log:       log,
	}
}

var _ ports.EventPublisher = (*RabbitMQPublisher)(nil)

// Publish routes a fact by its type and emits it wrapped in the
// standard envelope. A broker failure is logged and swallowed so a
// committed state change is never rolled back over messaging; an
// unknown fact type is a programming error and is logged and dropped.
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
	case events.CustomerRegistered, *events.CustomerRegistered:
		return events.RoutingKeyCustomerRegistered, nil
	case events.CartFinalized, *events.CartFinalized:
		return events.RoutingKeyCartFinalized, nil
	case events.OrderCreated, *events.OrderCreated:
		return events.RoutingKeyOrderCreated, nil
	default:
		return "", fmt.Errorf("no routing key for fact type %T", fact)
	}
}
