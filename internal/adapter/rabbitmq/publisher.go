package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/YelzhanWeb/powerpulse/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderChangesExchange fans every order change out to all subscribers
const OrderChangesExchange = "order_changes_fanout"

type publisher struct {
	conn Connection
}

func NewPublisher(conn Connection) interfaces.ChangePublisher {
	return &publisher{conn: conn}
}

func (p *publisher) PublishOrderChanged(ctx context.Context, msg interfaces.OrderChangedMessage) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(OrderChangesExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(ctx, OrderChangesExchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   msg.Timestamp,
		Type:        string(msg.Change),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}
