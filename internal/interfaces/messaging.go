package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/powerpulse/internal/domain"
)

// OrderChangedMessage is published on the notifications exchange after every mutation
type OrderChangedMessage struct {
	Session    string            `json:"session"`
	Page       string            `json:"page"`
	Change     domain.ChangeKind `json:"change"`
	Order      domain.Order      `json:"order"`
	Quantity   int               `json:"quantity"`
	UnitPrice  string            `json:"unit_price"`
	TotalPrice string            `json:"total_price"`
	Timestamp  time.Time         `json:"timestamp"`
}

type ChangePublisher interface {
	PublishOrderChanged(ctx context.Context, msg OrderChangedMessage) error
}

type MessageConsumer interface {
	ConsumeOrderChanges(ctx context.Context, handler NotificationHandler) error
}

type NotificationHandler func(ctx context.Context, body []byte) error
