package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/YelzhanWeb/powerpulse/internal/adapter/logger"
	"github.com/YelzhanWeb/powerpulse/internal/interfaces"
	"github.com/YelzhanWeb/powerpulse/internal/view"
)

type NotificationHandler struct {
	logger logger.Logger
	out    io.Writer
}

func NewNotificationHandler(logger logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		logger: logger,
		out:    os.Stdout,
	}
}

func (h *NotificationHandler) HandleNotification(ctx context.Context, body []byte) error {
	var msg interfaces.OrderChangedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse notification", "", nil, err)
		return err
	}

	h.logger.Debug("notification_received", fmt.Sprintf("Received %s for session %s", msg.Change, msg.Session),
		msg.Session, map[string]interface{}{
			"page":        msg.Page,
			"change":      msg.Change,
			"quantity":    msg.Quantity,
			"total_price": msg.TotalPrice,
		})

	fmt.Fprintf(h.out, "Order for session %s (%s): %s -> %s x%d, total %s\n",
		msg.Session, msg.Page, msg.Change, view.ProductName(msg.Order), msg.Quantity, msg.TotalPrice)

	return nil
}
