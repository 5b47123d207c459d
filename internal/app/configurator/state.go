package configurator

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/YelzhanWeb/powerpulse/internal/adapter/logger"
	"github.com/YelzhanWeb/powerpulse/internal/domain"
	"github.com/YelzhanWeb/powerpulse/internal/interfaces"
)

// Storage keys, unchanged from the page so existing visitors keep their order
const (
	QuantityKey = "savedNumber"
	OrderKey    = "drinkOrder"
)

// OrderState owns one visitor's order and quantity and writes both back to
// storage after every mutation. It is not safe for concurrent use.
type OrderState struct {
	store  interfaces.Storage
	scope  string
	table  domain.PriceTable
	rule   domain.PackagingRule
	logger logger.Logger

	order    domain.Order
	quantity int
}

func NewOrderState(store interfaces.Storage, scope string, table domain.PriceTable, rule domain.PackagingRule, logger logger.Logger) *OrderState {
	return &OrderState{
		store:    store,
		scope:    scope,
		table:    table,
		rule:     rule,
		logger:   logger,
		order:    domain.NewOrder(),
		quantity: 1,
	}
}

// Load replaces the in-memory state with what storage holds. Anything
// missing, unreadable or malformed falls back to the defaults.
func (s *OrderState) Load(ctx context.Context) {
	s.quantity = s.loadQuantity(ctx)
	s.order = s.loadOrder(ctx)
}

func (s *OrderState) loadQuantity(ctx context.Context) int {
	raw, ok := s.read(ctx, QuantityKey)
	if !ok {
		return 1
	}

	// older pages may have written "2.0"
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		s.decodeFailed(&domain.DecodeError{Key: QuantityKey, Err: err})
		return 1
	}
	if !d.IsInteger() {
		s.decodeFailed(&domain.DecodeError{Key: QuantityKey, Err: fmt.Errorf("quantity %s is not a whole number", d)})
		return 1
	}
	n := int(d.IntPart())
	if n < 1 {
		s.decodeFailed(&domain.DecodeError{Key: QuantityKey, Err: fmt.Errorf("quantity %d below 1", n)})
		return 1
	}
	return n
}

func (s *OrderState) loadOrder(ctx context.Context) domain.Order {
	raw, ok := s.read(ctx, OrderKey)
	if !ok {
		return domain.NewOrder()
	}

	var stored domain.Order
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.decodeFailed(&domain.DecodeError{Key: OrderKey, Err: err})
		return domain.NewOrder()
	}

	order, issues := stored.Normalize(s.table, s.rule)
	if len(issues) > 0 {
		s.decodeFailed(&domain.DecodeError{Key: OrderKey, Err: fmt.Errorf("corrected: %s", strings.Join(issues, "; "))})
	}
	return order
}

func (s *OrderState) read(ctx context.Context, key string) (string, bool) {
	raw, ok, err := s.store.Get(ctx, s.scope, key)
	if err != nil {
		s.logger.Error("storage_read_failed", "Failed to read stored order, using defaults", s.scope, map[string]interface{}{
			"key": key,
		}, err)
		return "", false
	}
	return raw, ok
}

func (s *OrderState) decodeFailed(err *domain.DecodeError) {
	s.logger.Debug("stored_order_invalid", err.Error(), s.scope, map[string]interface{}{
		"key": err.Key,
	})
}

// SetVolume selects v unless the current container forbids it, in which case
// the order is left unchanged and a *domain.ConstraintViolation is returned.
func (s *OrderState) SetVolume(ctx context.Context, v domain.Volume) error {
	if _, ok := s.table.VolumeSurcharge(v); !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownVolume, v)
	}
	if !s.rule.Allows(s.order.Container, v) {
		return s.rule.Violation(s.order.Container, v, false)
	}

	s.order.Volume = v
	return s.persistOrder(ctx)
}

// SetContainer selects c. A volume that c cannot hold is cleared and the
// cleared state is persisted before the *domain.ConstraintViolation is returned.
func (s *OrderState) SetContainer(ctx context.Context, c domain.Container) error {
	if _, ok := s.table.ContainerSurcharge(c); !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownContainer, c)
	}

	s.order.Container = c

	var violation *domain.ConstraintViolation
	if s.order.Volume != domain.VolumeAbsent && !s.rule.Allows(c, s.order.Volume) {
		violation = s.rule.Violation(c, s.order.Volume, true)
		s.order.Volume = domain.VolumeAbsent
	}

	if err := s.persistOrder(ctx); err != nil {
		return err
	}
	if violation != nil {
		return violation
	}
	return nil
}

// ToggleFlavor adds name when selected and removes it otherwise
func (s *OrderState) ToggleFlavor(ctx context.Context, name string, selected bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty name", domain.ErrUnknownFlavor)
	}

	if selected {
		s.order = s.order.WithFlavor(name)
	} else {
		s.order = s.order.WithoutFlavor(name)
	}
	return s.persistOrder(ctx)
}

func (s *OrderState) Increment(ctx context.Context) error {
	s.quantity++
	return s.persistQuantity(ctx)
}

// Decrement never takes the quantity below 1
func (s *OrderState) Decrement(ctx context.Context) error {
	if s.quantity > 1 {
		s.quantity--
	}
	return s.persistQuantity(ctx)
}

func (s *OrderState) UnitPrice() domain.Price {
	return s.table.UnitPrice(s.order)
}

func (s *OrderState) TotalPrice() domain.Price {
	return s.table.TotalPrice(s.order, s.quantity)
}

// IsVolumeAllowed reports whether v may be picked with the current container
func (s *OrderState) IsVolumeAllowed(v domain.Volume) bool {
	return s.rule.Allows(s.order.Container, v)
}

// Order returns a copy; mutate through the setters
func (s *OrderState) Order() domain.Order {
	return s.order.Clone()
}

func (s *OrderState) Quantity() int {
	return s.quantity
}

func (s *OrderState) persistOrder(ctx context.Context) error {
	data, err := json.Marshal(s.order)
	if err != nil {
		return fmt.Errorf("failed to encode order: %w", err)
	}
	if err := s.store.Set(ctx, s.scope, OrderKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist order: %w", err)
	}
	return nil
}

func (s *OrderState) persistQuantity(ctx context.Context) error {
	if err := s.store.Set(ctx, s.scope, QuantityKey, strconv.Itoa(s.quantity)); err != nil {
		return fmt.Errorf("failed to persist quantity: %w", err)
	}
	return nil
}
