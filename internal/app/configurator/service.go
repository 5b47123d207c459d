package configurator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/YelzhanWeb/powerpulse/internal/adapter/logger"
	"github.com/YelzhanWeb/powerpulse/internal/app/suggestion"
	"github.com/YelzhanWeb/powerpulse/internal/domain"
	"github.com/YelzhanWeb/powerpulse/internal/interfaces"
	"github.com/YelzhanWeb/powerpulse/internal/view"
)

var _ interfaces.ConfiguratorService = (*Service)(nil)

type Service struct {
	store       interfaces.Storage
	catalog     domain.Catalog
	publisher   interfaces.ChangePublisher
	suggestions suggestion.Provider
	logger      logger.Logger
	now         func() time.Time
	locks       *sessionLocks
}

// NewService wires the configurator for one page. publisher may be nil to
// run without the change feed; suggestions may be nil to disable them.
func NewService(store interfaces.Storage, catalog domain.Catalog, publisher interfaces.ChangePublisher, suggestions suggestion.Provider, logger logger.Logger) *Service {
	if suggestions == nil {
		suggestions = suggestion.None{}
	}
	return &Service{
		store:       store,
		catalog:     catalog,
		publisher:   publisher,
		suggestions: suggestions,
		logger:      logger,
		now:         time.Now,
		locks:       newSessionLocks(),
	}
}

func (s *Service) NewSession(ctx context.Context) (string, error) {
	session := uuid.NewString()
	s.logger.Debug("session_created", "New configurator session", session, nil)
	return session, nil
}

func (s *Service) GetOrder(ctx context.Context, session string) (*interfaces.OrderView, error) {
	if err := validSession(session); err != nil {
		return nil, err
	}
	defer s.locks.lock(session)()

	state, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.render(session, state, ""), nil
}

func (s *Service) SelectVolume(ctx context.Context, session string, volume domain.Volume) (*interfaces.OrderView, error) {
	return s.mutate(ctx, session, domain.ChangeVolumeSelected, func(st *OrderState) error {
		return st.SetVolume(ctx, volume)
	})
}

func (s *Service) SelectContainer(ctx context.Context, session string, container domain.Container) (*interfaces.OrderView, error) {
	return s.mutate(ctx, session, domain.ChangeContainerSelected, func(st *OrderState) error {
		return st.SetContainer(ctx, container)
	})
}

func (s *Service) ToggleFlavor(ctx context.Context, session, flavor string, selected bool) (*interfaces.OrderView, error) {
	if !s.catalog.HasFlavor(flavor) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFlavor, flavor)
	}

	change := domain.ChangeFlavorRemoved
	if selected {
		change = domain.ChangeFlavorAdded
	}
	return s.mutate(ctx, session, change, func(st *OrderState) error {
		return st.ToggleFlavor(ctx, flavor, selected)
	})
}

func (s *Service) Increment(ctx context.Context, session string) (*interfaces.OrderView, error) {
	return s.mutate(ctx, session, domain.ChangeQuantityChanged, func(st *OrderState) error {
		return st.Increment(ctx)
	})
}

func (s *Service) Decrement(ctx context.Context, session string) (*interfaces.OrderView, error) {
	return s.mutate(ctx, session, domain.ChangeQuantityChanged, func(st *OrderState) error {
		return st.Decrement(ctx)
	})
}

func validSession(session string) error {
	if strings.TrimSpace(session) == "" || len(session) > 64 {
		return domain.ErrInvalidSession
	}
	return nil
}

func (s *Service) load(ctx context.Context, session string) (*OrderState, error) {
	if err := validSession(session); err != nil {
		return nil, err
	}

	state := NewOrderState(s.store, session, s.catalog.Table, s.catalog.Rule, s.logger)
	state.Load(ctx)
	return state, nil
}

// mutate loads the session, applies fn and publishes the result. A constraint
// violation still yields a view, carrying the notice for the visitor.
// Calls for the same session run one at a time from load to render.
func (s *Service) mutate(ctx context.Context, session string, change domain.ChangeKind, fn func(*OrderState) error) (*interfaces.OrderView, error) {
	if err := validSession(session); err != nil {
		return nil, err
	}
	defer s.locks.lock(session)()

	state, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}

	err = fn(state)

	var violation *domain.ConstraintViolation
	switch {
	case err == nil:
		s.publish(ctx, session, change, state)
		return s.render(session, state, ""), nil

	case errors.As(err, &violation):
		s.logger.Debug("constraint_violation", violation.Error(), session, map[string]interface{}{
			"container": violation.Container,
			"volume":    violation.Volume,
			"cleared":   violation.Cleared,
		})
		if violation.Cleared {
			s.publish(ctx, session, change, state)
			s.publish(ctx, session, domain.ChangeVolumeCleared, state)
		}
		return s.render(session, state, violation.Reason), err

	default:
		s.logger.Error("order_update_failed", "Failed to update order", session, map[string]interface{}{
			"change": change,
		}, err)
		return nil, err
	}
}

func (s *Service) publish(ctx context.Context, session string, change domain.ChangeKind, state *OrderState) {
	if s.publisher == nil {
		return
	}

	msg := interfaces.OrderChangedMessage{
		Session:    session,
		Page:       s.catalog.Name,
		Change:     change,
		Order:      state.Order(),
		Quantity:   state.Quantity(),
		UnitPrice:  state.UnitPrice().String(),
		TotalPrice: state.TotalPrice().String(),
		Timestamp:  s.now().UTC(),
	}

	if err := s.publisher.PublishOrderChanged(ctx, msg); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish order change", session, map[string]interface{}{
			"change": change,
		}, err)
		return
	}
	s.logger.Debug("order_change_published", "Order change published", session, map[string]interface{}{
		"change": change,
	})
}

func (s *Service) render(session string, state *OrderState, notice string) *interfaces.OrderView {
	order := state.Order()

	v := &interfaces.OrderView{
		Session:     session,
		Page:        s.catalog.Name,
		Title:       s.catalog.Title,
		Order:       order,
		Quantity:    state.Quantity(),
		ProductName: view.ProductName(order),
		UnitPrice:   state.UnitPrice().String(),
		TotalPrice:  state.TotalPrice().String(),
		Summary:     view.Summary(order, state.Quantity()),
		Notice:      notice,
	}

	for _, o := range s.catalog.Table.Volumes {
		v.Volumes = append(v.Volumes, interfaces.OptionView{
			Label:     string(o.Label),
			Surcharge: o.Surcharge.StringFixed(2),
			Selected:  o.Label == order.Volume,
			Allowed:   state.IsVolumeAllowed(o.Label),
		})
	}
	for _, o := range s.catalog.Table.Containers {
		v.Containers = append(v.Containers, interfaces.OptionView{
			Label:     string(o.Label),
			Surcharge: o.Surcharge.StringFixed(2),
			Selected:  o.Label == order.Container,
			Allowed:   true,
		})
	}
	for _, f := range s.catalog.Flavors {
		v.Flavors = append(v.Flavors, interfaces.OptionView{
			Label:    f,
			Selected: order.HasFlavor(f),
			Allowed:  true,
		})
	}
	for _, sg := range s.suggestions.Suggest(order) {
		v.Suggestions = append(v.Suggestions, interfaces.SuggestionView{
			Title:   sg.Title,
			Flavors: sg.Flavors,
			Line:    sg.Line(),
		})
	}

	return v
}
