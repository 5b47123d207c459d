package configurator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/YelzhanWeb/powerpulse/internal/adapter/logger"
	"github.com/YelzhanWeb/powerpulse/internal/adapter/storage"
	"github.com/YelzhanWeb/powerpulse/internal/app/suggestion"
	"github.com/YelzhanWeb/powerpulse/internal/domain"
	"github.com/YelzhanWeb/powerpulse/internal/interfaces"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []interfaces.OrderChangedMessage
	err      error
}

func (p *recordingPublisher) PublishOrderChanged(ctx context.Context, msg interfaces.OrderChangedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func newService(pub interfaces.ChangePublisher) *Service {
	c := testCatalog()
	fixed := suggestion.Fixed{Combos: [][]string{{"Aardbei", "Chocolade", "Vanille"}}}
	return NewService(storage.NewInMemoryStorage(), c, pub, fixed, logger.Nop())
}

func TestService_NewSession(t *testing.T) {
	svc := newService(nil)
	session, err := svc.NewSession(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(session); err != nil {
		t.Errorf("expected uuid session, got %q", session)
	}
}

func TestService_GetOrderEmpty(t *testing.T) {
	svc := newService(nil)

	v, err := svc.GetOrder(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.TotalPrice != "0.00" || v.UnitPrice != "0.00" {
		t.Errorf("expected unpriced view, got %s / %s", v.UnitPrice, v.TotalPrice)
	}
	if v.ProductName != "Nog niet gekozen" {
		t.Errorf("unexpected product name %q", v.ProductName)
	}
	if len(v.Volumes) != 4 || len(v.Containers) != 2 || len(v.Flavors) != 11 {
		t.Errorf("unexpected option counts %d/%d/%d", len(v.Volumes), len(v.Containers), len(v.Flavors))
	}
	if len(v.Suggestions) != 0 {
		t.Errorf("expected no suggestions before selection, got %v", v.Suggestions)
	}
}

func TestService_FullFlow(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newService(pub)

	steps := []func() (*interfaces.OrderView, error){
		func() (*interfaces.OrderView, error) { return svc.SelectVolume(ctx, "s1", domain.Volume500ML) },
		func() (*interfaces.OrderView, error) { return svc.SelectContainer(ctx, "s1", domain.ContainerBottle) },
		func() (*interfaces.OrderView, error) { return svc.ToggleFlavor(ctx, "s1", "Mango", true) },
		func() (*interfaces.OrderView, error) { return svc.Increment(ctx, "s1") },
		func() (*interfaces.OrderView, error) { return svc.Increment(ctx, "s1") },
	}

	var v *interfaces.OrderView
	for i, step := range steps {
		var err error
		if v, err = step(); err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
	}

	if v.UnitPrice != "4.00" || v.TotalPrice != "17.75" {
		t.Errorf("expected 4.00 / 17.75, got %s / %s", v.UnitPrice, v.TotalPrice)
	}
	if v.ProductName != "Flesje 500ML" {
		t.Errorf("unexpected product name %q", v.ProductName)
	}
	if len(v.Suggestions) != 1 || v.Suggestions[0].Line != "Aardbei + Chocolade + Vanille" {
		t.Errorf("unexpected suggestions %+v", v.Suggestions)
	}

	if len(pub.messages) != 5 {
		t.Fatalf("expected 5 published changes, got %d", len(pub.messages))
	}
	last := pub.messages[4]
	if last.Change != domain.ChangeQuantityChanged || last.Quantity != 3 || last.TotalPrice != "17.75" {
		t.Errorf("unexpected last message %+v", last)
	}
	if pub.messages[2].Change != domain.ChangeFlavorAdded {
		t.Errorf("expected flavor_added, got %s", pub.messages[2].Change)
	}

	// a fresh read of the same session sees the persisted order
	again, err := svc.GetOrder(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Quantity != 3 || again.TotalPrice != "17.75" {
		t.Errorf("expected persisted state, got quantity %d total %s", again.Quantity, again.TotalPrice)
	}
}

func TestService_ContainerClearsVolume(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newService(pub)

	svc.SelectVolume(ctx, "s1", domain.Volume1L)
	v, err := svc.SelectContainer(ctx, "s1", domain.ContainerCan)

	var cv *domain.ConstraintViolation
	if !errors.As(err, &cv) || !cv.Cleared {
		t.Fatalf("expected cleared ConstraintViolation, got %v", err)
	}
	if v == nil {
		t.Fatal("expected a view alongside the violation")
	}
	if v.Notice != domain.DefaultPackagingRule.Notice {
		t.Errorf("unexpected notice %q", v.Notice)
	}
	if v.Order.Volume != domain.VolumeAbsent {
		t.Errorf("expected volume cleared, got %s", v.Order.Volume)
	}

	for _, o := range v.Volumes {
		want := o.Label != "1L" && o.Label != "1,5L"
		if o.Allowed != want {
			t.Errorf("volume %s: expected allowed=%v", o.Label, want)
		}
	}

	if len(pub.messages) != 3 {
		t.Fatalf("expected 3 published changes, got %d", len(pub.messages))
	}
	if got := pub.messages[1]; got.Change != domain.ChangeContainerSelected || got.Order.Container != domain.ContainerCan {
		t.Errorf("expected container_selected for Blikje, got %+v", got)
	}
	if got := pub.messages[2].Change; got != domain.ChangeVolumeCleared {
		t.Errorf("expected volume_cleared to be published, got %s", got)
	}
}

func TestService_VolumeRejected(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newService(pub)

	svc.SelectContainer(ctx, "s1", domain.ContainerCan)
	v, err := svc.SelectVolume(ctx, "s1", domain.Volume1_5L)

	var cv *domain.ConstraintViolation
	if !errors.As(err, &cv) || cv.Cleared {
		t.Fatalf("expected rejecting ConstraintViolation, got %v", err)
	}
	if v == nil || v.Notice == "" {
		t.Fatalf("expected view with notice, got %+v", v)
	}
	if len(pub.messages) != 1 {
		t.Errorf("expected rejected change not to be published, got %d messages", len(pub.messages))
	}
}

func TestService_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	if _, err := svc.ToggleFlavor(ctx, "s1", "Drop", true); !errors.Is(err, domain.ErrUnknownFlavor) {
		t.Errorf("expected ErrUnknownFlavor, got %v", err)
	}
	if _, err := svc.GetOrder(ctx, "  "); !errors.Is(err, domain.ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession, got %v", err)
	}
	if _, err := svc.SelectVolume(ctx, "s1", "5L"); !errors.Is(err, domain.ErrUnknownVolume) {
		t.Errorf("expected ErrUnknownVolume, got %v", err)
	}
}

func TestService_PublishFailureDoesNotFailMutation(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("channel closed")}
	svc := newService(pub)

	v, err := svc.Increment(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", v.Quantity)
	}
}

func TestService_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	svc.Increment(ctx, "a")
	v, _ := svc.GetOrder(ctx, "b")
	if v.Quantity != 1 {
		t.Errorf("expected session b untouched, got quantity %d", v.Quantity)
	}
}

// slowStorage widens the window between reading and writing a session
type slowStorage struct {
	*storage.InMemoryStorage
	delay time.Duration
}

func (s slowStorage) Get(ctx context.Context, scope, key string) (string, bool, error) {
	time.Sleep(s.delay)
	return s.InMemoryStorage.Get(ctx, scope, key)
}

func TestService_ConcurrentIncrementsOnOneSession(t *testing.T) {
	ctx := context.Background()
	store := slowStorage{InMemoryStorage: storage.NewInMemoryStorage(), delay: time.Millisecond}
	pub := &recordingPublisher{}
	svc := NewService(store, testCatalog(), pub, nil, logger.Nop())

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Increment(ctx, "s1"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}

	v, err := svc.GetOrder(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Quantity != workers+1 {
		t.Errorf("expected quantity %d after %d concurrent increments, got %d", workers+1, workers, v.Quantity)
	}
	if len(pub.messages) != workers {
		t.Errorf("expected %d published changes, got %d", workers, len(pub.messages))
	}
	if n := svc.locks.size(); n != 0 {
		t.Errorf("expected session locks released, %d left", n)
	}
}

func TestService_DifferentSessionsDoNotBlock(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	unlock := svc.locks.lock("a")
	defer unlock()

	done := make(chan struct{})
	go func() {
		svc.Increment(ctx, "b")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session b waited on session a")
	}
}
