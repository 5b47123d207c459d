package interfaces

import (
	"context"

	"github.com/YelzhanWeb/powerpulse/internal/domain"
)

// ConfiguratorService drives one OrderState per session on behalf of the view layer
type ConfiguratorService interface {
	NewSession(ctx context.Context) (string, error)
	GetOrder(ctx context.Context, session string) (*OrderView, error)
	SelectVolume(ctx context.Context, session string, volume domain.Volume) (*OrderView, error)
	SelectContainer(ctx context.Context, session string, container domain.Container) (*OrderView, error)
	ToggleFlavor(ctx context.Context, session, flavor string, selected bool) (*OrderView, error)
	Increment(ctx context.Context, session string) (*OrderView, error)
	Decrement(ctx context.Context, session string) (*OrderView, error)
}

// OrderView is everything a page needs to render the configurator
type OrderView struct {
	Session     string           `json:"session"`
	Page        string           `json:"page"`
	Title       string           `json:"title,omitempty"`
	Order       domain.Order     `json:"order"`
	Quantity    int              `json:"quantity"`
	ProductName string           `json:"product_name"`
	UnitPrice   string           `json:"unit_price"`
	TotalPrice  string           `json:"total_price"`
	Summary     []string         `json:"summary"`
	Volumes     []OptionView     `json:"volumes"`
	Containers  []OptionView     `json:"containers"`
	Flavors     []OptionView     `json:"flavors"`
	Suggestions []SuggestionView `json:"suggestions,omitempty"`
	Notice      string           `json:"notice,omitempty"`
}

type OptionView struct {
	Label     string `json:"label"`
	Surcharge string `json:"surcharge,omitempty"`
	Selected  bool   `json:"selected"`
	Allowed   bool   `json:"allowed"`
}

type SuggestionView struct {
	Title   string   `json:"title"`
	Flavors []string `json:"flavors"`
	Line    string   `json:"line"`
}
