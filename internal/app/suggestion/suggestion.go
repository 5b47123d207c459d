package suggestion

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/YelzhanWeb/powerpulse/internal/domain"
)

// Suggestion is a display-only flavor combination for the chosen drink
type Suggestion struct {
	Title   string
	Flavors []string
}

// Line joins the flavors the way the page prints them
func (s Suggestion) Line() string {
	return strings.Join(s.Flavors, " + ")
}

type Provider interface {
	Suggest(order domain.Order) []Suggestion
}

func title(o domain.Order) string {
	return fmt.Sprintf("Powerpulse %s %s", o.Container, o.Volume)
}

// None never suggests anything
type None struct{}

func (None) Suggest(domain.Order) []Suggestion { return nil }

// Fixed renders the same predefined combos for every priceable order
type Fixed struct {
	Combos [][]string
}

func (f Fixed) Suggest(o domain.Order) []Suggestion {
	if !o.IsPriceable() {
		return nil
	}
	out := make([]Suggestion, 0, len(f.Combos))
	for _, combo := range f.Combos {
		flavors := make([]string, len(combo))
		copy(flavors, combo)
		out = append(out, Suggestion{Title: title(o), Flavors: flavors})
	}
	return out
}

// Random builds Count combos of Size flavors. Each combo starts with the
// visitor's own picks and is topped up with random catalog flavors.
type Random struct {
	Catalog []string
	Count   int
	Size    int

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(catalog []string, count, size int, seed uint64) *Random {
	return &Random{
		Catalog: catalog,
		Count:   count,
		Size:    size,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (r *Random) Suggest(o domain.Order) []Suggestion {
	if !o.IsPriceable() || r.Count <= 0 || r.Size <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Suggestion, 0, r.Count)
	for i := 0; i < r.Count; i++ {
		out = append(out, Suggestion{Title: title(o), Flavors: r.combo(o.Flavors)})
	}
	return out
}

func (r *Random) combo(selected []string) []string {
	combo := make([]string, 0, r.Size)
	seen := make(map[string]bool, r.Size)
	for _, f := range selected {
		if len(combo) == r.Size {
			break
		}
		if !seen[f] {
			combo = append(combo, f)
			seen[f] = true
		}
	}

	var pool []string
	for _, f := range r.Catalog {
		if !seen[f] {
			pool = append(pool, f)
		}
	}
	r.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	for _, f := range pool {
		if len(combo) == r.Size {
			break
		}
		combo = append(combo, f)
	}
	return combo
}
