package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Option is a selectable label together with its unit surcharge
type Option[L ~string] struct {
	Label     L
	Surcharge decimal.Decimal
}

// PriceTable holds the per-page surcharges. Options keep their configured order.
type PriceTable struct {
	Volumes    []Option[Volume]
	Containers []Option[Container]
	Shipping   decimal.Decimal
}

func (t PriceTable) VolumeSurcharge(v Volume) (decimal.Decimal, bool) {
	return lookup(t.Volumes, v)
}

func (t PriceTable) ContainerSurcharge(c Container) (decimal.Decimal, bool) {
	return lookup(t.Containers, c)
}

func lookup[L ~string](opts []Option[L], label L) (decimal.Decimal, bool) {
	i := slices.IndexFunc(opts, func(o Option[L]) bool { return o.Label == label })
	if i < 0 {
		return decimal.Zero, false
	}
	return opts[i].Surcharge, true
}

// UnitPrice is volume surcharge plus container surcharge, or Unpriced
// while either is missing.
func (t PriceTable) UnitPrice(o Order) Price {
	if !o.IsPriceable() {
		return Unpriced
	}
	vol, ok := t.VolumeSurcharge(o.Volume)
	if !ok {
		return Unpriced
	}
	cont, ok := t.ContainerSurcharge(o.Container)
	if !ok {
		return Unpriced
	}
	return PriceOf(vol.Add(cont))
}

// TotalPrice multiplies the unit price by quantity and adds shipping once.
func (t PriceTable) TotalPrice(o Order, quantity int) Price {
	unit := t.UnitPrice(o)
	if !unit.IsPriced() {
		return Unpriced
	}
	return PriceOf(unit.Amount().Mul(decimal.NewFromInt(int64(quantity))).Add(t.Shipping))
}

// Price is an unrounded money amount. The zero value is the unpriced sentinel.
type Price struct {
	amount decimal.Decimal
	priced bool
}

var Unpriced = Price{}

func PriceOf(amount decimal.Decimal) Price {
	return Price{amount: amount, priced: true}
}

func (p Price) IsPriced() bool {
	return p.priced
}

func (p Price) Amount() decimal.Decimal {
	if !p.priced {
		return decimal.Zero
	}
	return p.amount
}

// String rounds to cents for display
func (p Price) String() string {
	return p.Amount().StringFixed(2)
}

// PackagingRule forbids a container from holding some volumes
type PackagingRule struct {
	Container Container
	Forbidden []Volume
	Notice    string
}

// DefaultPackagingRule: a can holds neither of the two largest sizes.
var DefaultPackagingRule = PackagingRule{
	Container: ContainerCan,
	Forbidden: []Volume{Volume1L, Volume1_5L},
	Notice:    "Blikje kan niet in 1 liter en 1,5 liter verpakt worden",
}

// Allows reports whether volume v may be combined with container c
func (r PackagingRule) Allows(c Container, v Volume) bool {
	if c == ContainerAbsent || c != r.Container {
		return true
	}
	return !slices.Contains(r.Forbidden, v)
}

// Violation builds the error returned when c and v cannot be combined
func (r PackagingRule) Violation(c Container, v Volume, cleared bool) *ConstraintViolation {
	return &ConstraintViolation{
		Container: c,
		Volume:    v,
		Reason:    r.Notice,
		Cleared:   cleared,
	}
}
