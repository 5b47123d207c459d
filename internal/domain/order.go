package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Order represents the drink selection a visitor is configuring
type Order struct {
	Volume    Volume    `json:"volume"`
	Container Container `json:"container"`
	Flavors   []string  `json:"flavors"`
}

// NewOrder returns an order with nothing selected
func NewOrder() Order {
	return Order{Flavors: []string{}}
}

// IsPriceable reports whether both volume and container are chosen
func (o Order) IsPriceable() bool {
	return o.Volume != VolumeAbsent && o.Container != ContainerAbsent
}

func (o Order) HasFlavor(name string) bool {
	return slices.Contains(o.Flavors, name)
}

// WithFlavor returns a copy of the order with name appended, unless it is already present
func (o Order) WithFlavor(name string) Order {
	out := o.Clone()
	if !out.HasFlavor(name) {
		out.Flavors = append(out.Flavors, name)
	}
	return out
}

// WithoutFlavor returns a copy of the order with every occurrence of name removed
func (o Order) WithoutFlavor(name string) Order {
	out := o.Clone()
	out.Flavors = slices.DeleteFunc(out.Flavors, func(f string) bool { return f == name })
	return out
}

func (o Order) Clone() Order {
	out := o
	out.Flavors = make([]string, len(o.Flavors))
	copy(out.Flavors, o.Flavors)
	return out
}

// Normalize drops labels the catalog does not know, blank and duplicate flavors,
// and a volume the packaging rule forbids for the chosen container.
// It returns the issues it corrected.
func (o Order) Normalize(table PriceTable, rule PackagingRule) (Order, []string) {
	var issues []string
	out := NewOrder()

	if o.Volume != VolumeAbsent {
		if _, ok := table.VolumeSurcharge(o.Volume); ok {
			out.Volume = o.Volume
		} else {
			issues = append(issues, fmt.Sprintf("unknown volume %q", o.Volume))
		}
	}

	if o.Container != ContainerAbsent {
		if _, ok := table.ContainerSurcharge(o.Container); ok {
			out.Container = o.Container
		} else {
			issues = append(issues, fmt.Sprintf("unknown container %q", o.Container))
		}
	}

	for _, f := range o.Flavors {
		f = strings.TrimSpace(f)
		if f == "" {
			issues = append(issues, "blank flavor")
			continue
		}
		if out.HasFlavor(f) {
			issues = append(issues, fmt.Sprintf("duplicate flavor %q", f))
			continue
		}
		out.Flavors = append(out.Flavors, f)
	}

	if out.Volume != VolumeAbsent && !rule.Allows(out.Container, out.Volume) {
		issues = append(issues, fmt.Sprintf("volume %s not allowed in %s", out.Volume, out.Container))
		out.Volume = VolumeAbsent
	}

	return out, issues
}

// ConstraintViolation reports a volume/container pairing the packaging rule forbids
type ConstraintViolation struct {
	Container Container
	Volume    Volume
	Reason    string
	// Cleared is set when the offending volume was removed from the order
	Cleared bool
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("%s: %s", ErrConstraintViolation.Error(), e.Reason)
}

func (e *ConstraintViolation) Unwrap() error {
	return ErrConstraintViolation
}

// DecodeError reports persisted order data that could not be used
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: key %s: %v", ErrPersistenceDecode.Error(), e.Key, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrPersistenceDecode, e.Err}
}

var (
	ErrConstraintViolation = errors.New("constraint violation")
	ErrPersistenceDecode   = errors.New("persistence decode error")
	ErrUnknownVolume       = errors.New("unknown volume")
	ErrUnknownContainer    = errors.New("unknown container")
	ErrUnknownFlavor       = errors.New("unknown flavor")
	ErrInvalidCatalog      = errors.New("invalid catalog")
	ErrInvalidSession      = errors.New("invalid session")
)
