package domain

import (
	"fmt"
	"slices"
)

// Catalog describes one configurator page: its prices, packaging rule and flavors
type Catalog struct {
	Name    string
	Title   string
	Table   PriceTable
	Rule    PackagingRule
	Flavors []string
}

// Validate applies catalog consistency rules
func (c Catalog) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCatalog)
	}
	if len(c.Table.Volumes) == 0 {
		return fmt.Errorf("%w: page %s has no volumes", ErrInvalidCatalog, c.Name)
	}
	if len(c.Table.Containers) == 0 {
		return fmt.Errorf("%w: page %s has no containers", ErrInvalidCatalog, c.Name)
	}
	if c.Table.Shipping.IsNegative() {
		return fmt.Errorf("%w: page %s has negative shipping", ErrInvalidCatalog, c.Name)
	}

	seenVol := make(map[Volume]bool)
	for _, o := range c.Table.Volumes {
		if o.Label == VolumeAbsent || seenVol[o.Label] {
			return fmt.Errorf("%w: page %s has blank or duplicate volume %q", ErrInvalidCatalog, c.Name, o.Label)
		}
		if o.Surcharge.IsNegative() {
			return fmt.Errorf("%w: volume %s has negative surcharge", ErrInvalidCatalog, o.Label)
		}
		seenVol[o.Label] = true
	}

	seenCont := make(map[Container]bool)
	for _, o := range c.Table.Containers {
		if o.Label == ContainerAbsent || seenCont[o.Label] {
			return fmt.Errorf("%w: page %s has blank or duplicate container %q", ErrInvalidCatalog, c.Name, o.Label)
		}
		if o.Surcharge.IsNegative() {
			return fmt.Errorf("%w: container %s has negative surcharge", ErrInvalidCatalog, o.Label)
		}
		seenCont[o.Label] = true
	}

	if c.Rule.Container != ContainerAbsent && !seenCont[c.Rule.Container] {
		return fmt.Errorf("%w: packaging rule names unknown container %s", ErrInvalidCatalog, c.Rule.Container)
	}
	for _, v := range c.Rule.Forbidden {
		if !seenVol[v] {
			return fmt.Errorf("%w: packaging rule names unknown volume %s", ErrInvalidCatalog, v)
		}
	}

	for i, f := range c.Flavors {
		if f == "" || slices.Contains(c.Flavors[:i], f) {
			return fmt.Errorf("%w: page %s has blank or duplicate flavor %q", ErrInvalidCatalog, c.Name, f)
		}
	}

	return nil
}

func (c Catalog) HasFlavor(name string) bool {
	return slices.Contains(c.Flavors, name)
}
