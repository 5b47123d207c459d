package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// secondPageTable is the variant with the cheaper can and pricier bottle.
func secondPageTable() PriceTable {
	return PriceTable{
		Volumes: []Option[Volume]{
			{Label: Volume330ML, Surcharge: d("1.75")},
			{Label: Volume500ML, Surcharge: d("2.5")},
			{Label: Volume1L, Surcharge: d("4")},
			{Label: Volume1_5L, Surcharge: d("5.25")},
		},
		Containers: []Option[Container]{
			{Label: ContainerCan, Surcharge: d("1")},
			{Label: ContainerBottle, Surcharge: d("1.5")},
		},
		Shipping: d("5.75"),
	}
}

func TestUnitAndTotalPrice(t *testing.T) {
	table := secondPageTable()
	order := Order{Volume: Volume500ML, Container: ContainerBottle, Flavors: []string{"Mango"}}

	unit := table.UnitPrice(order)
	if unit.String() != "4.00" {
		t.Errorf("expected unit price 4.00, got %s", unit)
	}

	total := table.TotalPrice(order, 3)
	if total.String() != "17.75" {
		t.Errorf("expected total price 17.75, got %s", total)
	}
}

func TestTotalPrice_ShippingAddedOnce(t *testing.T) {
	table := secondPageTable()
	order := Order{Volume: Volume330ML, Container: ContainerCan}

	one := table.TotalPrice(order, 1).Amount()
	ten := table.TotalPrice(order, 10).Amount()

	// 10 * 2.75 + 5.75 vs 2.75 + 5.75
	if !ten.Sub(one).Equal(d("24.75")) {
		t.Errorf("expected difference 24.75, got %s", ten.Sub(one))
	}
}

func TestPrice_UnpricedWhenSelectionIncomplete(t *testing.T) {
	table := secondPageTable()

	cases := []Order{
		NewOrder(),
		{Volume: Volume500ML},
		{Container: ContainerBottle},
		{Volume: "2L", Container: ContainerBottle},
	}

	for _, order := range cases {
		if table.UnitPrice(order).IsPriced() {
			t.Errorf("expected unpriced unit for %+v", order)
		}
		total := table.TotalPrice(order, 4)
		if total.IsPriced() {
			t.Errorf("expected unpriced total for %+v", order)
		}
		if total.String() != "0.00" {
			t.Errorf("expected 0.00, got %s", total)
		}
	}
}

func TestPrice_RoundsOnlyAtDisplay(t *testing.T) {
	table := PriceTable{
		Volumes:    []Option[Volume]{{Label: Volume330ML, Surcharge: d("0.333")}},
		Containers: []Option[Container]{{Label: ContainerBottle, Surcharge: d("0")}},
		Shipping:   d("0"),
	}
	order := Order{Volume: Volume330ML, Container: ContainerBottle}

	// 0.333 * 3 = 0.999; rounding the unit first would give 0.99
	if got := table.TotalPrice(order, 3).String(); got != "1.00" {
		t.Errorf("expected 1.00, got %s", got)
	}
}

func TestPackagingRule_Allows(t *testing.T) {
	rule := DefaultPackagingRule

	for _, v := range []Volume{Volume330ML, Volume500ML, Volume1L, Volume1_5L} {
		forbidden := v == Volume1L || v == Volume1_5L

		if got := rule.Allows(ContainerCan, v); got == forbidden {
			t.Errorf("can with %s: expected allowed=%v, got %v", v, !forbidden, got)
		}
		if !rule.Allows(ContainerBottle, v) {
			t.Errorf("bottle with %s: expected allowed", v)
		}
		if !rule.Allows(ContainerAbsent, v) {
			t.Errorf("no container with %s: expected allowed", v)
		}
	}
}
