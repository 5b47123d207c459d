package domain

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
)

func TestOrder_FlavorsAreIdempotent(t *testing.T) {
	order := NewOrder().WithFlavor("Mango").WithFlavor("Mango")
	if !slices.Equal(order.Flavors, []string{"Mango"}) {
		t.Errorf("expected [Mango], got %v", order.Flavors)
	}

	order = order.WithoutFlavor("Mango").WithoutFlavor("Mango")
	if len(order.Flavors) != 0 {
		t.Errorf("expected no flavors, got %v", order.Flavors)
	}
}

func TestOrder_WithFlavorDoesNotAlias(t *testing.T) {
	base := Order{Flavors: make([]string, 1, 4)}
	base.Flavors[0] = "Aardbei"

	a := base.WithFlavor("Mango")
	b := base.WithFlavor("Banaan")

	if a.Flavors[1] != "Mango" || b.Flavors[1] != "Banaan" {
		t.Errorf("expected independent copies, got %v and %v", a.Flavors, b.Flavors)
	}
}

func TestOrder_JSONEncodesAbsentAsNull(t *testing.T) {
	data, err := json.Marshal(NewOrder())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"volume":null,"container":null,"flavors":[]}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}

	var back Order
	if err := json.Unmarshal([]byte(`{"volume":"1L","container":null,"flavors":["Kokos"]}`), &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.Volume != Volume1L || back.Container != ContainerAbsent {
		t.Errorf("unexpected decode: %+v", back)
	}
}

func TestOrder_Normalize(t *testing.T) {
	table := secondPageTable()
	in := Order{
		Volume:    Volume1_5L,
		Container: ContainerCan,
		Flavors:   []string{"Mango", " ", "Mango", "Banaan"},
	}

	out, issues := in.Normalize(table, DefaultPackagingRule)

	if out.Volume != VolumeAbsent {
		t.Errorf("expected forbidden volume to be cleared, got %s", out.Volume)
	}
	if out.Container != ContainerCan {
		t.Errorf("expected container kept, got %s", out.Container)
	}
	if !slices.Equal(out.Flavors, []string{"Mango", "Banaan"}) {
		t.Errorf("expected [Mango Banaan], got %v", out.Flavors)
	}
	if len(issues) != 3 {
		t.Errorf("expected 3 issues, got %d: %v", len(issues), issues)
	}
}

func TestOrder_NormalizeDropsUnknownLabels(t *testing.T) {
	out, issues := Order{Volume: "2L", Container: "Pak"}.Normalize(secondPageTable(), DefaultPackagingRule)

	if out.Volume != VolumeAbsent || out.Container != ContainerAbsent {
		t.Errorf("expected unknown labels dropped, got %+v", out)
	}
	if out.Flavors == nil {
		t.Error("expected non-nil flavors")
	}
	if len(issues) != 2 {
		t.Errorf("expected 2 issues, got %v", issues)
	}
}

func TestErrors_Matching(t *testing.T) {
	var err error = DefaultPackagingRule.Violation(ContainerCan, Volume1L, true)
	if !errors.Is(err, ErrConstraintViolation) {
		t.Error("expected ErrConstraintViolation")
	}

	var cv *ConstraintViolation
	if !errors.As(err, &cv) || !cv.Cleared || cv.Reason != DefaultPackagingRule.Notice {
		t.Errorf("unexpected violation: %+v", cv)
	}

	inner := errors.New("boom")
	err = &DecodeError{Key: "drinkOrder", Err: inner}
	if !errors.Is(err, ErrPersistenceDecode) || !errors.Is(err, inner) {
		t.Error("expected decode error to match both sentinels")
	}
}

func TestCatalog_Validate(t *testing.T) {
	good := Catalog{Name: "powerpulse", Table: secondPageTable(), Rule: DefaultPackagingRule, Flavors: []string{"Mango", "Kokos"}}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := good
	bad.Flavors = []string{"Mango", "Mango"}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("expected ErrInvalidCatalog for duplicate flavor, got %v", err)
	}

	bad = good
	bad.Rule = PackagingRule{Container: "Pak"}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("expected ErrInvalidCatalog for unknown rule container, got %v", err)
	}

	bad = good
	bad.Table.Volumes = nil
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("expected ErrInvalidCatalog for missing volumes, got %v", err)
	}
}
