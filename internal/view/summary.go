package view

import (
	"fmt"
	"strings"

	"github.com/YelzhanWeb/powerpulse/internal/domain"
)

// NotChosen is shown for any selection the visitor has not made yet
const NotChosen = "Nog niet gekozen"

// ProductName renders "<container> <volume>" once both are chosen
func ProductName(o domain.Order) string {
	if !o.IsPriceable() {
		return NotChosen
	}
	return fmt.Sprintf("%s %s", o.Container, o.Volume)
}

// Summary returns the order recap lines in display order
func Summary(o domain.Order, quantity int) []string {
	flavors := NotChosen
	if len(o.Flavors) > 0 {
		flavors = strings.Join(o.Flavors, ", ")
	}

	return []string{
		"Grootte: " + orNotChosen(string(o.Volume)),
		"Verpakking: " + orNotChosen(string(o.Container)),
		"Smaken: " + flavors,
		fmt.Sprintf("Aantal: %d", quantity),
	}
}

func orNotChosen(s string) string {
	if s == "" {
		return NotChosen
	}
	return s
}
