// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "fmt"

// Collection names one independently synchronised set of kitchen entities.
// Each collection has its own local snapshot, remote snapshot and writer lock.
type Collection string

const (
	// InventoryItems holds pantry, fridge and freezer stock.
	InventoryItems Collection = "inventory_items"

	// Recipes holds saved recipes.
	Recipes Collection = "recipes"

	// MealPlanEntries holds scheduled meals.
	MealPlanEntries Collection = "meal_plan_entries"

	// ShoppingItems holds shopping list lines.
	ShoppingItems Collection = "shopping_items"
)

// AllCollections lists every collection in a stable order.
var AllCollections = []Collection{
	InventoryItems,
	Recipes,
	MealPlanEntries,
	ShoppingItems,
}

// ParseCollection converts s into a known Collection.
func ParseCollection(s string) (Collection, error) {
	c := Collection(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, s)
	}
	return c, nil
}

// Valid reports whether c is one of AllCollections.
func (c Collection) Valid() bool {
	for _, known := range AllCollections {
		if c == known {
			return true
		}
	}
	return false
}

func (c Collection) String() string {
	return string(c)
}
