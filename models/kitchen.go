package models

import "time"

// InventoryItem is a unit of stock kept in the kitchen.
type InventoryItem struct {
	// Key is the entity key; it is carried by the envelope, not the payload.
	Key string `json:"-"`

	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`

	// Location is where the item is kept (pantry, fridge, freezer).
	Location string `json:"location,omitempty"`

	// Barcode is the scanned product code, if any.
	Barcode string `json:"barcode,omitempty"`

	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Ingredient is a single line of a recipe.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity,omitempty"`
	Unit     string  `json:"unit,omitempty"`
}

// Recipe is a saved recipe.
type Recipe struct {
	Key string `json:"-"`

	Title       string       `json:"title"`
	Servings    int          `json:"servings,omitempty"`
	PrepMinutes int          `json:"prep_minutes,omitempty"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
	Steps       []string     `json:"steps,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
}

// MealPlanEntry schedules a recipe (or a free-form meal) on a day.
type MealPlanEntry struct {
	Key string `json:"-"`

	Day time.Time `json:"day"`

	// Meal is the slot of the day (breakfast, lunch, dinner, snack).
	Meal string `json:"meal"`

	// RecipeKey references a Recipe entity; empty for free-form meals.
	RecipeKey string `json:"recipe_key,omitempty"`
	Note      string `json:"note,omitempty"`
	Servings  int    `json:"servings,omitempty"`
}

// ShoppingItem is one line of the shopping list.
type ShoppingItem struct {
	Key string `json:"-"`

	Name     string  `json:"name"`
	Quantity float64 `json:"quantity,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Category string  `json:"category,omitempty"`
	Checked  bool    `json:"checked"`
}
