package models

import (
	"encoding/json"
	"fmt"
)

// The functions below map each kitchen type to and from the Entity envelope.
// Timestamps and sync bookkeeping are owned by the caller; only Key,
// UserID, Collection, Payload and Hash are set here.

func InventoryItemToEntity(userID int64, item InventoryItem) (Entity, error) {
	return newEntity(userID, InventoryItems, item.Key, item)
}

func EntityToInventoryItem(e Entity) (InventoryItem, error) {
	var item InventoryItem
	if err := decodeEntity(e, InventoryItems, &item); err != nil {
		return InventoryItem{}, err
	}
	item.Key = e.Key
	return item, nil
}

func RecipeToEntity(userID int64, recipe Recipe) (Entity, error) {
	return newEntity(userID, Recipes, recipe.Key, recipe)
}

func EntityToRecipe(e Entity) (Recipe, error) {
	var recipe Recipe
	if err := decodeEntity(e, Recipes, &recipe); err != nil {
		return Recipe{}, err
	}
	recipe.Key = e.Key
	return recipe, nil
}

func MealPlanEntryToEntity(userID int64, entry MealPlanEntry) (Entity, error) {
	return newEntity(userID, MealPlanEntries, entry.Key, entry)
}

func EntityToMealPlanEntry(e Entity) (MealPlanEntry, error) {
	var entry MealPlanEntry
	if err := decodeEntity(e, MealPlanEntries, &entry); err != nil {
		return MealPlanEntry{}, err
	}
	entry.Key = e.Key
	return entry, nil
}

func ShoppingItemToEntity(userID int64, item ShoppingItem) (Entity, error) {
	return newEntity(userID, ShoppingItems, item.Key, item)
}

func EntityToShoppingItem(e Entity) (ShoppingItem, error) {
	var item ShoppingItem
	if err := decodeEntity(e, ShoppingItems, &item); err != nil {
		return ShoppingItem{}, err
	}
	item.Key = e.Key
	return item, nil
}

func newEntity(userID int64, collection Collection, key string, payload any) (Entity, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Entity{}, fmt.Errorf("%w (collection=%s, key=%s): %w", ErrEncodingPayload, collection, key, err)
	}

	return Entity{
		Key:        key,
		UserID:     userID,
		Collection: collection,
		Payload:    raw,
		Hash:       ContentHash(raw),
	}, nil
}

func decodeEntity(e Entity, want Collection, dst any) error {
	if e.Collection != want {
		return fmt.Errorf("%w: want %s, got %s (key=%s)", ErrCollectionMismatch, want, e.Collection, e.Key)
	}
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return fmt.Errorf("%w (collection=%s, key=%s): %w", ErrDecodingPayload, want, e.Key, err)
	}
	return nil
}
