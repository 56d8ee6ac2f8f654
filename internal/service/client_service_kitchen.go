package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-kitchen-sync/models"
)

type clientKitchenService struct {
	entities ClientEntityService
}

func NewClientKitchenService(entities ClientEntityService) ClientKitchenService {
	return &clientKitchenService{entities: entities}
}

func (s *clientKitchenService) SaveInventoryItem(ctx context.Context, userID int64, item models.InventoryItem) (models.InventoryItem, error) {
	return save(ctx, s.entities, userID, item.Key, item, models.InventoryItemToEntity, models.EntityToInventoryItem)
}

func (s *clientKitchenService) ListInventoryItems(ctx context.Context, userID int64) ([]models.InventoryItem, error) {
	return list(ctx, s.entities, userID, models.InventoryItems, models.EntityToInventoryItem)
}

func (s *clientKitchenService) SaveRecipe(ctx context.Context, userID int64, recipe models.Recipe) (models.Recipe, error) {
	return save(ctx, s.entities, userID, recipe.Key, recipe, models.RecipeToEntity, models.EntityToRecipe)
}

func (s *clientKitchenService) ListRecipes(ctx context.Context, userID int64) ([]models.Recipe, error) {
	return list(ctx, s.entities, userID, models.Recipes, models.EntityToRecipe)
}

func (s *clientKitchenService) SaveMealPlanEntry(ctx context.Context, userID int64, entry models.MealPlanEntry) (models.MealPlanEntry, error) {
	return save(ctx, s.entities, userID, entry.Key, entry, models.MealPlanEntryToEntity, models.EntityToMealPlanEntry)
}

func (s *clientKitchenService) ListMealPlanEntries(ctx context.Context, userID int64) ([]models.MealPlanEntry, error) {
	return list(ctx, s.entities, userID, models.MealPlanEntries, models.EntityToMealPlanEntry)
}

func (s *clientKitchenService) SaveShoppingItem(ctx context.Context, userID int64, item models.ShoppingItem) (models.ShoppingItem, error) {
	return save(ctx, s.entities, userID, item.Key, item, models.ShoppingItemToEntity, models.EntityToShoppingItem)
}

func (s *clientKitchenService) ListShoppingItems(ctx context.Context, userID int64) ([]models.ShoppingItem, error) {
	return list(ctx, s.entities, userID, models.ShoppingItems, models.EntityToShoppingItem)
}

func (s *clientKitchenService) Remove(ctx context.Context, userID int64, collection models.Collection, key string) error {
	return s.entities.Delete(ctx, userID, collection, key)
}

// save creates the value when key is empty and updates it otherwise.
func save[T any](
	ctx context.Context,
	entities ClientEntityService,
	userID int64,
	key string,
	value T,
	toEntity func(int64, T) (models.Entity, error),
	fromEntity func(models.Entity) (T, error),
) (T, error) {
	var zero T

	e, err := toEntity(userID, value)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	if key == "" {
		e, err = entities.Create(ctx, userID, e.Collection, e.Payload)
	} else {
		e, err = entities.Update(ctx, userID, e.Collection, key, e.Payload)
	}
	if err != nil {
		return zero, err
	}

	return fromEntity(e)
}

func list[T any](
	ctx context.Context,
	entities ClientEntityService,
	userID int64,
	collection models.Collection,
	fromEntity func(models.Entity) (T, error),
) ([]T, error) {
	stored, err := entities.List(ctx, userID, collection)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(stored))
	for _, e := range stored {
		v, err := fromEntity(e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
