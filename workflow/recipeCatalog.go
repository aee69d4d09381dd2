package workflow

import (
	"context"

	"github.com/opsdine/resto_backend/models"
	"github.com/opsdine/resto_backend/storage"
	"github.com/shopspring/decimal"
)

// RecipeCatalog owns Recipe and RecipeItem records and the joined
// ingredients-with-inventory view.
type RecipeCatalog struct {
	store storage.Store
}

func NewRecipeCatalog(store storage.Store) *RecipeCatalog {
	return &RecipeCatalog{store: store}
}

func (c *RecipeCatalog) List(ctx context.Context) ([]*models.Recipe, error) {
	return c.store.Recipes(ctx)
}

func (c *RecipeCatalog) ListByCategory(ctx context.Context, category string) ([]*models.Recipe, error) {
	return c.store.RecipesByCategory(ctx, category)
}

func (c *RecipeCatalog) ListByOrderType(ctx context.Context, orderType string) ([]*models.Recipe, error) {
	return c.store.RecipesByOrderType(ctx, orderType)
}

func (c *RecipeCatalog) Get(ctx context.Context, id int) (*models.Recipe, error) {
	return c.store.Recipe(ctx, id)
}

func (c *RecipeCatalog) Create(ctx context.Context, input *models.NewRecipe) (*models.Recipe, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	recipe := input.Recipe()
	if err := c.store.CreateRecipe(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (c *RecipeCatalog) Update(ctx context.Context, id int, input *models.UpdateRecipe) (*models.Recipe, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return c.store.UpdateRecipe(ctx, id, input)
}

// IngredientsOf returns each requirement paired with the current inventory
// snapshot. A recipe with zero items is valid (empty slice), but the
// recipe itself must exist.
func (c *RecipeCatalog) IngredientsOf(ctx context.Context, recipeID int) ([]*models.RecipeIngredient, error) {
	if _, err := c.store.Recipe(ctx, recipeID); err != nil {
		return nil, err
	}
	return c.store.RecipeIngredients(ctx, recipeID)
}

func (c *RecipeCatalog) AddIngredient(ctx context.Context, recipeID int, input *models.NewRecipeItem) (*models.RecipeItem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	item := &models.RecipeItem{
		RecipeID:         recipeID,
		InventoryItemID:  input.InventoryItemID,
		QuantityRequired: input.QuantityRequired,
		Unit:             input.Unit,
	}
	if err := c.store.CreateRecipeItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (c *RecipeCatalog) UpdateIngredient(ctx context.Context, id int, input *models.UpdateRecipeItem) (*models.RecipeItem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return c.store.UpdateRecipeItem(ctx, id, input)
}

func (c *RecipeCatalog) RemoveIngredient(ctx context.Context, id int) error {
	return c.store.DeleteRecipeItem(ctx, id)
}

// CostEstimate is derived, never stored: sum(unit_price x quantity_required)
// over the current ingredient rows.
func (c *RecipeCatalog) CostEstimate(ctx context.Context, recipeID int) (decimal.Decimal, error) {
	ingredients, err := c.IngredientsOf(ctx, recipeID)
	if err != nil {
		return decimal.Zero, err
	}
	return models.RecipeCost(ingredients), nil
}
