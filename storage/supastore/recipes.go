package supastore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/opsdine/resto_backend/models"
	"github.com/opsdine/resto_backend/utils"
	"github.com/shopspring/decimal"
)

type recipeRow struct {
	ID           int             `json:"id"`
	DishName     string          `json:"dish_name"`
	OrderType    string          `json:"order_type"`
	Description  *string         `json:"description"`
	Category     *string         `json:"category"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	IsActive     *bool           `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (row *recipeRow) toRecipe() *models.Recipe {
	r := &models.Recipe{
		ID:           row.ID,
		DishName:     row.DishName,
		OrderType:    row.OrderType,
		SellingPrice: row.SellingPrice,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.Description != nil {
		r.Description = *row.Description
	}
	if row.Category != nil {
		r.Category = *row.Category
	}
	return r
}

func recipePayload(recipe *models.Recipe) map[string]any {
	payload := map[string]any{
		"dish_name":     recipe.DishName,
		"order_type":    recipe.OrderType,
		"selling_price": recipe.SellingPrice,
	}
	if recipe.Description != "" {
		payload["description"] = recipe.Description
	}
	if recipe.Category != "" {
		payload["category"] = recipe.Category
	}
	if recipe.IsActive != nil {
		payload["is_active"] = *recipe.IsActive
	}
	return payload
}

func recipeUpdatePayload(input *models.UpdateRecipe) map[string]any {
	payload := map[string]any{}
	if input.DishName != nil {
		payload["dish_name"] = *input.DishName
	}
	if input.OrderType != nil {
		payload["order_type"] = *input.OrderType
	}
	if input.Description != nil {
		payload["description"] = *input.Description
	}
	if input.Category != nil {
		payload["category"] = *input.Category
	}
	if input.SellingPrice != nil {
		payload["selling_price"] = *input.SellingPrice
	}
	if input.IsActive != nil {
		payload["is_active"] = *input.IsActive
	}
	return payload
}

func (s *Store) listRecipes(ctx context.Context, query url.Values) ([]*models.Recipe, error) {
	query.Set("order", "id.asc")
	raw, err := s.do(ctx, http.MethodGet, "/recipes", query, nil, "")
	if err != nil {
		return nil, err
	}
	var rows []recipeRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, utils.NewStorageError("decode recipe rows", err)
	}
	recipes := make([]*models.Recipe, 0, len(rows))
	for i := range rows {
		recipes = append(recipes, rows[i].toRecipe())
	}
	return recipes, nil
}

func (s *Store) Recipes(ctx context.Context) ([]*models.Recipe, error) {
	return s.listRecipes(ctx, url.Values{})
}

func (s *Store) RecipesByCategory(ctx context.Context, category string) ([]*models.Recipe, error) {
	return s.listRecipes(ctx, url.Values{"category": {eq(category)}})
}

func (s *Store) RecipesByOrderType(ctx context.Context, orderType string) ([]*models.Recipe, error) {
	return s.listRecipes(ctx, url.Values{"order_type": {eq(orderType)}})
}

func (s *Store) Recipe(ctx context.Context, id int) (*models.Recipe, error) {
	raw, err := s.single(ctx, "/recipes", url.Values{"id": {eq(id)}})
	if err != nil {
		return nil, err
	}
	var row recipeRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, utils.NewStorageError("decode recipe row", err)
	}
	return row.toRecipe(), nil
}

func (s *Store) RecipeByDish(ctx context.Context, dishName, orderType string) (*models.Recipe, error) {
	query := url.Values{
		"dish_name":  {eq(dishName)},
		"is_active":  {"eq.true"},
		"order_type": {"in.(" + strings.Join([]string{quoteCSV(orderType), quoteCSV(models.OrderTypeBoth)}, ",") + ")"},
	}
	candidates, err := s.listRecipes(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	for _, r := range candidates {
		if r.OrderType == orderType {
			return r, nil
		}
	}
	return candidates[0], nil
}

// quoteCSV protects values carrying commas or reserved characters inside
// an in.(...) filter.
func quoteCSV(v string) string {
	if strings.ContainsAny(v, ",() ") {
		return `"` + v + `"`
	}
	return v
}

func (s *Store) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	existing, err := s.listRecipes(ctx, url.Values{
		"dish_name":  {eq(recipe.DishName)},
		"order_type": {eq(recipe.OrderType)},
	})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return utils.NewValidationError("dish_name", "order_type")
	}
	raw, err := s.do(ctx, http.MethodPost, "/recipes", nil, recipePayload(recipe), "return=representation")
	if err != nil {
		return err
	}
	var rows []recipeRow
	if err := json.Unmarshal(raw, &rows); err != nil || len(rows) == 0 {
		return utils.NewStorageError("decode created recipe row", err)
	}
	*recipe = *rows[0].toRecipe()
	return nil
}

func (s *Store) UpdateRecipe(ctx context.Context, id int, input *models.UpdateRecipe) (*models.Recipe, error) {
	payload := recipeUpdatePayload(input)
	if len(payload) == 0 {
		return s.Recipe(ctx, id)
	}
	raw, err := s.do(ctx, http.MethodPatch, "/recipes", url.Values{"id": {eq(id)}}, payload, "return=representation")
	if err != nil {
		return nil, err
	}
	var rows []recipeRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, utils.NewStorageError("decode updated recipe row", err)
	}
	if len(rows) == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	return rows[0].toRecipe(), nil
}

/* recipe items */

type recipeItemRow struct {
	ID               int             `json:"id"`
	RecipeID         int             `json:"recipe_id"`
	InventoryItemID  int             `json:"inventory_item_id"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
	Unit             *string         `json:"unit"`
	// resource embedding: ?select=*,inventory_items(...)
	InventoryItem *inventoryRow `json:"inventory_items"`
}

func (row *recipeItemRow) toRecipeItem() *models.RecipeItem {
	item := &models.RecipeItem{
		ID:               row.ID,
		RecipeID:         row.RecipeID,
		InventoryItemID:  row.InventoryItemID,
		QuantityRequired: row.QuantityRequired,
	}
	if row.Unit != nil {
		item.Unit = *row.Unit
	}
	return item
}

func (row *recipeItemRow) toIngredient() *models.RecipeIngredient {
	ing := &models.RecipeIngredient{RecipeItem: *row.toRecipeItem()}
	if row.InventoryItem != nil {
		ing.ItemName = row.InventoryItem.ItemName
		ing.ItemUnit = row.InventoryItem.UnitOfMeasurement
		ing.UnitPrice = row.InventoryItem.UnitPrice
		ing.CurrentQty = row.InventoryItem.CurrentQty
		ing.IdealQty = row.InventoryItem.IdealQty
	}
	return ing
}

func (s *Store) RecipeIngredients(ctx context.Context, recipeID int) ([]*models.RecipeIngredient, error) {
	query := url.Values{
		"recipe_id": {eq(recipeID)},
		"select":    {"*,inventory_items(id,item_name,unit_of_measurement,unit_price,current_qty,ideal_qty)"},
		"order":     {"id.asc"},
	}
	raw, err := s.do(ctx, http.MethodGet, "/recipe_items", query, nil, "")
	if err != nil {
		return nil, err
	}
	var rows []recipeItemRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, utils.NewStorageError("decode recipe item rows", err)
	}
	ingredients := make([]*models.RecipeIngredient, 0, len(rows))
	for i := range rows {
		ingredients = append(ingredients, rows[i].toIngredient())
	}
	return ingredients, nil
}

func (s *Store) RecipeItem(ctx context.Context, id int) (*models.RecipeItem, error) {
	raw, err := s.single(ctx, "/recipe_items", url.Values{"id": {eq(id)}})
	if err != nil {
		return nil, err
	}
	var row recipeItemRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, utils.NewStorageError("decode recipe item row", err)
	}
	return row.toRecipeItem(), nil
}

func (s *Store) CreateRecipeItem(ctx context.Context, item *models.RecipeItem) error {
	// referential checks the hosted schema also enforces; doing them here
	// keeps NotFound semantics identical across backends
	if _, err := s.Recipe(ctx, item.RecipeID); err != nil {
		return err
	}
	if _, err := s.InventoryItem(ctx, item.InventoryItemID); err != nil {
		return err
	}
	payload := map[string]any{
		"recipe_id":         item.RecipeID,
		"inventory_item_id": item.InventoryItemID,
		"quantity_required": item.QuantityRequired,
	}
	if item.Unit != "" {
		payload["unit"] = item.Unit
	}
	raw, err := s.do(ctx, http.MethodPost, "/recipe_items", nil, payload, "return=representation")
	if err != nil {
		return err
	}
	var rows []recipeItemRow
	if err := json.Unmarshal(raw, &rows); err != nil || len(rows) == 0 {
		return utils.NewStorageError("decode created recipe item row", err)
	}
	*item = *rows[0].toRecipeItem()
	return nil
}

func (s *Store) UpdateRecipeItem(ctx context.Context, id int, input *models.UpdateRecipeItem) (*models.RecipeItem, error) {
	payload := map[string]any{}
	if input.QuantityRequired != nil {
		payload["quantity_required"] = *input.QuantityRequired
	}
	if input.Unit != nil {
		payload["unit"] = *input.Unit
	}
	if len(payload) == 0 {
		return s.RecipeItem(ctx, id)
	}
	raw, err := s.do(ctx, http.MethodPatch, "/recipe_items", url.Values{"id": {eq(id)}}, payload, "return=representation")
	if err != nil {
		return nil, err
	}
	var rows []recipeItemRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, utils.NewStorageError("decode updated recipe item row", err)
	}
	if len(rows) == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	return rows[0].toRecipeItem(), nil
}

func (s *Store) DeleteRecipeItem(ctx context.Context, id int) error {
	raw, err := s.do(ctx, http.MethodDelete, "/recipe_items", url.Values{"id": {eq(id)}}, nil, "return=representation")
	if err != nil {
		return err
	}
	var rows []recipeItemRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return utils.NewStorageError("decode deleted recipe item rows", err)
	}
	if len(rows) == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
