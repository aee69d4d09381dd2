// Package memstore is the volatile Store backend: process-local maps
// behind a mutex, auto-incrementing ids, lifetime = process lifetime.
// Used for local development and demo seeding. It is an explicit store
// object owned by the process bootstrap, not a module-level singleton.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/opsdine/resto_backend/models"
	"github.com/opsdine/resto_backend/utils"
)

type Store struct {
	mu sync.RWMutex

	inventory     map[int]*models.InventoryItem
	recipes       map[int]*models.Recipe
	recipeItems   map[int]*models.RecipeItem
	notifications map[int]*models.Notification

	nextInventoryID    int
	nextRecipeID       int
	nextRecipeItemID   int
	nextNotificationID int
}

func New() *Store {
	return &Store{
		inventory:          make(map[int]*models.InventoryItem),
		recipes:            make(map[int]*models.Recipe),
		recipeItems:        make(map[int]*models.RecipeItem),
		notifications:      make(map[int]*models.Notification),
		nextInventoryID:    1,
		nextRecipeID:       1,
		nextRecipeItemID:   1,
		nextNotificationID: 1,
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

/* inventory */

func (s *Store) InventoryItems(ctx context.Context) ([]*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectInventory(func(*models.InventoryItem) bool { return true }), nil
}

func (s *Store) InventoryItemsByCategory(ctx context.Context, category string) ([]*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectInventory(func(item *models.InventoryItem) bool {
		return item.Category == category
	}), nil
}

func (s *Store) LowStockItems(ctx context.Context) ([]*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectInventory(func(item *models.InventoryItem) bool {
		return item.IsLowStock()
	}), nil
}

// collectInventory returns copies sorted by id. Callers hold the lock.
func (s *Store) collectInventory(match func(*models.InventoryItem) bool) []*models.InventoryItem {
	items := make([]*models.InventoryItem, 0, len(s.inventory))
	for _, item := range s.inventory {
		if match(item) {
			clone := *item
			items = append(items, &clone)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (s *Store) InventoryItem(ctx context.Context, id int) (*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.inventory[id]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	clone := *item
	return &clone, nil
}

func (s *Store) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	item.ID = s.nextInventoryID
	s.nextInventoryID++
	item.CreatedAt = now
	item.UpdatedAt = now
	clone := *item
	s.inventory[item.ID] = &clone
	return nil
}

func (s *Store) UpdateInventoryItem(ctx context.Context, id int, input *models.UpdateInventoryItem) (*models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.inventory[id]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	input.Apply(item)
	item.UpdatedAt = time.Now()
	clone := *item
	return &clone, nil
}

// AdjustStock is a read-modify-write, but it runs entirely under the store
// lock so concurrent deltas against the same item cannot lose updates.
func (s *Store) AdjustStock(ctx context.Context, id int, adj *models.StockAdjustment) (*models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.inventory[id]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	newQty := item.CurrentQty.Add(adj.QuantityChange)
	if newQty.IsNegative() {
		return nil, utils.ErrorInsufficientStock
	}
	item.CurrentQty = newQty
	if adj.UnitPrice != nil {
		item.UnitPrice = *adj.UnitPrice
	}
	if adj.TotalPrice != nil {
		item.TotalPrice = *adj.TotalPrice
	}
	item.UpdatedAt = time.Now()
	clone := *item
	return &clone, nil
}

/* recipes */

func (s *Store) Recipes(ctx context.Context) ([]*models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectRecipes(func(*models.Recipe) bool { return true }), nil
}

func (s *Store) RecipesByCategory(ctx context.Context, category string) ([]*models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectRecipes(func(r *models.Recipe) bool { return r.Category == category }), nil
}

func (s *Store) RecipesByOrderType(ctx context.Context, orderType string) ([]*models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectRecipes(func(r *models.Recipe) bool { return r.OrderType == orderType }), nil
}

func (s *Store) collectRecipes(match func(*models.Recipe) bool) []*models.Recipe {
	recipes := make([]*models.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		if match(r) {
			clone := *r
			recipes = append(recipes, &clone)
		}
	}
	sort.Slice(recipes, func(i, j int) bool { return recipes[i].ID < recipes[j].ID })
	return recipes
}

func (s *Store) Recipe(ctx context.Context, id int) (*models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recipes[id]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	clone := *r
	return &clone, nil
}

func (s *Store) RecipeByDish(ctx context.Context, dishName, orderType string) (*models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var fallback *models.Recipe
	for _, r := range s.recipes {
		if r.DishName != dishName {
			continue
		}
		if r.IsActive != nil && !*r.IsActive {
			continue
		}
		if r.OrderType == orderType {
			clone := *r
			return &clone, nil
		}
		if r.OrderType == models.OrderTypeBoth || orderType == models.OrderTypeBoth {
			if fallback == nil || r.ID < fallback.ID {
				fallback = r
			}
		}
	}
	if fallback != nil {
		clone := *fallback
		return &clone, nil
	}
	return nil, utils.ErrorRecordNotFound
}

func (s *Store) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recipes {
		if r.DishName == recipe.DishName && r.OrderType == recipe.OrderType {
			return utils.NewValidationError("dish_name", "order_type")
		}
	}
	now := time.Now()
	recipe.ID = s.nextRecipeID
	s.nextRecipeID++
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	clone := *recipe
	s.recipes[recipe.ID] = &clone
	return nil
}

func (s *Store) UpdateRecipe(ctx context.Context, id int, input *models.UpdateRecipe) (*models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipes[id]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	input.Apply(r)
	r.UpdatedAt = time.Now()
	clone := *r
	return &clone, nil
}

/* recipe items */

func (s *Store) RecipeIngredients(ctx context.Context, recipeID int) ([]*models.RecipeIngredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]*models.RecipeIngredient, 0)
	for _, ri := range s.recipeItems {
		if ri.RecipeID != recipeID {
			continue
		}
		row := &models.RecipeIngredient{RecipeItem: *ri}
		if item, ok := s.inventory[ri.InventoryItemID]; ok {
			row.ItemName = item.Name
			row.ItemUnit = item.Unit
			row.UnitPrice = item.UnitPrice
			row.CurrentQty = item.CurrentQty
			row.IdealQty = item.IdealQty
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (s *Store) RecipeItem(ctx context.Context, id int) (*models.RecipeItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ri, ok := s.recipeItems[id]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	clone := *ri
	return &clone, nil
}

func (s *Store) CreateRecipeItem(ctx context.Context, item *models.RecipeItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipes[item.RecipeID]; !ok {
		return utils.ErrorRecordNotFound
	}
	if _, ok := s.inventory[item.InventoryItemID]; !ok {
		return utils.ErrorRecordNotFound
	}
	item.ID = s.nextRecipeItemID
	s.nextRecipeItemID++
	clone := *item
	s.recipeItems[item.ID] = &clone
	return nil
}

func (s *Store) UpdateRecipeItem(ctx context.Context, id int, input *models.UpdateRecipeItem) (*models.RecipeItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ri, ok := s.recipeItems[id]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	input.Apply(ri)
	clone := *ri
	return &clone, nil
}

func (s *Store) DeleteRecipeItem(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipeItems[id]; !ok {
		return utils.ErrorRecordNotFound
	}
	delete(s.recipeItems, id)
	return nil
}

/* notifications */

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.nextNotificationID
	s.nextNotificationID++
	n.CreatedAt = time.Now()
	if n.IsRead == nil {
		f := false
		n.IsRead = &f
	}
	clone := *n
	s.notifications[n.ID] = &clone
	return nil
}

func (s *Store) Notifications(ctx context.Context, unreadOnly bool) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if unreadOnly && n.IsRead != nil && *n.IsRead {
			continue
		}
		clone := *n
		out = append(out, &clone)
	}
	// newest first
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id int) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	t := true
	n.IsRead = &t
	clone := *n
	return &clone, nil
}
