package recipes

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

// ShoppingItem is one aggregated line of a shopping list.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

func (it ShoppingItem) String() string {
	return fmt.Sprintf("* %s (%s) - %d", it.Name, it.MeasurementUnit, it.Amount)
}

// ShoppingListItems sums ingredient amounts over every recipe in the
// viewer's cart, grouped by ingredient name and unit, ordered by name then
// unit.
func ShoppingListItems(ctx context.Context, db *gorm.DB, viewer users.Viewer) ([]ShoppingItem, error) {
	if !viewer.Authenticated() {
		return nil, apperr.Unauthenticated()
	}
	var items []ShoppingItem
	err := db.WithContext(ctx).
		Table("ingredient_recipes").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_recipes.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_recipes.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = ingredient_recipes.recipe_id").
		Where("shopping_carts.user_id = ?", viewer.ID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate shopping list: %w", err)
	}
	return items, nil
}

// RenderShoppingList formats items one per line with no header and no
// trailing newline. No items render as the empty string.
func RenderShoppingList(items []ShoppingItem) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = it.String()
	}
	return strings.Join(lines, "\n")
}

func BuildShoppingList(ctx context.Context, db *gorm.DB, viewer users.Viewer) (string, error) {
	items, err := ShoppingListItems(ctx, db, viewer)
	if err != nil {
		return "", err
	}
	return RenderShoppingList(items), nil
}
