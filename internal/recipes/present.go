package recipes

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

type TagResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type IngredientAmountResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           users.UserResponse         `json:"author"`
	Ingredients      []IngredientAmountResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// ShortRecipe is the compact form returned by favorite/cart toggles and
// subscription listings.
type ShortRecipe struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func ToShort(r *Recipe) ShortRecipe {
	return ShortRecipe{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

func ToTagResponse(t *Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

// Present renders recipes for viewer, resolving the per-viewer flags with
// one query per relation.
func Present(ctx context.Context, db *gorm.DB, viewer users.Viewer, list []Recipe) ([]RecipeResponse, error) {
	ids := make([]uint, len(list))
	authors := make([]uint, 0, len(list))
	for i := range list {
		ids[i] = list[i].ID
		authors = append(authors, list[i].AuthorID)
	}

	favorited, err := linkedSet(ctx, db, FavoritesTable, viewer, ids)
	if err != nil {
		return nil, err
	}
	inCart, err := linkedSet(ctx, db, ShoppingCartsTable, viewer, ids)
	if err != nil {
		return nil, err
	}
	subscribed, err := users.Subscribed(ctx, db, viewer, authors)
	if err != nil {
		return nil, err
	}

	out := make([]RecipeResponse, len(list))
	for i := range list {
		r := &list[i]
		resp := RecipeResponse{
			ID:               r.ID,
			Tags:             make([]TagResponse, len(r.Tags)),
			Author:           users.ToResponse(&r.Author, subscribed[r.AuthorID]),
			Ingredients:      make([]IngredientAmountResponse, len(r.Ingredients)),
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
		for j := range r.Tags {
			resp.Tags[j] = ToTagResponse(&r.Tags[j])
		}
		for j, line := range r.Ingredients {
			resp.Ingredients[j] = IngredientAmountResponse{
				ID:              line.Ingredient.ID,
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			}
		}
		out[i] = resp
	}
	return out, nil
}

func PresentOne(ctx context.Context, db *gorm.DB, viewer users.Viewer, r *Recipe) (RecipeResponse, error) {
	out, err := Present(ctx, db, viewer, []Recipe{*r})
	if err != nil {
		return RecipeResponse{}, err
	}
	return out[0], nil
}

func linkedSet(ctx context.Context, db *gorm.DB, table string, viewer users.Viewer, recipeIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(recipeIDs))
	if !viewer.Authenticated() || len(recipeIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := db.WithContext(ctx).Table(table).
		Where("user_id = ? AND recipe_id IN ?", viewer.ID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
