// Package relations manages the favorite, shopping cart and follow
// relations between users, recipes and authors.
package relations

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/database"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/recipes"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

// Kind selects the (user, recipe) relation a toggle works on.
type Kind int

const (
	KindFavorite Kind = iota + 1
	KindShoppingCart
)

func (k Kind) String() string {
	switch k {
	case KindFavorite:
		return "favorite"
	case KindShoppingCart:
		return "shopping_cart"
	}
	return "unknown"
}

// Table is the backing table of the relation.
func (k Kind) Table() string {
	switch k {
	case KindFavorite:
		return recipes.FavoritesTable
	case KindShoppingCart:
		return recipes.ShoppingCartsTable
	}
	return ""
}

func (k Kind) label() string {
	switch k {
	case KindFavorite:
		return "favorites"
	case KindShoppingCart:
		return "the shopping cart"
	}
	return "relation"
}

type Manager struct {
	db *gorm.DB
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// AddRecipe links the recipe to the viewer under kind. The recipe must exist
// and the link must be new.
func (m *Manager) AddRecipe(ctx context.Context, viewer users.Viewer, kind Kind, recipeID uint) (*recipes.Recipe, error) {
	if !viewer.Authenticated() {
		return nil, apperr.Unauthenticated()
	}
	if kind.Table() == "" {
		return nil, fmt.Errorf("unknown relation kind %d", kind)
	}

	var recipe recipes.Recipe
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&recipe, recipeID).Error; err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound("recipe not found")
			}
			return fmt.Errorf("load recipe: %w", err)
		}
		exists, err := linkExists(tx, kind, viewer.ID, recipeID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.AlreadyExists("recipe is already in " + kind.label())
		}
		link := recipes.RecipeLink{UserID: viewer.ID, RecipeID: recipeID}
		if err := tx.Table(kind.Table()).Create(&link).Error; err != nil {
			if database.IsDuplicate(err) {
				return apperr.AlreadyExists("recipe is already in " + kind.label())
			}
			return fmt.Errorf("insert %s: %w", kind, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// RemoveRecipe deletes the viewer's link to the recipe under kind.
func (m *Manager) RemoveRecipe(ctx context.Context, viewer users.Viewer, kind Kind, recipeID uint) error {
	if !viewer.Authenticated() {
		return apperr.Unauthenticated()
	}
	if kind.Table() == "" {
		return fmt.Errorf("unknown relation kind %d", kind)
	}

	res := m.db.WithContext(ctx).Table(kind.Table()).
		Where("user_id = ? AND recipe_id = ?", viewer.ID, recipeID).
		Delete(&recipes.RecipeLink{})
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("recipe is not in " + kind.label())
	}
	return nil
}

func (m *Manager) AddFavorite(ctx context.Context, viewer users.Viewer, recipeID uint) (*recipes.Recipe, error) {
	return m.AddRecipe(ctx, viewer, KindFavorite, recipeID)
}

func (m *Manager) RemoveFavorite(ctx context.Context, viewer users.Viewer, recipeID uint) error {
	return m.RemoveRecipe(ctx, viewer, KindFavorite, recipeID)
}

func (m *Manager) AddToCart(ctx context.Context, viewer users.Viewer, recipeID uint) (*recipes.Recipe, error) {
	return m.AddRecipe(ctx, viewer, KindShoppingCart, recipeID)
}

func (m *Manager) RemoveFromCart(ctx context.Context, viewer users.Viewer, recipeID uint) error {
	return m.RemoveRecipe(ctx, viewer, KindShoppingCart, recipeID)
}

// Follow subscribes the viewer to authorID. Following yourself is refused
// before anything is looked up.
func (m *Manager) Follow(ctx context.Context, viewer users.Viewer, authorID uint) (*users.User, error) {
	if !viewer.Authenticated() {
		return nil, apperr.Unauthenticated()
	}
	if viewer.ID == authorID {
		return nil, apperr.SelfReference("you cannot subscribe to yourself")
	}

	var author users.User
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&author, authorID).Error; err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound("author not found")
			}
			return fmt.Errorf("load author: %w", err)
		}
		var n int64
		if err := tx.Model(&users.Follow{}).
			Where("user_id = ? AND author_id = ?", viewer.ID, authorID).
			Count(&n).Error; err != nil {
			return fmt.Errorf("check follow: %w", err)
		}
		if n > 0 {
			return apperr.AlreadyExists("you are already subscribed to this author")
		}
		if err := users.CreateFollow(tx, viewer.ID, authorID); err != nil {
			if database.IsDuplicate(err) {
				return apperr.AlreadyExists("you are already subscribed to this author")
			}
			return fmt.Errorf("insert follow: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// Unfollow removes the viewer's subscription to authorID.
func (m *Manager) Unfollow(ctx context.Context, viewer users.Viewer, authorID uint) error {
	if !viewer.Authenticated() {
		return apperr.Unauthenticated()
	}
	if _, err := users.Get(ctx, m.db, authorID); err != nil {
		return err
	}
	res := m.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", viewer.ID, authorID).
		Delete(&users.Follow{})
	if res.Error != nil {
		return fmt.Errorf("delete follow: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("you are not subscribed to this author")
	}
	return nil
}

func linkExists(tx *gorm.DB, kind Kind, userID, recipeID uint) (bool, error) {
	var n int64
	err := tx.Table(kind.Table()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check %s: %w", kind, err)
	}
	return n > 0, nil
}
