package recipes

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/database"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

type IngredientLine struct {
	ID     uint
	Amount int
}

// RecipeInput carries the writable fields of a recipe. Image is the stored
// media URL; an empty Image on update keeps the current picture.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	Tags        []uint
	Ingredients []IngredientLine
}

// Validate checks everything that can be checked without the database.
func (in RecipeInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("name", "this field is required")
	}
	if strings.TrimSpace(in.Text) == "" {
		return apperr.Validation("text", "this field is required")
	}
	if in.CookingTime < 1 {
		return apperr.Validation("cooking_time", "must be at least 1")
	}
	if len(in.Tags) == 0 {
		return apperr.Validation("tags", "select at least one tag")
	}
	seenTags := make(map[uint]struct{}, len(in.Tags))
	for _, id := range in.Tags {
		if _, dup := seenTags[id]; dup {
			return apperr.Validation("tags", "tags must not repeat")
		}
		seenTags[id] = struct{}{}
	}
	if len(in.Ingredients) == 0 {
		return apperr.Validation("ingredients", "select at least one ingredient")
	}
	seenIngredients := make(map[uint]struct{}, len(in.Ingredients))
	for _, line := range in.Ingredients {
		if line.Amount < 1 {
			return apperr.Validation("ingredients", "amount must be at least 1")
		}
		if _, dup := seenIngredients[line.ID]; dup {
			return apperr.Validation("ingredients", "ingredients must not repeat")
		}
		seenIngredients[line.ID] = struct{}{}
	}
	return nil
}

// Create inserts the recipe, its ingredient rows and its tag set in one
// transaction.
func Create(ctx context.Context, db *gorm.DB, viewer users.Viewer, in RecipeInput) (*Recipe, error) {
	if !viewer.Authenticated() {
		return nil, apperr.Unauthenticated()
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Image == "" {
		return nil, apperr.Validation("image", "this field is required")
	}

	recipe := Recipe{
		AuthorID:    viewer.ID,
		Name:        in.Name,
		Text:        in.Text,
		Image:       in.Image,
		CookingTime: in.CookingTime,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := loadTags(tx, in.Tags)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, in.Ingredients); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		if err := insertIngredients(tx, recipe.ID, in.Ingredients); err != nil {
			return err
		}
		if err := tx.Model(&recipe).Omit("Tags.*").Association("Tags").Append(tags); err != nil {
			return fmt.Errorf("attach tags: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return Get(ctx, db, recipe.ID)
}

// Update replaces the ingredient rows and tag set wholesale and rewrites the
// scalar fields. Only the author or an admin may update.
func Update(ctx context.Context, db *gorm.DB, viewer users.Viewer, id uint, in RecipeInput) (*Recipe, error) {
	if !viewer.Authenticated() {
		return nil, apperr.Unauthenticated()
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := loadOwned(tx, viewer, id)
		if err != nil {
			return err
		}
		if err := in.Validate(); err != nil {
			return err
		}
		tags, err := loadTags(tx, in.Tags)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, in.Ingredients); err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&IngredientRecipe{}).Error; err != nil {
			return fmt.Errorf("clear ingredients: %w", err)
		}
		if err := insertIngredients(tx, recipe.ID, in.Ingredients); err != nil {
			return err
		}
		if err := tx.Model(recipe).Omit("Tags.*").Association("Tags").Replace(tags); err != nil {
			return fmt.Errorf("replace tags: %w", err)
		}

		fields := map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
		}
		if in.Image != "" {
			fields["image"] = in.Image
		}
		if err := tx.Model(recipe).Omit(clause.Associations).Updates(fields).Error; err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return Get(ctx, db, id)
}

// Delete removes the recipe together with its ingredient rows, tag links,
// favorites and cart entries. It returns the deleted recipe's image URL.
func Delete(ctx context.Context, db *gorm.DB, viewer users.Viewer, id uint) (string, error) {
	if !viewer.Authenticated() {
		return "", apperr.Unauthenticated()
	}

	var image string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := loadOwned(tx, viewer, id)
		if err != nil {
			return err
		}
		image = recipe.Image

		if err := tx.Where("recipe_id = ?", id).Delete(&IngredientRecipe{}).Error; err != nil {
			return fmt.Errorf("delete ingredients: %w", err)
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("delete tag links: %w", err)
		}
		for _, table := range []string{FavoritesTable, ShoppingCartsTable} {
			if err := tx.Table(table).Where("recipe_id = ?", id).Delete(&RecipeLink{}).Error; err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		if err := tx.Delete(recipe).Error; err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		return nil
	})
	return image, err
}

// Get loads a recipe with its author, tags and ingredients.
func Get(ctx context.Context, db *gorm.DB, id uint) (*Recipe, error) {
	var r Recipe
	err := withDetails(db.WithContext(ctx)).First(&r, id).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound("recipe not found")
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return &r, nil
}

// Exists reports whether a recipe with id is stored.
func Exists(tx *gorm.DB, id uint) (bool, error) {
	var n int64
	if err := tx.Model(&Recipe{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check recipe: %w", err)
	}
	return n > 0, nil
}

func withDetails(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id ASC") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredient_recipes.id ASC") }).
		Preload("Ingredients.Ingredient")
}

func loadOwned(tx *gorm.DB, viewer users.Viewer, id uint) (*Recipe, error) {
	var recipe Recipe
	if err := tx.First(&recipe, id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound("recipe not found")
		}
		return nil, fmt.Errorf("load recipe: %w", err)
	}
	if recipe.AuthorID != viewer.ID && !viewer.IsAdmin() {
		return nil, apperr.Forbidden("only the author can change this recipe")
	}
	return &recipe, nil
}

func loadTags(tx *gorm.DB, ids []uint) ([]Tag, error) {
	var tags []Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	if len(tags) != len(ids) {
		return nil, apperr.Validation("tags", "unknown tag")
	}
	return tags, nil
}

func checkIngredients(tx *gorm.DB, lines []IngredientLine) error {
	ids := make([]uint, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
	}
	var n int64
	if err := tx.Model(&Ingredient{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return fmt.Errorf("check ingredients: %w", err)
	}
	if int(n) != len(ids) {
		return apperr.Validation("ingredients", "unknown ingredient")
	}
	return nil
}

func insertIngredients(tx *gorm.DB, recipeID uint, lines []IngredientLine) error {
	rows := make([]IngredientRecipe, len(lines))
	for i, l := range lines {
		rows[i] = IngredientRecipe{RecipeID: recipeID, IngredientID: l.ID, Amount: l.Amount}
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		if database.IsDuplicate(err) {
			return apperr.Validation("ingredients", "ingredients must not repeat")
		}
		return fmt.Errorf("insert ingredients: %w", err)
	}
	return nil
}
