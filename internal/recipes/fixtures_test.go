package recipes

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/database/dbtest"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t, AllModels()...)
}

func mkUser(t *testing.T, db *gorm.DB, name string) users.Viewer {
	t.Helper()
	u := users.User{
		Email:        name + "@example.com",
		Username:     name,
		FirstName:    name,
		LastName:     "Test",
		PasswordHash: "x",
		Role:         users.RoleUser,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return users.ViewerOf(&u)
}

func mkIngredient(t *testing.T, db *gorm.DB, name, unit string) uint {
	t.Helper()
	ing := Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ing).Error; err != nil {
		t.Fatalf("create ingredient %s: %v", name, err)
	}
	return ing.ID
}

var tagSeq int

func mkTag(t *testing.T, db *gorm.DB, slug string) uint {
	t.Helper()
	tagSeq++
	tag := Tag{Name: slug, Color: fmt.Sprintf("#%06X", tagSeq), Slug: slug}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("create tag %s: %v", slug, err)
	}
	return tag.ID
}

func mkRecipe(t *testing.T, db *gorm.DB, author users.Viewer, name string, tags []uint, lines ...IngredientLine) *Recipe {
	t.Helper()
	r, err := Create(context.Background(), db, author, RecipeInput{
		Name:        name,
		Text:        name + " text",
		Image:       "http://localhost/media/recipes/" + name + ".jpg",
		CookingTime: 10,
		Tags:        tags,
		Ingredients: lines,
	})
	if err != nil {
		t.Fatalf("create recipe %s: %v", name, err)
	}
	return r
}

func link(t *testing.T, db *gorm.DB, table string, userID, recipeID uint) {
	t.Helper()
	if err := db.Table(table).Create(&RecipeLink{UserID: userID, RecipeID: recipeID}).Error; err != nil {
		t.Fatalf("link %s: %v", table, err)
	}
}

func line(id uint, amount int) IngredientLine {
	return IngredientLine{ID: id, Amount: amount}
}

func countRows(t *testing.T, db *gorm.DB, table, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Table(table).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
