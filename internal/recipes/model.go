package recipes

import (
	"time"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit;index" json:"name"`
	MeasurementUnit string `gorm:"size:10;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}

type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:60;not null;uniqueIndex" json:"name"`
	Color string `gorm:"size:7;not null;uniqueIndex" json:"color"`
	Slug  string `gorm:"size:200;not null;uniqueIndex" json:"slug"`
}

type Recipe struct {
	ID          uint       `gorm:"primaryKey"`
	AuthorID    uint       `gorm:"not null;index"`
	Author      users.User `gorm:"constraint:OnDelete:CASCADE"`
	Name        string     `gorm:"size:200;not null"`
	Text        string     `gorm:"size:1000;not null"`
	Image       string     `gorm:"size:500"`
	CookingTime int        `gorm:"not null;check:chk_recipe_cooking_time,cooking_time >= 1"`

	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []IngredientRecipe `gorm:"constraint:OnDelete:CASCADE"`

	PubDate   time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time
}

// IngredientRecipe is the quantified use of one ingredient in one recipe.
type IngredientRecipe struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_ingredient_recipe"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_ingredient_recipe;index"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE"`
	Amount       int        `gorm:"not null;check:chk_ingredient_amount,amount >= 1"`
}

// RecipeLink is the (user, recipe) pair shared by favorites and the
// shopping cart. The composite primary key makes each pair unique.
type RecipeLink struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	RecipeID  uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time
}

type Favorite struct {
	RecipeLink
	User   users.User `gorm:"constraint:OnDelete:CASCADE"`
	Recipe Recipe     `gorm:"constraint:OnDelete:CASCADE"`
}

func (Favorite) TableName() string { return FavoritesTable }

type ShoppingCart struct {
	RecipeLink
	User   users.User `gorm:"constraint:OnDelete:CASCADE"`
	Recipe Recipe     `gorm:"constraint:OnDelete:CASCADE"`
}

func (ShoppingCart) TableName() string { return ShoppingCartsTable }

const (
	FavoritesTable     = "favorites"
	ShoppingCartsTable = "shopping_carts"
)

// Models lists the tables owned by this package, in migration order.
func Models() []interface{} {
	return []interface{}{
		&Ingredient{},
		&Tag{},
		&Recipe{},
		&IngredientRecipe{},
		&Favorite{},
		&ShoppingCart{},
	}
}

// AllModels is every table of the service, users first.
func AllModels() []interface{} {
	return append(users.Models(), Models()...)
}
