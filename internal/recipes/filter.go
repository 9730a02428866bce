package recipes

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

// Criteria narrows a recipe listing. All set criteria are ANDed.
type Criteria struct {
	Author           *uint
	Tags             []string // any of these slugs
	IsFavorited      bool
	IsInShoppingCart bool
}

// CriteriaFromQuery parses ?author=&tags=&tags=&is_favorited=&is_in_shopping_cart=.
func CriteriaFromQuery(c *gin.Context) (Criteria, error) {
	var cr Criteria
	if raw := c.Query("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return cr, apperr.Validation("author", "must be a user id")
		}
		author := uint(id)
		cr.Author = &author
	}
	for _, slug := range c.QueryArray("tags") {
		if slug = strings.TrimSpace(slug); slug != "" {
			cr.Tags = append(cr.Tags, slug)
		}
	}
	var err error
	if cr.IsFavorited, err = queryBool(c, "is_favorited"); err != nil {
		return cr, err
	}
	if cr.IsInShoppingCart, err = queryBool(c, "is_in_shopping_cart"); err != nil {
		return cr, err
	}
	return cr, nil
}

func queryBool(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.Validation(name, "must be 1, 0, true or false")
	}
	return v, nil
}

// Scope applies cr to a query over recipes. The favorited and cart flags
// only restrict the result for an authenticated viewer asking for true;
// anything else leaves the listing unfiltered.
func (cr Criteria) Scope(viewer users.Viewer) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if cr.Author != nil {
			tx = tx.Where("recipes.author_id = ?", *cr.Author)
		}
		if len(cr.Tags) > 0 {
			tagged := tx.Session(&gorm.Session{NewDB: true}).
				Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", cr.Tags)
			tx = tx.Where("recipes.id IN (?)", tagged)
		}
		if viewer.Authenticated() {
			if cr.IsFavorited {
				tx = tx.Where("recipes.id IN (?)", linkedRecipes(tx, FavoritesTable, viewer.ID))
			}
			if cr.IsInShoppingCart {
				tx = tx.Where("recipes.id IN (?)", linkedRecipes(tx, ShoppingCartsTable, viewer.ID))
			}
		}
		return tx
	}
}

func linkedRecipes(tx *gorm.DB, table string, userID uint) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).
		Table(table).
		Select("recipe_id").
		Where("user_id = ?", userID)
}

// Filter returns one page of recipes matching cr, newest first, and the
// total number of matches.
func Filter(ctx context.Context, db *gorm.DB, viewer users.Viewer, cr Criteria, offset, limit int) ([]Recipe, int64, error) {
	scope := cr.Scope(viewer)

	var total int64
	if err := db.WithContext(ctx).Model(&Recipe{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	var list []Recipe
	q := withDetails(db.WithContext(ctx).Model(&Recipe{}).Scopes(scope)).
		Order("recipes.pub_date DESC, recipes.id DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("filter recipes: %w", err)
	}
	return list, total, nil
}
