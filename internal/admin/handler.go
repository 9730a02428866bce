// Package admin serves the management endpoints for reference data, users
// and recipe moderation. Every route requires an admin token.
package admin

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/database"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/logging"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/metrics"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/pagination"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/recipes"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

const maxImportSize = 10 << 20

type TagDTO struct {
	Name  string `json:"name" binding:"required,max=60"`
	Color string `json:"color" binding:"required,hexcolor"`
	Slug  string `json:"slug" binding:"max=200"`
}

type TagPatchDTO struct {
	Name  *string `json:"name" binding:"omitempty,max=60"`
	Color *string `json:"color" binding:"omitempty,hexcolor"`
	Slug  *string `json:"slug" binding:"omitempty,max=200"`
}

type IngredientDTO struct {
	Name            string `json:"name" binding:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=10"`
}

type RoleDTO struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

type RecipeSummary struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Author         string `json:"author"`
	FavoritesCount int64  `json:"favorites_count"`
}

func CreateTagHandler(c *gin.Context) {
	var body TagDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	tag := recipes.Tag{
		Name:  strings.TrimSpace(body.Name),
		Color: strings.ToUpper(body.Color),
		Slug:  body.Slug,
	}
	if tag.Slug == "" {
		tag.Slug = slug.Make(tag.Name)
	}
	if !slug.IsSlug(tag.Slug) {
		apperr.Respond(c, apperr.Validation("slug", "must contain only lowercase letters, digits and hyphens"))
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Create(&tag).Error; err != nil {
		if database.IsDuplicate(err) {
			apperr.Respond(c, apperr.AlreadyExists("a tag with this name, color or slug already exists"))
			return
		}
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipes.ToTagResponse(&tag))
}

func UpdateTagHandler(c *gin.Context) {
	id, err := users.ParseID(c, "id")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	var body TagPatchDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}

	db := database.DB.WithContext(c.Request.Context())
	var tag recipes.Tag
	if err := db.First(&tag, id).Error; err != nil {
		if database.IsNotFound(err) {
			apperr.Respond(c, apperr.NotFound("tag not found"))
			return
		}
		apperr.Respond(c, err)
		return
	}

	if body.Name != nil {
		tag.Name = strings.TrimSpace(*body.Name)
	}
	if body.Color != nil {
		tag.Color = strings.ToUpper(*body.Color)
	}
	if body.Slug != nil {
		if !slug.IsSlug(*body.Slug) {
			apperr.Respond(c, apperr.Validation("slug", "must contain only lowercase letters, digits and hyphens"))
			return
		}
		tag.Slug = *body.Slug
	}

	if err := db.Save(&tag).Error; err != nil {
		if database.IsDuplicate(err) {
			apperr.Respond(c, apperr.AlreadyExists("a tag with this name, color or slug already exists"))
			return
		}
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes.ToTagResponse(&tag))
}

func DeleteTagHandler(c *gin.Context) {
	id, err := users.ParseID(c, "id")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	err = database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&recipes.Tag{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("tag not found")
		}
		return nil
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func CreateIngredientHandler(c *gin.Context) {
	var body IngredientDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	ing := recipes.Ingredient{
		Name:            strings.TrimSpace(body.Name),
		MeasurementUnit: strings.TrimSpace(body.MeasurementUnit),
	}
	if err := database.DB.WithContext(c.Request.Context()).Create(&ing).Error; err != nil {
		if database.IsDuplicate(err) {
			apperr.Respond(c, apperr.AlreadyExists("this ingredient already exists"))
			return
		}
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, ing)
}

// ImportIngredientsHandler loads a name,unit CSV sent as the multipart field
// "file" or as the raw request body.
func ImportIngredientsHandler(c *gin.Context) {
	var src io.Reader = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			apperr.Respond(c, apperr.Validation("file", "cannot read upload"))
			return
		}
		defer f.Close()
		src = f
	}

	stats, err := recipes.LoadIngredients(c.Request.Context(), database.DB, src)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	metrics.RecordIngredientsImported(stats.Inserted)
	logging.Info().
		Int("read", stats.Read).
		Int("inserted", stats.Inserted).
		Int("skipped", stats.Skipped).
		Msg("ingredients imported")
	c.JSON(http.StatusOK, stats)
}

// ListRecipesHandler lists recipes with how many users favorited each,
// searchable by ?name (substring), ?author (username) and ?tag (slug).
func ListRecipesHandler(c *gin.Context) {
	page := pagination.FromQuery(c)
	db := database.DB.WithContext(c.Request.Context())

	scope := func(tx *gorm.DB) *gorm.DB {
		if name := strings.TrimSpace(c.Query("name")); name != "" {
			tx = tx.Where("LOWER(recipes.name) LIKE ?", "%"+strings.ToLower(name)+"%")
		}
		if author := strings.TrimSpace(c.Query("author")); author != "" {
			tx = tx.Where("users.username = ?", author)
		}
		if tag := strings.TrimSpace(c.Query("tag")); tag != "" {
			tx = tx.Where("recipes.id IN (?)", tx.Session(&gorm.Session{NewDB: true}).
				Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug = ?", tag))
		}
		return tx
	}

	base := func() *gorm.DB {
		return db.Table("recipes").
			Joins("JOIN users ON users.id = recipes.author_id").
			Scopes(scope)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	list := []RecipeSummary{}
	err := base().
		Select("recipes.id AS id, recipes.name AS name, users.username AS author, " +
			"(SELECT COUNT(*) FROM favorites WHERE favorites.recipe_id = recipes.id) AS favorites_count").
		Order("recipes.pub_date DESC, recipes.id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Scan(&list).Error
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewResponse(c, page, total, list))
}

func SetUserRoleHandler(c *gin.Context) {
	id, err := users.ParseID(c, "id")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	var body RoleDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}

	ctx := c.Request.Context()
	u, err := users.Get(ctx, database.DB, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if err := database.DB.WithContext(ctx).Model(u).Update("role", body.Role).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": u.ID, "username": u.Username, "role": body.Role})
}
