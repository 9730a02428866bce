package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/database"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/recipes"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

// ListIngredientsHandler returns every ingredient, optionally narrowed to
// names starting with ?name (case-insensitive). Not paginated.
func ListIngredientsHandler(c *gin.Context) {
	query := database.DB.WithContext(c.Request.Context()).Order("name ASC")
	if name := strings.TrimSpace(c.Query("name")); name != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, escapeLike(strings.ToLower(name))+"%")
	}

	list := []recipes.Ingredient{}
	if err := query.Find(&list).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func GetIngredientHandler(c *gin.Context) {
	id, err := users.ParseID(c, "id")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	var ing recipes.Ingredient
	if err := database.DB.WithContext(c.Request.Context()).First(&ing, id).Error; err != nil {
		if database.IsNotFound(err) {
			apperr.Respond(c, apperr.NotFound("ingredient not found"))
			return
		}
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func ListTagsHandler(c *gin.Context) {
	list := []recipes.Tag{}
	if err := database.DB.WithContext(c.Request.Context()).Order("id ASC").Find(&list).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func GetTagHandler(c *gin.Context) {
	id, err := users.ParseID(c, "id")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	var tag recipes.Tag
	if err := database.DB.WithContext(c.Request.Context()).First(&tag, id).Error; err != nil {
		if database.IsNotFound(err) {
			apperr.Respond(c, apperr.NotFound("tag not found"))
			return
		}
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// StatsHandler reports row counts of the main tables.
func StatsHandler(c *gin.Context) {
	db := database.DB.WithContext(c.Request.Context())
	counts := gin.H{}
	for _, t := range []struct {
		key   string
		model interface{}
	}{
		{"users", &users.User{}},
		{"recipes", &recipes.Recipe{}},
		{"ingredients", &recipes.Ingredient{}},
		{"tags", &recipes.Tag{}},
		{"favorites", &recipes.Favorite{}},
		{"subscriptions", &users.Follow{}},
	} {
		var n int64
		if err := db.Model(t.model).Count(&n).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		counts[t.key] = n
	}
	c.JSON(http.StatusOK, counts)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
