package relations

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/database"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/metrics"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/pagination"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/recipes"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

func manager() *Manager {
	return NewManager(database.DB)
}

// AddRecipeHandler handles POST /recipes/:id/<kind>/.
func AddRecipeHandler(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := users.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		r, err := manager().AddRecipe(c.Request.Context(), users.CurrentViewer(c), kind, id)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		metrics.RecordRelation(kind.String(), "add")
		c.JSON(http.StatusCreated, recipes.ToShort(r))
	}
}

// RemoveRecipeHandler handles DELETE /recipes/:id/<kind>/.
func RemoveRecipeHandler(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := users.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := manager().RemoveRecipe(c.Request.Context(), users.CurrentViewer(c), kind, id); err != nil {
			apperr.Respond(c, err)
			return
		}
		metrics.RecordRelation(kind.String(), "remove")
		c.Status(http.StatusNoContent)
	}
}

func SubscribeHandler(c *gin.Context) {
	id, err := users.ParseID(c, "id")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	ctx := c.Request.Context()
	m := manager()
	author, err := m.Follow(ctx, users.CurrentViewer(c), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	metrics.RecordRelation("follow", "add")

	sub, err := m.Describe(ctx, author, recipesLimit(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func UnsubscribeHandler(c *gin.Context) {
	id, err := users.ParseID(c, "id")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if err := manager().Unfollow(c.Request.Context(), users.CurrentViewer(c), id); err != nil {
		apperr.Respond(c, err)
		return
	}
	metrics.RecordRelation("follow", "remove")
	c.Status(http.StatusNoContent)
}

func SubscriptionsHandler(c *gin.Context) {
	page := pagination.FromQuery(c)
	list, total, err := manager().Subscriptions(c.Request.Context(), users.CurrentViewer(c), page.Offset(), page.Limit, recipesLimit(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewResponse(c, page, total, list))
}

// recipesLimit reads ?recipes_limit. Absent, unparsable or negative values
// mean no cap; 0 asks for an empty preview.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}
