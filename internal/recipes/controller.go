package recipes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/database"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/logging"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/media"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/metrics"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/pagination"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

var mediaStore media.Store

// SetMediaStore installs the store used for recipe pictures.
func SetMediaStore(s media.Store) {
	mediaStore = s
}

type IngredientLineDTO struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

type RecipeDTO struct {
	Name        string              `json:"name" binding:"required,max=200"`
	Text        string              `json:"text" binding:"required,max=1000"`
	Image       string              `json:"image"`
	CookingTime int                 `json:"cooking_time" binding:"required,gte=1"`
	Tags        []uint              `json:"tags"`
	Ingredients []IngredientLineDTO `json:"ingredients"`
}

func (d RecipeDTO) input() RecipeInput {
	lines := make([]IngredientLine, len(d.Ingredients))
	for i, l := range d.Ingredients {
		lines[i] = IngredientLine{ID: l.ID, Amount: l.Amount}
	}
	return RecipeInput{
		Name:        d.Name,
		Text:        d.Text,
		CookingTime: d.CookingTime,
		Tags:        d.Tags,
		Ingredients: lines,
	}
}

func ListRecipesHandler(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := users.CurrentViewer(c)

	criteria, err := CriteriaFromQuery(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	page := pagination.FromQuery(c)

	list, total, err := Filter(ctx, database.DB, viewer, criteria, page.Offset(), page.Limit)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	out, err := Present(ctx, database.DB, viewer, list)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewResponse(c, page, total, out))
}

func GetRecipeHandler(c *gin.Context) {
	id, err := users.ParseID(c, "id")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	r, err := Get(c.Request.Context(), database.DB, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	writeRecipe(c, http.StatusOK, r)
}

func CreateRecipeHandler(c *gin.Context) {
	var body RecipeDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	in := body.input()
	if err := in.Validate(); err != nil {
		apperr.Respond(c, err)
		return
	}

	url, err := saveImage(c, body.Image)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	in.Image = url

	r, err := Create(c.Request.Context(), database.DB, users.CurrentViewer(c), in)
	if err != nil {
		dropImage(c, url)
		apperr.Respond(c, err)
		return
	}
	metrics.RecordRecipeMutation("create")
	writeRecipe(c, http.StatusCreated, r)
}

func UpdateRecipeHandler(c *gin.Context) {
	id, err := users.ParseID(c, "id")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	var body RecipeDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	in := body.input()

	if body.Image != "" {
		if err := in.Validate(); err != nil {
			apperr.Respond(c, err)
			return
		}
		if in.Image, err = saveImage(c, body.Image); err != nil {
			apperr.Respond(c, err)
			return
		}
	}

	r, err := Update(c.Request.Context(), database.DB, users.CurrentViewer(c), id, in)
	if err != nil {
		dropImage(c, in.Image)
		apperr.Respond(c, err)
		return
	}
	metrics.RecordRecipeMutation("update")
	writeRecipe(c, http.StatusOK, r)
}

func DeleteRecipeHandler(c *gin.Context) {
	id, err := users.ParseID(c, "id")
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	image, err := Delete(c.Request.Context(), database.DB, users.CurrentViewer(c), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	dropImage(c, image)
	metrics.RecordRecipeMutation("delete")
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCartHandler serves the shopping list as text/plain, or as
// a PDF with ?format=pdf.
func DownloadShoppingCartHandler(c *gin.Context) {
	items, err := ShoppingListItems(c.Request.Context(), database.DB, users.CurrentViewer(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	if c.Query("format") == "pdf" {
		doc, err := ShoppingListPDF(items)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		metrics.RecordShoppingListDownload("pdf")
		c.Header("Content-Disposition", "attachment; filename=shopping_list.pdf")
		c.Data(http.StatusOK, "application/pdf", doc)
		return
	}

	metrics.RecordShoppingListDownload("txt")
	c.Header("Content-Disposition", "attachment; filename=shopping_list.txt")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(RenderShoppingList(items)))
}

func writeRecipe(c *gin.Context, status int, r *Recipe) {
	out, err := PresentOne(c.Request.Context(), database.DB, users.CurrentViewer(c), r)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(status, out)
}

func saveImage(c *gin.Context, payload string) (string, error) {
	if payload == "" {
		return "", apperr.Validation("image", "this field is required")
	}
	if mediaStore == nil {
		return "", apperr.Validation("image", "image uploads are disabled")
	}
	return mediaStore.Save(c.Request.Context(), payload)
}

func dropImage(c *gin.Context, url string) {
	if url == "" || mediaStore == nil {
		return
	}
	if err := mediaStore.Delete(c.Request.Context(), url); err != nil {
		logging.Warn().Err(err).Str("image", url).Msg("failed to remove image")
	}
}
