package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/admin"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/auth"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/logging"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/metrics"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/recipes"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/relations"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

type Options struct {
	BaseURL string
	// MediaDir is served under MediaURLPath when set.
	MediaDir     string
	MediaURLPath string
	// AuthLimit guards login and registration; nil disables throttling.
	AuthLimit gin.HandlerFunc
	// TrustedProxies are the only peers whose X-Forwarded-For is honoured
	// by ClientIP. Nil trusts none.
	TrustedProxies []string
}

func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		logging.Warn().Err(err).Strs("proxies", opts.TrustedProxies).Msg("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), logging.GinMiddleware(), metrics.Middleware())

	r.GET("/health", HealthHandler)
	r.GET("/metrics", metrics.Handler())
	if opts.MediaDir != "" {
		r.Static(opts.MediaURLPath, opts.MediaDir)
	}

	limit := opts.AuthLimit
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}
	requireAuth := auth.RequireAuth()

	g := r.Group("/api", auth.OptionalAuth())
	g.GET("/", IndexHandler(opts.BaseURL))
	g.GET("/stats/", StatsHandler)

	g.POST("/auth/token/login/", limit, auth.LoginHandler)
	g.POST("/auth/token/logout/", requireAuth, auth.LogoutHandler)

	u := g.Group("/users")
	u.POST("/", limit, users.CreateUserHandler)
	u.GET("/", users.ListUsersHandler)
	u.GET("/me/", requireAuth, users.MeHandler)
	u.POST("/set_password/", requireAuth, users.SetPasswordHandler)
	u.GET("/subscriptions/", requireAuth, relations.SubscriptionsHandler)
	u.GET("/:id/", users.GetUserHandler)
	u.POST("/:id/subscribe/", requireAuth, relations.SubscribeHandler)
	u.DELETE("/:id/subscribe/", requireAuth, relations.UnsubscribeHandler)

	g.GET("/tags/", ListTagsHandler)
	g.GET("/tags/:id/", GetTagHandler)
	g.GET("/ingredients/", ListIngredientsHandler)
	g.GET("/ingredients/:id/", GetIngredientHandler)

	rc := g.Group("/recipes")
	rc.GET("/", recipes.ListRecipesHandler)
	rc.POST("/", requireAuth, recipes.CreateRecipeHandler)
	rc.GET("/download_shopping_cart/", requireAuth, recipes.DownloadShoppingCartHandler)
	rc.GET("/:id/", recipes.GetRecipeHandler)
	rc.PATCH("/:id/", requireAuth, recipes.UpdateRecipeHandler)
	rc.DELETE("/:id/", requireAuth, recipes.DeleteRecipeHandler)
	rc.POST("/:id/favorite/", requireAuth, relations.AddRecipeHandler(relations.KindFavorite))
	rc.DELETE("/:id/favorite/", requireAuth, relations.RemoveRecipeHandler(relations.KindFavorite))
	rc.POST("/:id/shopping_cart/", requireAuth, relations.AddRecipeHandler(relations.KindShoppingCart))
	rc.DELETE("/:id/shopping_cart/", requireAuth, relations.RemoveRecipeHandler(relations.KindShoppingCart))

	a := g.Group("/admin", requireAuth, auth.RequireAdmin())
	a.POST("/tags/", admin.CreateTagHandler)
	a.PATCH("/tags/:id/", admin.UpdateTagHandler)
	a.DELETE("/tags/:id/", admin.DeleteTagHandler)
	a.POST("/ingredients/", admin.CreateIngredientHandler)
	a.POST("/ingredients/import/", admin.ImportIngredientsHandler)
	a.GET("/recipes/", admin.ListRecipesHandler)
	a.PATCH("/users/:id/role/", admin.SetUserRoleHandler)

	return r
}
