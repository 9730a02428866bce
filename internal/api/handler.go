package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// IndexHandler lists the resource roots of the API.
func IndexHandler(baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"users":       baseURL + "/api/users/",
			"tags":        baseURL + "/api/tags/",
			"ingredients": baseURL + "/api/ingredients/",
			"recipes":     baseURL + "/api/recipes/",
			"stats":       baseURL + "/api/stats/",
		})
	}
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
