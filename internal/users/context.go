package users

import "github.com/gin-gonic/gin"

const viewerKey = "viewer"

// SetViewer stores the resolved acting user on the request.
func SetViewer(c *gin.Context, v Viewer) {
	c.Set(viewerKey, v)
}

// CurrentViewer returns the viewer stored by the auth middleware, or the
// anonymous viewer when none was set.
func CurrentViewer(c *gin.Context) Viewer {
	if v, ok := c.Get(viewerKey); ok {
		if viewer, ok := v.(Viewer); ok {
			return viewer
		}
	}
	return Viewer{}
}
