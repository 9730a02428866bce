package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRelation(t *testing.T) {
	tests := []struct {
		kind   string
		action string
	}{
		{"favorite", "add"},
		{"shopping_cart", "remove"},
		{"follow", "add"},
	}
	for _, tt := range tests {
		t.Run(tt.kind+"_"+tt.action, func(t *testing.T) {
			before := testutil.ToFloat64(RelationChanges.WithLabelValues(tt.kind, tt.action))
			RecordRelation(tt.kind, tt.action)
			after := testutil.ToFloat64(RelationChanges.WithLabelValues(tt.kind, tt.action))
			if after != before+1 {
				t.Errorf("counter = %v, want %v", after, before+1)
			}
		})
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/recipes/:id/", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/recipes/:id/", "200"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recipes/42/", nil))

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/recipes/:id/", "200"))
	if after != before+1 {
		t.Errorf("requests counter = %v, want %v", after, before+1)
	}
	if got := testutil.ToFloat64(APIActiveRequests); got != 0 {
		t.Errorf("active requests = %v, want 0", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordShoppingListDownload("txt")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "foodgram_shopping_list_downloads_total") {
		t.Error("shopping list counter missing from /metrics output")
	}
}

func TestMetricsLint(t *testing.T) {
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer,
		"foodgram_http_requests_total",
		"foodgram_relation_changes_total",
		"foodgram_recipe_mutations_total",
	)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, p := range problems {
		t.Errorf("%s: %s", p.Metric, p.Text)
	}
}
