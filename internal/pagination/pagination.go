// Package pagination implements the page/limit scheme used by every list
// endpoint: ?page=N&limit=M, answered with {count, next, previous, results}.
package pagination

import (
	"net/url"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
)

// maxPage bounds ?page so that page*limit cannot overflow an offset.
const maxPage = 1 << 20

var (
	mu           sync.RWMutex
	defaultLimit = 6
	maxLimit     = 100
)

// SetDefaults configures the limit used when ?limit is absent and its ceiling.
func SetDefaults(def, max int) {
	mu.Lock()
	defer mu.Unlock()
	defaultLimit, maxLimit = def, max
}

type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int { return (p.Number - 1) * p.Limit }

// FromQuery reads page and limit, falling back to defaults on bad input.
func FromQuery(c *gin.Context) Page {
	mu.RLock()
	def, max := defaultLimit, maxLimit
	mu.RUnlock()

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return Page{Number: page, Limit: limit}
}

type Response[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewResponse wraps one page of results, building next/previous links from
// the request URL.
func NewResponse[T any](c *gin.Context, p Page, total int64, results []T) Response[T] {
	if results == nil {
		results = []T{}
	}
	resp := Response[T]{Count: total, Results: results}
	if int64(p.Number)*int64(p.Limit) < total {
		resp.Next = link(c.Request.URL, p.Number+1)
	}
	if p.Number > 1 {
		resp.Previous = link(c.Request.URL, p.Number-1)
	}
	return resp
}

func link(u *url.URL, page int) *string {
	next := *u
	q := next.Query()
	q.Set("page", strconv.Itoa(page))
	next.RawQuery = q.Encode()
	s := next.RequestURI()
	return &s
}
