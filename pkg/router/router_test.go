package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestNamedRouteLookup(t *testing.T) {
	r := New()
	r.Get("/api/products", "products.list", ok)
	r.Get("/api/{id}", "products.get", ok)

	path, found := r.Path("products.list")
	assert.True(t, found)
	assert.Equal(t, "/api/products", path)

	_, found = r.Path("nope")
	assert.False(t, found)
}

func TestURLFillsParams(t *testing.T) {
	r := New()
	r.Delete("/api/products/{id}", "products.delete", ok)

	url, err := r.URL("products.delete", map[string]string{"id": "7"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/7", url)

	_, err = r.URL("products.delete", nil)
	assert.Error(t, err, "missing params must error")
}

func TestGroupPrefixAndMiddleware(t *testing.T) {
	var order []string
	mw := func(tag string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, tag)
				next.ServeHTTP(w, req)
			})
		}
	}

	r := New()
	api := r.Group("/api", mw("group"))
	api.Post("/products", "products.create", ok, mw("route"))

	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"group", "route"}, order)
}

func TestRoutesSnapshot(t *testing.T) {
	r := New()
	api := r.Group("/api")
	api.Get("/products", "products.list", ok)
	api.Put("/products/{id}", "products.update", ok)

	infos := r.Routes()
	require.Len(t, infos, 2)
	assert.Equal(t, "GET", infos[0].Method)
	assert.Equal(t, "/api/products", infos[0].Path)
	assert.Equal(t, "products.update", infos[1].Name)
}
