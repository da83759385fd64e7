// Package routes registers the HTTP surface of the application.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/aabhushan/app/controllers"
	appgraphql "github.com/shashiranjanraj/aabhushan/app/graphql"
	"github.com/shashiranjanraj/aabhushan/app/services"
	"github.com/shashiranjanraj/aabhushan/pkg/logger"
	"github.com/shashiranjanraj/aabhushan/pkg/metrics"
	"github.com/shashiranjanraj/aabhushan/pkg/middleware"
	"github.com/shashiranjanraj/aabhushan/pkg/router"
	"github.com/shashiranjanraj/aabhushan/pkg/storage"
	"github.com/shashiranjanraj/aabhushan/pkg/ws"
)

// RegisterAPI wires every route. The hub receives catalogue change
// broadcasts and may be nil in tests.
func RegisterAPI(r *router.Router, authSvc *services.AuthService, productSvc *services.ProductService, hub *ws.Hub) {
	authController := controllers.NewAuthController(authSvc)
	productController := controllers.NewProductController(productSvc)

	api := r.Group("/api")

	// Public.
	api.Post("/auth/signup", "auth.signup", authController.Signup)
	api.Post("/auth/login", "auth.login", authController.Login)
	api.Get("/products", "products.list", productController.List)
	api.Get("/{id}", "products.get", productController.Get)

	// Mutations and reporting sit behind token verification.
	protected := api.Group("", middleware.Auth)
	protected.Post("/products", "products.create", productController.Create)
	protected.Put("/products/{id}", "products.update", productController.Update)
	protected.Delete("/products/{id}", "products.delete", productController.Delete)
	protected.Get("/stock-summary", "products.stock_summary", productController.StockSummary)

	// Read-only GraphQL mirror of the public product reads.
	schema, err := appgraphql.NewSchema(productSvc)
	if err != nil {
		logger.Error("routes: build graphql schema", "error", err)
	} else {
		api.Post("/graphql", "graphql", appgraphql.Handler(schema))
	}

	// Live catalogue change feed.
	if hub != nil {
		r.Get("/ws/products", "ws.products", func(w http.ResponseWriter, req *http.Request) {
			ws.Upgrade(w, req, hub)
		})
	}

	// Uploaded images are served from the local disk root.
	r.Mount("/uploads", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(storage.LocalRoot()+"/uploads"))))

	r.Get("/metrics", "metrics", metrics.Handler())
}
