// Package graphql exposes a read-only GraphQL view of the catalogue at
// /api/graphql. Mutations stay REST-only.
package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/aabhushan/app/services"
	"github.com/shashiranjanraj/aabhushan/pkg/response"
)

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"_id":               &graphql.Field{Type: graphql.Int},
		"name":              &graphql.Field{Type: graphql.String},
		"price":             &graphql.Field{Type: graphql.Float},
		"stock":             &graphql.Field{Type: graphql.Int},
		"description":       &graphql.Field{Type: graphql.String},
		"category":          &graphql.Field{Type: graphql.String},
		"manufacturingDate": &graphql.Field{Type: graphql.DateTime},
		"image":             &graphql.Field{Type: graphql.String},
	},
})

var pageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProductPage",
	Fields: graphql.Fields{
		"products":      &graphql.Field{Type: graphql.NewList(productType)},
		"currentPage":   &graphql.Field{Type: graphql.Int},
		"totalPages":    &graphql.Field{Type: graphql.Int},
		"totalProducts": &graphql.Field{Type: graphql.Int},
	},
})

var summaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CategorySummary",
	Fields: graphql.Fields{
		"_id":        &graphql.Field{Type: graphql.String},
		"totalStock": &graphql.Field{Type: graphql.Int},
		"avgPrice":   &graphql.Field{Type: graphql.Float},
	},
})

// NewSchema builds the read-only schema over the product service.
func NewSchema(svc *services.ProductService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: pageType,
				Args: graphql.FieldConfigArgument{
					"search": &graphql.ArgumentConfig{Type: graphql.String},
					"sortBy": &graphql.ArgumentConfig{Type: graphql.String},
					"order":  &graphql.ArgumentConfig{Type: graphql.String},
					"page":   &graphql.ArgumentConfig{Type: graphql.Int},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					in := services.ListInput{}
					if v, ok := p.Args["search"].(string); ok {
						in.Search = v
					}
					if v, ok := p.Args["sortBy"].(string); ok {
						in.SortBy = v
					}
					if v, ok := p.Args["order"].(string); ok {
						in.Order = v
					}
					if v, ok := p.Args["page"].(int); ok {
						in.Page = v
					}
					if v, ok := p.Args["limit"].(int); ok {
						in.Limit = v
					}
					return svc.List(in)
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					return svc.Get(id)
				},
			},
			"stockSummary": &graphql.Field{
				Type: graphql.NewList(summaryType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.StockSummary()
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

// Handler executes GraphQL queries. POST /api/graphql {"query": "...", "variables": {...}}
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Message(w, http.StatusBadRequest, "Invalid GraphQL request body")
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  body.Query,
			VariableValues: body.Variables,
			Context:        r.Context(),
		})

		response.JSON(w, http.StatusOK, result)
	}
}
