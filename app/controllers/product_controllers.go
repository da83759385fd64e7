package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/aabhushan/app/services"
	"github.com/shashiranjanraj/aabhushan/pkg/response"
)

// multipartMemory caps how much of an upload is buffered in memory before
// spilling to disk.
const multipartMemory = 10 << 20

// ProductController exposes the catalogue over HTTP.
type ProductController struct {
	service *services.ProductService
}

func NewProductController(service *services.ProductService) *ProductController {
	return &ProductController{service: service}
}

func intQuery(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// List returns one page of products. GET /api/products
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	result, err := c.service.List(services.ListInput{
		Search: q.Get("search"),
		SortBy: q.Get("sortBy"),
		Order:  q.Get("order"),
		Page:   intQuery(r, "page"),
		Limit:  intQuery(r, "limit"),
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Get returns a single product. GET /api/{id}
func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	product, err := c.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// parseForm accepts multipart (uploads) and urlencoded bodies alike.
func parseForm(r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			r.ParseForm() //nolint:errcheck
		}
	}
}

// Create adds a product. POST /api/products (auth)
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	parseForm(r)

	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	stock, _ := strconv.Atoi(r.FormValue("stock"))

	in := services.CreateInput{
		Name:              r.FormValue("name"),
		Price:             price,
		Stock:             stock,
		Description:       r.FormValue("description"),
		Category:          r.FormValue("category"),
		ManufacturingDate: r.FormValue("manufacturingDate"),
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		in.Image = file
		in.ImageName = header.Filename
	}

	product, err := c.service.Create(in)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, product)
}

// Update applies a partial update. PUT /api/products/{id} (auth)
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	parseForm(r)

	in := services.UpdateInput{
		Name:              r.FormValue("name"),
		Price:             r.FormValue("price"),
		Stock:             r.FormValue("stock"),
		Description:       r.FormValue("description"),
		Category:          r.FormValue("category"),
		ManufacturingDate: r.FormValue("manufacturingDate"),
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		in.Image = file
		in.ImageName = header.Filename
	}

	product, err := c.service.Update(chi.URLParam(r, "id"), in)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Product updated successfully",
		"product": product,
	})
}

// Delete removes a product. DELETE /api/products/{id} (auth)
func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(chi.URLParam(r, "id")); err != nil {
		response.Error(w, err)
		return
	}

	response.Message(w, http.StatusOK, "Product deleted successfully")
}

// StockSummary aggregates stock per category. GET /api/stock-summary (auth)
func (c *ProductController) StockSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := c.service.StockSummary()
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, rows)
}
