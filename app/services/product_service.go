package services

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/aabhushan/app/models"
	"github.com/shashiranjanraj/aabhushan/app/repositories"
	"github.com/shashiranjanraj/aabhushan/config"
	"github.com/shashiranjanraj/aabhushan/pkg/apperr"
	"github.com/shashiranjanraj/aabhushan/pkg/collection"
	"github.com/shashiranjanraj/aabhushan/pkg/event"
	"github.com/shashiranjanraj/aabhushan/pkg/metrics"
	"github.com/shashiranjanraj/aabhushan/pkg/storage"
	"github.com/shashiranjanraj/aabhushan/pkg/validate"
)

const defaultPageSize = 10

// ListInput mirrors the listing query string.
type ListInput struct {
	Search string
	SortBy string
	Order  string
	Page   int
	Limit  int
}

// ListResult is the listing response body.
type ListResult struct {
	Products      []models.ListedProduct `json:"products"`
	CurrentPage   int                    `json:"currentPage"`
	TotalPages    int                    `json:"totalPages"`
	TotalProducts int64                  `json:"totalProducts"`
}

// CreateInput carries the parsed multipart fields of a create request.
// Every field plus the image file is required.
type CreateInput struct {
	Name              string  `json:"name"              validate:"required,max=255"`
	Price             float64 `json:"price"             validate:"required,gt=0"`
	Stock             int     `json:"stock"             validate:"required,gte=1"`
	Description       string  `json:"description"       validate:"required"`
	Category          string  `json:"category"          validate:"required,in=Gold,Silver,Diamond"`
	ManufacturingDate string  `json:"manufacturingDate" validate:"required,date"`
	ImageName         string
	Image             io.Reader
}

// UpdateInput carries the raw multipart fields of an update request.
// Fields keep their submitted string form: an omitted, empty, zero or
// unparseable value leaves the stored value untouched.
type UpdateInput struct {
	Name              string
	Price             string
	Stock             string
	Description       string
	Category          string
	ManufacturingDate string
	ImageName         string
	Image             io.Reader
}

// ProductService implements the catalogue operations.
type ProductService struct {
	products *repositories.ProductRepository
}

func NewProductService(products *repositories.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// publicImageURL rewrites a stored image path into a fully qualified URL.
// Backslash separators from legacy uploads are normalised; an empty path
// yields nil so the field serialises as null.
func publicImageURL(stored string) *string {
	if stored == "" {
		return nil
	}
	u := config.PublicBaseURL() + "/" + strings.ReplaceAll(stored, `\`, "/")
	return &u
}

// List returns one page of products. Listing is the only read that rewrites
// image paths into URLs; single-product reads return the stored path.
func (s *ProductService) List(in ListInput) (ListResult, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = defaultPageSize
	}

	products, total, err := s.products.List(repositories.ListQuery{
		Search: in.Search,
		SortBy: in.SortBy,
		Order:  in.Order,
		Page:   in.Page,
		Limit:  in.Limit,
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("products: list: %w", err)
	}

	listed := collection.Map(products, func(p models.Product) models.ListedProduct {
		return models.ListedProduct{Product: p, Image: publicImageURL(p.Image)}
	})

	totalPages := int((total + int64(in.Limit) - 1) / int64(in.Limit))

	return ListResult{
		Products:      listed,
		CurrentPage:   in.Page,
		TotalPages:    totalPages,
		TotalProducts: total,
	}, nil
}

// parseID resolves a path id. Malformed and unknown ids are the same 404 to
// the caller.
func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("Product not found")
	}
	return uint(id), nil
}

// Get returns a single product by id.
func (s *ProductService) Get(rawID string) (models.Product, error) {
	id, err := parseID(rawID)
	if err != nil {
		return models.Product{}, err
	}

	product, err := s.products.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, apperr.NotFound("Product not found")
		}
		return models.Product{}, fmt.Errorf("products: find %d: %w", id, err)
	}
	return product, nil
}

// storeImage writes the upload under uploads/ on the active disk and returns
// the storage path that gets persisted.
func storeImage(name string, r io.Reader) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == "/" || base == "" {
		base = "image"
	}
	path := fmt.Sprintf("uploads/%d-%s", time.Now().UnixNano(), base)
	if err := storage.PutStream(path, r); err != nil {
		return "", fmt.Errorf("products: store image: %w", err)
	}
	return path, nil
}

// Create validates the input, stores the image, and persists the product.
func (s *ProductService) Create(in CreateInput) (models.Product, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return models.Product{}, apperr.Validation(validate.First(errs))
	}
	if in.Image == nil {
		return models.Product{}, apperr.Validation("Product image is required")
	}

	manufactured, err := validate.ParseDate(in.ManufacturingDate)
	if err != nil {
		return models.Product{}, apperr.Validation("The manufacturingDate is not a valid date.")
	}
	if manufactured.After(time.Now()) {
		return models.Product{}, apperr.Validation("The manufacturingDate must not be in the future.")
	}

	path, err := storeImage(in.ImageName, in.Image)
	if err != nil {
		return models.Product{}, err
	}

	product := models.Product{
		Name:              in.Name,
		Price:             in.Price,
		Stock:             in.Stock,
		Description:       in.Description,
		Category:          in.Category,
		ManufacturingDate: manufactured,
		Image:             path,
	}
	if err := s.products.Create(&product); err != nil {
		return models.Product{}, fmt.Errorf("products: create: %w", err)
	}

	metrics.ProductMutations.WithLabelValues("create").Inc()
	event.Fire(event.ProductCreated, product)
	return product, nil
}

// isCategory reports whether c is one of the accepted categories.
func isCategory(c string) bool {
	return c == models.CategoryGold || c == models.CategorySilver || c == models.CategoryDiamond
}

// Update applies a partial update. Each submitted field falls back to the
// stored value when it is empty, zero, or does not parse; a zero stock
// therefore never overwrites a real count. The image is replaced only when
// a new file is supplied.
func (s *ProductService) Update(rawID string, in UpdateInput) (models.Product, error) {
	product, err := s.Get(rawID)
	if err != nil {
		return models.Product{}, err
	}

	if in.Image != nil {
		path, err := storeImage(in.ImageName, in.Image)
		if err != nil {
			return models.Product{}, err
		}
		product.Image = path
	}

	if in.Name != "" {
		product.Name = in.Name
	}
	if v, err := strconv.ParseFloat(in.Price, 64); err == nil && v != 0 {
		product.Price = v
	}
	if v, err := strconv.Atoi(in.Stock); err == nil && v != 0 {
		product.Stock = v
	}
	if in.Description != "" {
		product.Description = in.Description
	}
	if isCategory(in.Category) {
		product.Category = in.Category
	}
	if t, err := validate.ParseDate(in.ManufacturingDate); err == nil {
		product.ManufacturingDate = t
	}

	if err := s.products.Update(&product); err != nil {
		return models.Product{}, fmt.Errorf("products: update %s: %w", rawID, err)
	}

	metrics.ProductMutations.WithLabelValues("update").Inc()
	event.Fire(event.ProductUpdated, product)
	return product, nil
}

// Delete removes a product by id.
func (s *ProductService) Delete(rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	ok, err := s.products.Delete(id)
	if err != nil {
		return fmt.Errorf("products: delete %d: %w", id, err)
	}
	if !ok {
		return apperr.NotFound("Product not found")
	}

	metrics.ProductMutations.WithLabelValues("delete").Inc()
	event.Fire(event.ProductDeleted, id)
	return nil
}

// StockSummary aggregates stock and price per category.
func (s *ProductService) StockSummary() ([]repositories.CategorySummary, error) {
	rows, err := s.products.StockSummary()
	if err != nil {
		return nil, fmt.Errorf("products: stock summary: %w", err)
	}
	return rows, nil
}
