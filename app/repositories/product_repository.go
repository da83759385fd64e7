package repositories

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/aabhushan/app/models"
	"github.com/shashiranjanraj/aabhushan/pkg/metrics"
)

// sortColumns maps the API's sort keys onto real columns. Sort input is
// interpolated into ORDER BY, so anything outside this whitelist is ignored.
var sortColumns = map[string]string{
	"name":              "name",
	"price":             "price",
	"stock":             "stock",
	"category":          "category",
	"manufacturingDate": "manufacturing_date",
	"createdAt":         "created_at",
}

// ListQuery captures the query-string filters for a product listing.
type ListQuery struct {
	Search string
	SortBy string
	Order  string // "desc" for descending, anything else ascends
	Page   int    // 1-based
	Limit  int
}

// CategorySummary is one GROUP BY row of the stock summary.
// The category doubles as the row identifier on the wire.
type CategorySummary struct {
	Category   string  `gorm:"column:category" json:"_id"`
	TotalStock int     `gorm:"column:total_stock" json:"totalStock"`
	AvgPrice   float64 `gorm:"column:avg_price" json:"avgPrice"`
}

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// escapeLike neutralises LIKE metacharacters in user-supplied search text so
// the pattern matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func (r *ProductRepository) scoped(q ListQuery) *gorm.DB {
	tx := r.db.Model(&models.Product{})

	if q.Search != "" {
		pattern := "%" + strings.ToLower(escapeLike(q.Search)) + "%"
		tx = tx.Where(
			`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`,
			pattern, pattern,
		)
	}

	return tx
}

// List returns one page of products matching q plus the total match count.
func (r *ProductRepository) List(q ListQuery) ([]models.Product, int64, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var total int64
	if err := r.scoped(q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx := r.scoped(q)
	if col, ok := sortColumns[q.SortBy]; ok {
		dir := "asc"
		if q.Order == "desc" {
			dir = "desc"
		}
		tx = tx.Order(col + " " + dir)
	}

	var products []models.Product
	err := tx.Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&products).Error
	return products, total, err
}

// FindByID looks up a product by primary key.
func (r *ProductRepository) FindByID(id uint) (models.Product, error) {
	var product models.Product
	err := r.db.First(&product, id).Error
	return product, err
}

// Create persists a new product record.
func (r *ProductRepository) Create(product *models.Product) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return r.db.Create(product).Error
}

// Update persists changes to an existing product.
func (r *ProductRepository) Update(product *models.Product) error {
	defer metrics.ObserveDBQuery("update", time.Now())
	return r.db.Save(product).Error
}

// Delete soft-deletes a product. Reports whether a row was affected.
func (r *ProductRepository) Delete(id uint) (bool, error) {
	defer metrics.ObserveDBQuery("delete", time.Now())
	tx := r.db.Delete(&models.Product{}, id)
	return tx.RowsAffected > 0, tx.Error
}

// StockSummary aggregates total stock and average price per category.
func (r *ProductRepository) StockSummary() ([]CategorySummary, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var rows []CategorySummary
	err := r.db.Model(&models.Product{}).
		Select("category, SUM(stock) AS total_stock, AVG(price) AS avg_price").
		Group("category").
		Order("category").
		Scan(&rows).Error
	return rows, err
}
