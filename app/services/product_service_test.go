package services

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/aabhushan/app/models"
	"github.com/shashiranjanraj/aabhushan/app/repositories"
	"github.com/shashiranjanraj/aabhushan/config"
	"github.com/shashiranjanraj/aabhushan/pkg/apperr"
	"github.com/shashiranjanraj/aabhushan/pkg/storage"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}))
	return db
}

// memDisk keeps uploads in a map so tests never touch the filesystem.
type memDisk struct {
	files map[string][]byte
}

func (d *memDisk) Put(path string, content []byte) error {
	d.files[path] = content
	return nil
}

func (d *memDisk) PutStream(path string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	d.files[path] = data
	return nil
}

func (d *memDisk) Get(path string) ([]byte, error) {
	data, ok := d.files[path]
	if !ok {
		return nil, fmt.Errorf("memdisk: %s not found", path)
	}
	return data, nil
}

func (d *memDisk) GetStream(path string) (io.ReadCloser, error) {
	data, err := d.Get(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (d *memDisk) Exists(path string) bool {
	_, ok := d.files[path]
	return ok
}

func (d *memDisk) Delete(path string) error {
	delete(d.files, path)
	return nil
}

func (d *memDisk) URL(path string) string { return "mem://" + path }

func useMemDisk(t *testing.T) *memDisk {
	t.Helper()

	d := &memDisk{files: map[string][]byte{}}
	storage.RegisterDisk("mem", d)
	storage.SetDefault("mem")
	t.Cleanup(func() { storage.SetDefault("local") })
	return d
}

func newProductService(t *testing.T) (*ProductService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	return NewProductService(repositories.NewProductRepository(db)), db
}

func seedProduct(t *testing.T, db *gorm.DB, p models.Product) models.Product {
	t.Helper()

	if p.Category == "" {
		p.Category = models.CategoryGold
	}
	if p.Price == 0 {
		p.Price = 100
	}
	if p.Stock == 0 {
		p.Stock = 1
	}
	if p.Description == "" {
		p.Description = "test item"
	}
	if p.ManufacturingDate.IsZero() {
		p.ManufacturingDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func validCreateInput() CreateInput {
	return CreateInput{
		Name:              "Gold Ring",
		Price:             25000,
		Stock:             5,
		Description:       "22k wedding band",
		Category:          models.CategoryGold,
		ManufacturingDate: "2025-11-02",
		ImageName:         "ring.jpg",
		Image:             strings.NewReader("fake image bytes"),
	}
}

func TestListSearchMatchesNameAndDescriptionCaseInsensitive(t *testing.T) {
	svc, db := newProductService(t)
	seedProduct(t, db, models.Product{Name: "Gold Ring", Description: "classic band", Image: "a.jpg"})
	seedProduct(t, db, models.Product{Name: "Pendant", Description: "comes with a RING box", Image: "b.jpg"})
	seedProduct(t, db, models.Product{Name: "Anklet", Description: "silver chain", Image: "c.jpg"})

	result, err := svc.List(ListInput{Search: "ring"})
	require.NoError(t, err)

	require.Len(t, result.Products, 2)
	assert.Equal(t, int64(2), result.TotalProducts)
}

func TestListSearchTreatsWildcardsLiterally(t *testing.T) {
	svc, db := newProductService(t)
	seedProduct(t, db, models.Product{Name: "Plain Band", Description: "simple", Image: "a.jpg"})
	seedProduct(t, db, models.Product{Name: "100% Pure Silver", Description: "hallmarked", Image: "b.jpg"})

	result, err := svc.List(ListInput{Search: "100%"})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "100% Pure Silver", result.Products[0].Name)

	// A bare wildcard must not match everything.
	result, err = svc.List(ListInput{Search: "%"})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "100% Pure Silver", result.Products[0].Name)
}

func TestListSortsByWhitelistedColumn(t *testing.T) {
	svc, db := newProductService(t)
	seedProduct(t, db, models.Product{Name: "Mid", Price: 200, Image: "a.jpg"})
	seedProduct(t, db, models.Product{Name: "Cheap", Price: 100, Image: "b.jpg"})
	seedProduct(t, db, models.Product{Name: "Pricey", Price: 300, Image: "c.jpg"})

	result, err := svc.List(ListInput{SortBy: "price"})
	require.NoError(t, err)
	require.Len(t, result.Products, 3)
	assert.Equal(t, "Cheap", result.Products[0].Name)
	assert.Equal(t, "Pricey", result.Products[2].Name)

	result, err = svc.List(ListInput{SortBy: "price", Order: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "Pricey", result.Products[0].Name)
}

func TestListIgnoresUnknownSortColumn(t *testing.T) {
	svc, db := newProductService(t)
	seedProduct(t, db, models.Product{Name: "A", Image: "a.jpg"})
	seedProduct(t, db, models.Product{Name: "B", Image: "b.jpg"})

	// A hostile sort key must not reach ORDER BY.
	result, err := svc.List(ListInput{SortBy: "price; DROP TABLE products--"})
	require.NoError(t, err)
	assert.Len(t, result.Products, 2)
}

func TestListPagination(t *testing.T) {
	svc, db := newProductService(t)
	for i := 1; i <= 25; i++ {
		seedProduct(t, db, models.Product{Name: fmt.Sprintf("Item %02d", i), Image: "x.jpg"})
	}

	result, err := svc.List(ListInput{Page: 2, Limit: 10})
	require.NoError(t, err)

	require.Len(t, result.Products, 10)
	assert.Equal(t, "Item 11", result.Products[0].Name)
	assert.Equal(t, "Item 20", result.Products[9].Name)
	assert.Equal(t, 2, result.CurrentPage)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, int64(25), result.TotalProducts)
}

func TestListRewritesImagePaths(t *testing.T) {
	svc, db := newProductService(t)
	seedProduct(t, db, models.Product{Name: "Windows Upload", Image: `uploads\ring.jpg`})

	withEmpty := seedProduct(t, db, models.Product{Name: "No Image"})
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", withEmpty.ID).Update("image", "").Error)

	result, err := svc.List(ListInput{SortBy: "name"})
	require.NoError(t, err)
	require.Len(t, result.Products, 2)

	assert.Nil(t, result.Products[0].Image, "empty path serialises as null")

	require.NotNil(t, result.Products[1].Image)
	assert.Equal(t, config.PublicBaseURL()+"/uploads/ring.jpg", *result.Products[1].Image)
}

func TestGetReturnsStoredPathVerbatim(t *testing.T) {
	svc, db := newProductService(t)
	p := seedProduct(t, db, models.Product{Name: "Ring", Image: `uploads\ring.jpg`})

	got, err := svc.Get(fmt.Sprint(p.ID))
	require.NoError(t, err)
	assert.Equal(t, `uploads\ring.jpg`, got.Image)
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newProductService(t)

	for _, id := range []string{"9999", "not-a-number", "0", "-1"} {
		_, err := svc.Get(id)
		require.Error(t, err, "id %q", id)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Equal(t, "Product not found", apperr.Message(err))
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newProductService(t)
	useMemDisk(t)

	cases := map[string]func(*CreateInput){
		"missing name":     func(in *CreateInput) { in.Name = "" },
		"zero price":       func(in *CreateInput) { in.Price = 0 },
		"negative price":   func(in *CreateInput) { in.Price = -5 },
		"zero stock":       func(in *CreateInput) { in.Stock = 0 },
		"bad category":     func(in *CreateInput) { in.Category = "Platinum" },
		"bad date":         func(in *CreateInput) { in.ManufacturingDate = "soon" },
		"future date":      func(in *CreateInput) { in.ManufacturingDate = "2999-01-01" },
		"missing image":    func(in *CreateInput) { in.Image = nil },
		"missing desc":     func(in *CreateInput) { in.Description = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validCreateInput()
			mutate(&in)

			_, err := svc.Create(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestCreateStoresImageAndPersists(t *testing.T) {
	svc, db := newProductService(t)
	disk := useMemDisk(t)

	product, err := svc.Create(validCreateInput())
	require.NoError(t, err)

	assert.NotZero(t, product.ID)
	assert.True(t, strings.HasPrefix(product.Image, "uploads/"), "image stored under uploads/: %s", product.Image)
	assert.True(t, strings.HasSuffix(product.Image, "-ring.jpg"))
	assert.True(t, disk.Exists(product.Image))

	var stored models.Product
	require.NoError(t, db.First(&stored, product.ID).Error)
	assert.Equal(t, product.Image, stored.Image)
	assert.Equal(t, 5, stored.Stock)
}

func TestUpdateChangesOnlySubmittedFields(t *testing.T) {
	svc, db := newProductService(t)
	p := seedProduct(t, db, models.Product{Name: "Ring", Price: 100, Stock: 5, Image: "uploads/a.jpg"})

	updated, err := svc.Update(fmt.Sprint(p.ID), UpdateInput{Price: "50"})
	require.NoError(t, err)

	assert.Equal(t, 50.0, updated.Price)
	assert.Equal(t, "Ring", updated.Name)
	assert.Equal(t, 5, updated.Stock)
	assert.Equal(t, "uploads/a.jpg", updated.Image)
}

func TestUpdateFalsyValuesKeepStored(t *testing.T) {
	svc, db := newProductService(t)
	p := seedProduct(t, db, models.Product{Name: "Ring", Price: 100, Stock: 5, Image: "uploads/a.jpg"})

	updated, err := svc.Update(fmt.Sprint(p.ID), UpdateInput{
		Name:              "",
		Price:             "not-a-number",
		Stock:             "0", // a zero stock never overwrites a real count
		Category:          "Platinum",
		ManufacturingDate: "garbage",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ring", updated.Name)
	assert.Equal(t, 100.0, updated.Price)
	assert.Equal(t, 5, updated.Stock)
	assert.Equal(t, models.CategoryGold, updated.Category)
}

func TestUpdateReplacesImageOnlyWhenFileSupplied(t *testing.T) {
	svc, db := newProductService(t)
	disk := useMemDisk(t)
	p := seedProduct(t, db, models.Product{Name: "Ring", Image: "uploads/old.jpg"})

	updated, err := svc.Update(fmt.Sprint(p.ID), UpdateInput{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "uploads/old.jpg", updated.Image)

	updated, err = svc.Update(fmt.Sprint(p.ID), UpdateInput{
		ImageName: "new.jpg",
		Image:     strings.NewReader("new bytes"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, "uploads/old.jpg", updated.Image)
	assert.True(t, disk.Exists(updated.Image))
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newProductService(t)

	_, err := svc.Update("424242", UpdateInput{Name: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteUnknownIDLeavesStoreUnchanged(t *testing.T) {
	svc, db := newProductService(t)
	seedProduct(t, db, models.Product{Name: "Ring", Image: "a.jpg"})

	err := svc.Delete("424242")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeleteRemovesProduct(t *testing.T) {
	svc, db := newProductService(t)
	p := seedProduct(t, db, models.Product{Name: "Ring", Image: "a.jpg"})

	require.NoError(t, svc.Delete(fmt.Sprint(p.ID)))

	_, err := svc.Get(fmt.Sprint(p.ID))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStockSummaryGroupsByCategory(t *testing.T) {
	svc, db := newProductService(t)
	seedProduct(t, db, models.Product{Name: "A", Category: models.CategoryGold, Stock: 3, Price: 100, Image: "a.jpg"})
	seedProduct(t, db, models.Product{Name: "B", Category: models.CategoryGold, Stock: 7, Price: 300, Image: "b.jpg"})
	seedProduct(t, db, models.Product{Name: "C", Category: models.CategorySilver, Stock: 4, Price: 50, Image: "c.jpg"})

	rows, err := svc.StockSummary()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, models.CategoryGold, rows[0].Category)
	assert.Equal(t, 10, rows[0].TotalStock)
	assert.InDelta(t, 200.0, rows[0].AvgPrice, 0.001)

	assert.Equal(t, models.CategorySilver, rows[1].Category)
	assert.Equal(t, 4, rows[1].TotalStock)
	assert.InDelta(t, 50.0, rows[1].AvgPrice, 0.001)
}

func TestProductLifecycle(t *testing.T) {
	svc, _ := newProductService(t)
	useMemDisk(t)

	in := validCreateInput()
	created, err := svc.Create(in)
	require.NoError(t, err)
	assert.Equal(t, 5, created.Stock)

	result, err := svc.List(ListInput{})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)

	updated, err := svc.Update(fmt.Sprint(created.ID), UpdateInput{Stock: "8"})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Stock)

	result, err = svc.List(ListInput{})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, 8, result.Products[0].Stock)

	require.NoError(t, svc.Delete(fmt.Sprint(created.ID)))

	result, err = svc.List(ListInput{})
	require.NoError(t, err)
	assert.Empty(t, result.Products)
	assert.Equal(t, int64(0), result.TotalProducts)
}
