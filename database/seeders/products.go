package seeders

import (
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/aabhushan/app/models"
)

func init() {
	Register("users", SeedUsers)
	Register("products", SeedProducts)
}

// SeedUsers inserts a demo account (password: "password", pre-hashed).
func SeedUsers(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	// bcrypt("password"), cost 10
	demo := models.User{
		Email:    "demo@aabhushan.local",
		Password: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
	}
	return db.Create(&demo).Error
}

// SeedProducts inserts a starter catalogue when the table is empty.
func SeedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	date := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02", s)
		return t
	}

	products := []models.Product{
		{Name: "Classic Gold Ring", Price: 25000, Stock: 12, Description: "22k gold band with a matte finish", Category: models.CategoryGold, ManufacturingDate: date("2025-11-02"), Image: "uploads/seed-gold-ring.jpg"},
		{Name: "Silver Anklet", Price: 1800, Stock: 40, Description: "Oxidised silver anklet with bells", Category: models.CategorySilver, ManufacturingDate: date("2025-09-15"), Image: "uploads/seed-silver-anklet.jpg"},
		{Name: "Diamond Solitaire Pendant", Price: 92000, Stock: 3, Description: "0.5 carat solitaire on a white gold chain", Category: models.CategoryDiamond, ManufacturingDate: date("2026-01-20"), Image: "uploads/seed-diamond-pendant.jpg"},
		{Name: "Gold Jhumka Earrings", Price: 38000, Stock: 8, Description: "Traditional jhumkas with pearl drops", Category: models.CategoryGold, ManufacturingDate: date("2025-12-05"), Image: "uploads/seed-gold-jhumka.jpg"},
		{Name: "Silver Cuff Bracelet", Price: 3200, Stock: 25, Description: "Hammered sterling silver cuff", Category: models.CategorySilver, ManufacturingDate: date("2026-02-10"), Image: "uploads/seed-silver-cuff.jpg"},
	}
	return db.Create(&products).Error
}
