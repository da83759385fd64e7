package models

import (
	"time"

	"gorm.io/gorm"
)

// Product categories accepted by the catalogue.
const (
	CategoryGold    = "Gold"
	CategorySilver  = "Silver"
	CategoryDiamond = "Diamond"
)

// Product is a jewellery item in the catalogue.
//
// The primary key serialises as "_id": the API's wire format predates this
// codebase and frontends key on that field.
type Product struct {
	ID                uint           `gorm:"primaryKey" json:"_id"`
	Name              string         `gorm:"size:255;not null;index" json:"name"`
	Price             float64        `gorm:"not null" json:"price"`
	Stock             int            `gorm:"not null" json:"stock"`
	Description       string         `gorm:"type:text;not null" json:"description"`
	Category          string         `gorm:"size:50;not null;index" json:"category"`
	ManufacturingDate time.Time      `gorm:"not null" json:"manufacturingDate"`
	Image             string         `gorm:"size:512;not null" json:"image"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// ListedProduct is a Product whose image path has been rewritten into a
// fully qualified URL for listing responses. A product without an image
// serialises as "image": null.
type ListedProduct struct {
	Product
	Image *string `json:"image"`
}
