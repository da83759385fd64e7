package models

import "gorm.io/gorm"

// User is an account that can authenticate and manage the catalogue.
type User struct {
	gorm.Model
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialised
}
