package entities

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"index;size:255" json:"name"`
	Category    string         `gorm:"index;size:100" json:"category"`
	Price       float64        `json:"price"`
	Stock       int            `json:"stock"`
	Description string         `gorm:"size:2000" json:"description,omitempty"`
	Brand       string         `gorm:"size:100" json:"brand,omitempty"`
	Model       string         `gorm:"size:100" json:"model,omitempty"`
	Color       string         `gorm:"size:50" json:"color,omitempty"`
	Warranty    string         `gorm:"size:100" json:"warranty,omitempty"`
	ImageURL    string         `gorm:"size:512" json:"image_url,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
