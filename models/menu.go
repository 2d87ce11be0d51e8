package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Category struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string     `gorm:"unique;not null" json:"name"`
	Image     string     `json:"image"`
	SortOrder int        `json:"sort_order"`
	Items     []MenuItem `gorm:"foreignKey:CategoryID" json:"items,omitempty"`
}

type MenuItem struct {
	ID          string          `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Image       string          `json:"image"`
	CategoryID  uint            `gorm:"index" json:"category_id"`
	Available   bool            `gorm:"default:true" json:"available"`
	// Optional add-ons as [{"name": "...", "price": "..."}]; selecting an
	// add-on produces a composite cart line id "<item-id>:<addon-name>".
	AddOns    datatypes.JSON `json:"add_ons,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
