package models

import "time"

// Product represents a catalog product. Every product is owned by exactly
// one user and may belong to any number of categories.
type Product struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string     `json:"name" validate:"required,min=3,max=100"`
	Description string     `json:"description" validate:"omitempty,max=500"`
	Price       float64    `json:"price" validate:"gte=0"`
	OwnerID     string     `json:"owner_id" gorm:"type:varchar(36);index" validate:"required,uuid"`
	Owner       User       `json:"-" gorm:"foreignKey:OwnerID"`
	Categories  []Category `json:"-" gorm:"many2many:product_categories"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
