package models

import "time"

// CreateProductInput carries the fields needed to create a product. The
// owner and every category must already exist.
type CreateProductInput struct {
	OwnerID     string   `json:"owner_id" validate:"required,uuid"`
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	Price       float64  `json:"price" validate:"gte=0"`
	CategoryIDs []string `json:"category_ids" validate:"dive,uuid"`
}

// UpdateProductInput carries a partial update. Scalar fields are pointers
// so that "omitted" and "set to zero value" stay distinguishable: a nil
// field leaves the stored value unchanged. CategoryIDs is the exception:
// when non-nil the product's category set is replaced wholesale by it (an
// empty non-nil slice clears all categories); when nil the set is kept.
type UpdateProductInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=3,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	CategoryIDs []string `json:"category_ids" validate:"omitempty,dive,uuid"`
}

// UserSummary is the owner block nested inside a product response.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CategorySummary is one entry of the category list inside a product response.
type CategorySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProductResponse is the caller-facing shape of a product, with the owner
// and categories embedded. Categories are sorted by name.
type ProductResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       float64           `json:"price"`
	Owner       UserSummary       `json:"owner"`
	Categories  []CategorySummary `json:"categories"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
