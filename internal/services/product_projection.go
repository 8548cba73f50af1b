package services

import (
	"sort"

	"katalog/internal/models"
)

// ToProductResponse projects a persisted product, with its owner and
// categories attached, into the caller-facing response shape. It is a pure
// transformation: scalars and timestamps are copied verbatim, the owner is
// reduced to a summary, and categories are summarized and sorted ascending
// by name. The sort is stable, so equally named categories keep their
// resolution order.
func ToProductResponse(product *models.Product) models.ProductResponse {
	categories := make([]models.CategorySummary, 0, len(product.Categories))
	for _, c := range product.Categories {
		categories = append(categories, models.CategorySummary{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
		})
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})

	return models.ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Owner: models.UserSummary{
			ID:    product.Owner.ID,
			Name:  product.Owner.Name,
			Email: product.Owner.Email,
		},
		Categories: categories,
		CreatedAt:  product.CreatedAt,
		UpdatedAt:  product.UpdatedAt,
	}
}

func toProductResponses(products []models.Product) []models.ProductResponse {
	responses := make([]models.ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i]))
	}
	return responses
}
