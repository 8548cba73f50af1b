package services

import (
	"encoding/json"
	"fmt"
	"log"

	"katalog/internal/apperrors"
	"katalog/internal/models"
	"katalog/internal/repositories"
)

// EventPublisher publishes catalog events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ProductService handles business logic related to products. It validates
// owner and category references against their repositories before any
// mutation touches storage.
type ProductService struct {
	productRepo  repositories.ProductRepository
	userRepo     repositories.UserRepository
	categoryRepo repositories.CategoryRepository
	mqClient     EventPublisher
}

// NewProductService creates a new ProductService. mqClient may be nil, in
// which case no events are published.
func NewProductService(
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	categoryRepo repositories.CategoryRepository,
	mqClient EventPublisher,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		mqClient:     mqClient,
	}
}

// GetAllProducts retrieves all products, projected.
func (s *ProductService) GetAllProducts() ([]models.ProductResponse, error) {
	products, err := s.productRepo.GetAll()
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

// GetProductByID retrieves a single product by its ID, projected.
func (s *ProductService) GetProductByID(id string) (*models.ProductResponse, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetProductsByUser retrieves all products owned by the given user. A user
// without products yields an empty list; an unknown user is an error.
func (s *ProductService) GetProductsByUser(userID string) ([]models.ProductResponse, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	products, err := s.productRepo.GetByOwnerID(userID)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

// GetProductsByCategory retrieves all products associated with the given
// category. An unknown category is an error.
func (s *ProductService) GetProductsByCategory(categoryID string) ([]models.ProductResponse, error) {
	exists, err := s.categoryRepo.ExistsByID(categoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFound("category", categoryID)
	}
	products, err := s.productRepo.GetByCategoryID(categoryID)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

// CreateProduct validates the owner and categories, persists a new product
// and returns its projection. Nothing is persisted if validation fails.
func (s *ProductService) CreateProduct(input models.CreateProductInput) (*models.ProductResponse, error) {
	owner, err := s.userRepo.GetByID(input.OwnerID)
	if err != nil {
		return nil, err
	}

	categories, err := s.resolveCategories(input.CategoryIDs)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		OwnerID:     owner.ID,
		Owner:       *owner,
		Categories:  categories,
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publishEvent("product.created", product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// UpdateProduct applies a partial update to an existing product. Scalar
// fields follow patch semantics: only non-nil inputs overwrite the stored
// value. The category set is replaced wholesale whenever CategoryIDs is
// non-nil. All references are resolved before any mutation is applied, so
// a missing category aborts the update without a partial write.
func (s *ProductService) UpdateProduct(id string, input models.UpdateProductInput) (*models.ProductResponse, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	var newCategories []models.Category
	if input.CategoryIDs != nil {
		newCategories, err = s.resolveCategories(input.CategoryIDs)
		if err != nil {
			return nil, err
		}
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.CategoryIDs != nil {
		product.Categories = newCategories
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.publishEvent("product.updated", product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// DeleteProduct removes a product and its category associations by ID.
func (s *ProductService) DeleteProduct(id string) error {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(product.ID); err != nil {
		return err
	}

	s.publishEvent("product.deleted", product)
	return nil
}

// resolveCategories looks up every requested category and returns the
// resolved set, deduplicated in first-occurrence order. The first missing
// ID aborts resolution; no partial result is returned. An empty input
// resolves to an empty set.
func (s *ProductService) resolveCategories(ids []string) ([]models.Category, error) {
	categories := make([]models.Category, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		category, err := s.categoryRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, nil
}

func (s *ProductService) requireUser(userID string) error {
	exists, err := s.userRepo.ExistsByID(userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFound("user", userID)
	}
	return nil
}

// publishEvent sends a catalog event to the message broker. Publishing is
// best-effort: failures are logged and never fail the request.
func (s *ProductService) publishEvent(routingKey string, product *models.Product) {
	if s.mqClient == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
		"owner_id":   product.OwnerID,
		"price":      product.Price,
	})
	if err != nil {
		log.Printf("Failed to marshal %s event for product %s: %v", routingKey, product.ID, err)
		return
	}

	if err := s.mqClient.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event for product %s: %v", routingKey, product.ID, err)
	}
}
