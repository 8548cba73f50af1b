package services

import (
	"errors"
	"fmt"

	"katalog/internal/apperrors"
	"katalog/internal/models"
	"katalog/internal/repositories"
)

// CategoryService handles business logic related to categories.
type CategoryService struct {
	repo repositories.CategoryRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{
		repo: repo,
	}
}

// GetAllCategories retrieves all categories.
func (s *CategoryService) GetAllCategories() ([]models.Category, error) {
	return s.repo.GetAll()
}

// GetCategoryByID retrieves a single category by its ID.
func (s *CategoryService) GetCategoryByID(id string) (*models.Category, error) {
	return s.repo.GetByID(id)
}

// CreateCategory creates a new category. Category names are unique; a
// duplicate name is a conflict.
func (s *CategoryService) CreateCategory(category *models.Category) error {
	existing, err := s.repo.GetByName(category.Name)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to check category name %s: %w", category.Name, err)
		}
	}
	if existing != nil {
		return apperrors.NewConflict("category with name '%s' already exists", category.Name)
	}

	return s.repo.Create(category)
}
