package repositories

import "katalog/internal/models"

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	GetAll() ([]models.Category, error)
	GetByID(id string) (*models.Category, error)
	GetByName(name string) (*models.Category, error)
	ExistsByID(id string) (bool, error)
	Create(category *models.Category) error
}
