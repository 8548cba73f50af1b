package repositories

import (
	"errors"
	"fmt"

	"katalog/internal/apperrors"
	"katalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products with their owner and categories.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Preload("Owner").Preload("Categories").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID with its owner and categories.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Owner").Preload("Categories").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("product", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetByOwnerID retrieves all products owned by the given user.
func (r *GORMProductRepository) GetByOwnerID(ownerID string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Owner").Preload("Categories").
		Find(&products, "owner_id = ?", ownerID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get products by owner %s: %w", ownerID, err)
	}
	return products, nil
}

// GetByCategoryID retrieves all products associated with the given category.
func (r *GORMProductRepository) GetByCategoryID(categoryID string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Owner").Preload("Categories").
		Joins("JOIN product_categories pc ON pc.product_id = products.id").
		Where("pc.category_id = ?", categoryID).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get products by category %s: %w", categoryID, err)
	}
	return products, nil
}

// Create creates a new product and its category associations.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update persists an existing product. The category associations are
// replaced with whatever the product carries, removed ones included.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Omit("Categories", "Owner").Save(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound for an update that
		// matched nothing, so we check RowsAffected.
		return apperrors.NewNotFound("product", product.ID)
	}
	if err := r.db.Model(product).Association("Categories").Replace(product.Categories); err != nil {
		return fmt.Errorf("failed to replace categories for product %s: %w", product.ID, err)
	}
	return nil
}

// Delete removes a product and its category associations by ID.
func (r *GORMProductRepository) Delete(id string) error {
	product := models.Product{ID: id}
	if err := r.db.Model(&product).Association("Categories").Clear(); err != nil {
		return fmt.Errorf("failed to clear categories for product %s: %w", id, err)
	}
	res := r.db.Delete(&product)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFound("product", id)
	}
	return nil
}
