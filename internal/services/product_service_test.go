package services_test

import (
	"errors"
	"testing"

	"katalog/internal/apperrors"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByOwnerID(ownerID string) ([]models.Product, error) {
	args := m.Called(ownerID)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByCategoryID(categoryID string) ([]models.Product, error) {
	args := m.Called(categoryID)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByID(id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockCategoryRepository is a mock implementation of repositories.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) GetAll() ([]models.Category, error) {
	args := m.Called()
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(id string) (*models.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByName(name string) (*models.Category, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) ExistsByID(id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) Create(category *models.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}

func newServiceWithMocks() (*services.ProductService, *MockProductRepository, *MockUserRepository, *MockCategoryRepository) {
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	categoryRepo := new(MockCategoryRepository)
	service := services.NewProductService(productRepo, userRepo, categoryRepo, nil)
	return service, productRepo, userRepo, categoryRepo
}

func TestProductService_GetAllProducts(t *testing.T) {
	service, productRepo, _, _ := newServiceWithMocks()

	owner := models.User{ID: "user-1", Name: "Alice", Email: "alice@example.com"}
	stored := []models.Product{
		{ID: "prod-1", Name: "Laptop", Price: 1200.0, OwnerID: owner.ID, Owner: owner},
		{ID: "prod-2", Name: "Mouse", Price: 25.0, OwnerID: owner.ID, Owner: owner},
	}
	productRepo.On("GetAll").Return(stored, nil).Once()

	responses, err := service.GetAllProducts()

	assert.NoError(t, err)
	assert.Len(t, responses, 2)
	assert.Equal(t, "prod-1", responses[0].ID)
	assert.Equal(t, "Alice", responses[0].Owner.Name)
	productRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID_NotFound(t *testing.T) {
	service, productRepo, _, _ := newServiceWithMocks()

	productRepo.On("GetByID", "missing").Return(nil, apperrors.NewNotFound("product", "missing")).Once()

	resp, err := service.GetProductByID("missing")

	assert.Error(t, err)
	assert.Nil(t, resp)
	var notFound *apperrors.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, "product", notFound.Entity)
	assert.Equal(t, "missing", notFound.ID)
	productRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	service, productRepo, userRepo, categoryRepo := newServiceWithMocks()

	owner := &models.User{ID: "user-1", Name: "Alice", Email: "alice@example.com"}
	catBooks := &models.Category{ID: "cat-10", Name: "Books"}
	catOffice := &models.Category{ID: "cat-20", Name: "Office"}

	userRepo.On("GetByID", "user-1").Return(owner, nil).Once()
	categoryRepo.On("GetByID", "cat-10").Return(catBooks, nil).Once()
	categoryRepo.On("GetByID", "cat-20").Return(catOffice, nil).Once()
	productRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	input := models.CreateProductInput{
		OwnerID:     "user-1",
		Name:        "Pen",
		Price:       1.5,
		CategoryIDs: []string{"cat-10", "cat-20"},
	}
	resp, err := service.CreateProduct(input)

	assert.NoError(t, err)
	assert.Equal(t, "Pen", resp.Name)
	assert.Equal(t, 1.5, resp.Price)
	assert.Equal(t, "Alice", resp.Owner.Name)
	assert.Equal(t, "alice@example.com", resp.Owner.Email)
	assert.Len(t, resp.Categories, 2)
	productRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
	categoryRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_OwnerNotFound(t *testing.T) {
	service, productRepo, userRepo, _ := newServiceWithMocks()

	userRepo.On("GetByID", "ghost").Return(nil, apperrors.NewNotFound("user", "ghost")).Once()

	input := models.CreateProductInput{OwnerID: "ghost", Name: "Pen", Price: 1.5}
	resp, err := service.CreateProduct(input)

	assert.Error(t, err)
	assert.Nil(t, resp)
	var notFound *apperrors.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, "user", notFound.Entity)
	productRepo.AssertNotCalled(t, "Create", mock.Anything)
	userRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_CategoryNotFound(t *testing.T) {
	service, productRepo, userRepo, categoryRepo := newServiceWithMocks()

	owner := &models.User{ID: "user-1", Name: "Alice"}
	userRepo.On("GetByID", "user-1").Return(owner, nil).Once()
	categoryRepo.On("GetByID", "cat-missing").Return(nil, apperrors.NewNotFound("category", "cat-missing")).Once()

	input := models.CreateProductInput{
		OwnerID:     "user-1",
		Name:        "Pen",
		Price:       1.5,
		CategoryIDs: []string{"cat-missing"},
	}
	resp, err := service.CreateProduct(input)

	assert.Error(t, err)
	assert.Nil(t, resp)
	var notFound *apperrors.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, "category", notFound.Entity)
	assert.Equal(t, "cat-missing", notFound.ID)
	productRepo.AssertNotCalled(t, "Create", mock.Anything)
	categoryRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_DeduplicatesCategoryIDs(t *testing.T) {
	service, productRepo, userRepo, categoryRepo := newServiceWithMocks()

	owner := &models.User{ID: "user-1", Name: "Alice"}
	catBooks := &models.Category{ID: "cat-10", Name: "Books"}

	userRepo.On("GetByID", "user-1").Return(owner, nil).Once()
	// A duplicated ID must be resolved once and appear once in the result.
	categoryRepo.On("GetByID", "cat-10").Return(catBooks, nil).Once()
	productRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	input := models.CreateProductInput{
		OwnerID:     "user-1",
		Name:        "Pen",
		Price:       1.5,
		CategoryIDs: []string{"cat-10", "cat-10", "cat-10"},
	}
	resp, err := service.CreateProduct(input)

	assert.NoError(t, err)
	assert.Len(t, resp.Categories, 1)
	categoryRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_PublishesEvent(t *testing.T) {
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	categoryRepo := new(MockCategoryRepository)
	publisher := new(MockEventPublisher)
	service := services.NewProductService(productRepo, userRepo, categoryRepo, publisher)

	owner := &models.User{ID: "user-1", Name: "Alice"}
	userRepo.On("GetByID", "user-1").Return(owner, nil).Once()
	productRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	publisher.On("Publish", "product.created", mock.Anything).Return(nil).Once()

	input := models.CreateProductInput{OwnerID: "user-1", Name: "Pen", Price: 1.5}
	_, err := service.CreateProduct(input)

	assert.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestProductService_CreateProduct_InMemoryTimestamps(t *testing.T) {
	// Wired the way main runs without a database: the in-memory gateways
	// must assign timestamps on first save so responses never carry
	// zero-value times.
	productRepo := repositories.NewMockProductRepository()
	userRepo := repositories.NewMockUserRepository()
	categoryRepo := repositories.NewMockCategoryRepository()
	service := services.NewProductService(productRepo, userRepo, categoryRepo, nil)

	owner := &models.User{Name: "Alice", Username: "alice", Email: "alice@example.com", Password: "secret"}
	assert.NoError(t, userRepo.Create(owner))
	category := &models.Category{Name: "Office"}
	assert.NoError(t, categoryRepo.Create(category))

	resp, err := service.CreateProduct(models.CreateProductInput{
		OwnerID:     owner.ID,
		Name:        "Pen",
		Price:       1.5,
		CategoryIDs: []string{category.ID},
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.False(t, resp.CreatedAt.IsZero())
	assert.False(t, resp.UpdatedAt.IsZero())
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	service, productRepo, _, _ := newServiceWithMocks()

	productRepo.On("GetByID", "missing").Return(nil, apperrors.NewNotFound("product", "missing")).Once()

	name := "X"
	resp, err := service.UpdateProduct("missing", models.UpdateProductInput{Name: &name})

	assert.Error(t, err)
	assert.Nil(t, resp)
	var notFound *apperrors.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	productRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestProductService_UpdateProduct_PatchSemantics(t *testing.T) {
	service, productRepo, _, categoryRepo := newServiceWithMocks()

	existing := &models.Product{
		ID:          "prod-1",
		Name:        "Pen",
		Description: "Ballpoint",
		Price:       1.5,
		Owner:       models.User{ID: "user-1", Name: "Alice"},
		OwnerID:     "user-1",
		Categories:  []models.Category{{ID: "cat-10", Name: "Office"}},
	}
	productRepo.On("GetByID", "prod-1").Return(existing, nil).Once()

	var updated *models.Product
	productRepo.On("Update", mock.AnythingOfType("*models.Product")).
		Run(func(args mock.Arguments) {
			updated = args.Get(0).(*models.Product)
		}).
		Return(nil).Once()

	name := "Fountain Pen"
	resp, err := service.UpdateProduct("prod-1", models.UpdateProductInput{Name: &name})

	assert.NoError(t, err)
	assert.Equal(t, "Fountain Pen", updated.Name)
	// Omitted fields keep their stored values.
	assert.Equal(t, "Ballpoint", updated.Description)
	assert.Equal(t, 1.5, updated.Price)
	assert.Len(t, updated.Categories, 1)
	assert.Equal(t, "Fountain Pen", resp.Name)
	assert.Len(t, resp.Categories, 1)
	// CategoryIDs was nil, so no category lookup happens at all.
	categoryRepo.AssertNotCalled(t, "GetByID", mock.Anything)
	productRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_ClearsCategories(t *testing.T) {
	service, productRepo, _, _ := newServiceWithMocks()

	existing := &models.Product{
		ID:         "prod-1",
		Name:       "Pen",
		Price:      1.5,
		Owner:      models.User{ID: "user-1", Name: "Alice"},
		OwnerID:    "user-1",
		Categories: []models.Category{{ID: "cat-10", Name: "Office"}},
	}
	productRepo.On("GetByID", "prod-1").Return(existing, nil).Once()

	var updated *models.Product
	productRepo.On("Update", mock.AnythingOfType("*models.Product")).
		Run(func(args mock.Arguments) {
			updated = args.Get(0).(*models.Product)
		}).
		Return(nil).Once()

	// An empty but non-nil set clears every association.
	resp, err := service.UpdateProduct("prod-1", models.UpdateProductInput{CategoryIDs: []string{}})

	assert.NoError(t, err)
	assert.Empty(t, updated.Categories)
	assert.Empty(t, resp.Categories)
	// Scalars stay untouched.
	assert.Equal(t, "Pen", updated.Name)
	assert.Equal(t, 1.5, updated.Price)
	productRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_CategoryNotFound(t *testing.T) {
	service, productRepo, _, categoryRepo := newServiceWithMocks()

	existing := &models.Product{
		ID:      "prod-1",
		Name:    "Pen",
		Price:   1.5,
		OwnerID: "user-1",
	}
	productRepo.On("GetByID", "prod-1").Return(existing, nil).Once()
	categoryRepo.On("GetByID", "cat-missing").Return(nil, apperrors.NewNotFound("category", "cat-missing")).Once()

	price := 2.0
	resp, err := service.UpdateProduct("prod-1", models.UpdateProductInput{
		Price:       &price,
		CategoryIDs: []string{"cat-missing"},
	})

	assert.Error(t, err)
	assert.Nil(t, resp)
	// Validation failed before any mutation, so nothing was persisted and
	// the stored scalars are untouched.
	productRepo.AssertNotCalled(t, "Update", mock.Anything)
	assert.Equal(t, 1.5, existing.Price)
	categoryRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_ReplacesCategories(t *testing.T) {
	service, productRepo, _, categoryRepo := newServiceWithMocks()

	existing := &models.Product{
		ID:      "prod-1",
		Name:    "Pen",
		Price:   1.5,
		Owner:   models.User{ID: "user-1", Name: "Alice"},
		OwnerID: "user-1",
		Categories: []models.Category{
			{ID: "cat-10", Name: "Office"},
			{ID: "cat-20", Name: "Writing"},
		},
	}
	productRepo.On("GetByID", "prod-1").Return(existing, nil).Once()
	categoryRepo.On("GetByID", "cat-30").Return(&models.Category{ID: "cat-30", Name: "Luxury"}, nil).Once()

	var updated *models.Product
	productRepo.On("Update", mock.AnythingOfType("*models.Product")).
		Run(func(args mock.Arguments) {
			updated = args.Get(0).(*models.Product)
		}).
		Return(nil).Once()

	price := 2.0
	resp, err := service.UpdateProduct("prod-1", models.UpdateProductInput{
		Price:       &price,
		CategoryIDs: []string{"cat-30"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Pen", resp.Name)
	assert.Equal(t, 2.0, resp.Price)
	// The category set is replaced wholesale, never merged.
	assert.Len(t, updated.Categories, 1)
	assert.Equal(t, "cat-30", updated.Categories[0].ID)
	assert.Len(t, resp.Categories, 1)
	assert.Equal(t, "Luxury", resp.Categories[0].Name)
	productRepo.AssertExpectations(t)
	categoryRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	service, productRepo, _, _ := newServiceWithMocks()

	existing := &models.Product{ID: "prod-1", Name: "Pen", OwnerID: "user-1"}
	productRepo.On("GetByID", "prod-1").Return(existing, nil).Once()
	productRepo.On("Delete", "prod-1").Return(nil).Once()

	err := service.DeleteProduct("prod-1")

	assert.NoError(t, err)
	productRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct_NotFound(t *testing.T) {
	service, productRepo, _, _ := newServiceWithMocks()

	productRepo.On("GetByID", "missing").Return(nil, apperrors.NewNotFound("product", "missing")).Once()

	err := service.DeleteProduct("missing")

	assert.Error(t, err)
	var notFound *apperrors.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	productRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestProductService_GetProductsByUser_EmptyList(t *testing.T) {
	service, productRepo, userRepo, _ := newServiceWithMocks()

	userRepo.On("ExistsByID", "user-1").Return(true, nil).Once()
	productRepo.On("GetByOwnerID", "user-1").Return([]models.Product{}, nil).Once()

	responses, err := service.GetProductsByUser("user-1")

	// A valid user without products yields an empty list, not an error.
	assert.NoError(t, err)
	assert.NotNil(t, responses)
	assert.Empty(t, responses)
	userRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestProductService_GetProductsByUser_UserNotFound(t *testing.T) {
	service, productRepo, userRepo, _ := newServiceWithMocks()

	userRepo.On("ExistsByID", "ghost").Return(false, nil).Once()

	responses, err := service.GetProductsByUser("ghost")

	assert.Error(t, err)
	assert.Nil(t, responses)
	var notFound *apperrors.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, "user", notFound.Entity)
	productRepo.AssertNotCalled(t, "GetByOwnerID", mock.Anything)
}

func TestProductService_GetProductsByCategory(t *testing.T) {
	service, productRepo, _, categoryRepo := newServiceWithMocks()

	owner := models.User{ID: "user-1", Name: "Alice"}
	stored := []models.Product{
		{ID: "prod-1", Name: "Pen", OwnerID: owner.ID, Owner: owner,
			Categories: []models.Category{{ID: "cat-10", Name: "Office"}}},
	}
	categoryRepo.On("ExistsByID", "cat-10").Return(true, nil).Once()
	productRepo.On("GetByCategoryID", "cat-10").Return(stored, nil).Once()

	responses, err := service.GetProductsByCategory("cat-10")

	assert.NoError(t, err)
	assert.Len(t, responses, 1)
	assert.Equal(t, "Pen", responses[0].Name)
	categoryRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestProductService_GetProductsByCategory_NotFound(t *testing.T) {
	service, productRepo, _, categoryRepo := newServiceWithMocks()

	categoryRepo.On("ExistsByID", "ghost").Return(false, nil).Once()

	responses, err := service.GetProductsByCategory("ghost")

	assert.Error(t, err)
	assert.Nil(t, responses)
	var notFound *apperrors.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, "category", notFound.Entity)
	productRepo.AssertNotCalled(t, "GetByCategoryID", mock.Anything)
}
