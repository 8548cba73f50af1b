package handlers

import (
	"log"

	"katalog/internal/models"
	"katalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)

	// Foreign-key lookups live under the referenced resource.
	router.Get("/users/:id/products", h.HandleGetProductsByUser)
	router.Get("/categories/:id/products", h.HandleGetProductsByCategory)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return errorJSON(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, err := h.service.GetProductByID(productID)
	if err != nil {
		log.Printf("Error getting product by ID %s: %v", productID, err)
		return errorJSON(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleGetProductsByUser retrieves all products owned by a user.
func (h *ProductHandler) HandleGetProductsByUser(c *fiber.Ctx) error {
	userID := c.Params("id")
	products, err := h.service.GetProductsByUser(userID)
	if err != nil {
		log.Printf("Error getting products for user %s: %v", userID, err)
		return errorJSON(c, err, "Could not retrieve products for user")
	}
	return c.JSON(products)
}

// HandleGetProductsByCategory retrieves all products in a category.
func (h *ProductHandler) HandleGetProductsByCategory(c *fiber.Ctx) error {
	categoryID := c.Params("id")
	products, err := h.service.GetProductsByCategory(categoryID)
	if err != nil {
		log.Printf("Error getting products for category %s: %v", categoryID, err)
		return errorJSON(c, err, "Could not retrieve products for category")
	}
	return c.JSON(products)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input models.CreateProductInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing create product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return validationJSON(c, err)
	}

	product, err := h.service.CreateProduct(input)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return errorJSON(c, err, "Could not create product")
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update to an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	productID := c.Params("id")

	var input models.UpdateProductInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing update product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return validationJSON(c, err)
	}

	product, err := h.service.UpdateProduct(productID, input)
	if err != nil {
		log.Printf("Error updating product %s: %v", productID, err)
		return errorJSON(c, err, "Could not update product")
	}

	return c.JSON(product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	if err := h.service.DeleteProduct(productID); err != nil {
		log.Printf("Error deleting product %s: %v", productID, err)
		return errorJSON(c, err, "Could not delete product")
	}

	return c.JSON(fiber.Map{
		"message": "Product " + productID + " deleted successfully",
	})
}
