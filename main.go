package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"katalog/internal/handlers"
	"katalog/internal/middleware"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"
	"katalog/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("JWT_SECRET", "katalog_dev_secret")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	databaseDSN := viper.GetString("DATABASE_DSN")
	jwtSecret := viper.GetString("JWT_SECRET")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Repositories ---
	// With a DSN configured the service runs against PostgreSQL; without
	// one it falls back to the in-memory repositories for local development.
	var (
		productRepo  repositories.ProductRepository
		userRepo     repositories.UserRepository
		categoryRepo repositories.CategoryRepository
	)
	if databaseDSN != "" {
		db, err := gorm.Open(postgres.Open(databaseDSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		productRepo = repositories.NewGORMProductRepository(db)
		userRepo = repositories.NewGORMUserRepository(db)
		categoryRepo = repositories.NewGORMCategoryRepository(db)
	} else {
		log.Println("DATABASE_DSN not set, using in-memory repositories")
		productRepo = repositories.NewMockProductRepository()
		userRepo = repositories.NewMockUserRepository()
		categoryRepo = repositories.NewMockCategoryRepository()
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		var err error
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set, catalog events disabled")
	}

	// --- Services ---
	authService := services.NewAuthService(userRepo, jwtSecret)
	categoryService := services.NewCategoryService(categoryRepo)
	var productService *services.ProductService
	if mqClient != nil {
		productService = services.NewProductService(productRepo, userRepo, categoryRepo, mqClient)
	} else {
		productService = services.NewProductService(productRepo, userRepo, categoryRepo, nil)
	}

	// --- Seed bootstrap data ---
	seedDefaults(authService, categoryService)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)

	// --- Fiber App ---
	app := fiber.New()
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1")

	// Authentication routes (public)
	authHandler.RegisterRoutes(apiV1)

	// Catalog routes (require JWT authentication)
	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	productHandler.RegisterRoutes(protectedRoutes)
	categoryHandler.RegisterRoutes(protectedRoutes)

	// --- Start RabbitMQ Consumer in a Goroutine ---
	// Listens for the catalog events this service publishes, e.g. for
	// audit logging or downstream sync. Handlers that return an error get
	// their message nacked and requeued.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for catalog events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received catalog event %s (tag: %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeCatalogEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// seedDefaults creates the bootstrap admin user and a starter set of
// categories when they do not exist yet. Seeding is idempotent: conflicts
// with already seeded records are ignored.
func seedDefaults(authService *services.AuthService, categoryService *services.CategoryService) {
	admin := models.User{
		Name:     "Administrator",
		Username: "admin",
		Email:    "admin@katalog.local",
		Password: viper.GetString("ADMIN_PASSWORD"),
	}
	if admin.Password == "" {
		admin.Password = "admin123"
	}
	if err := authService.RegisterUser(&admin); err != nil {
		log.Printf("Skipping admin seed: %v", err)
	} else {
		log.Printf("Seeded admin user: %s (ID: %s)", admin.Username, admin.ID)
	}

	categories := []models.Category{
		{Name: "Electronics", Description: "Devices and gadgets"},
		{Name: "Books", Description: "Printed and digital books"},
		{Name: "Office", Description: "Office and school supplies"},
	}
	for i := range categories {
		if err := categoryService.CreateCategory(&categories[i]); err != nil {
			log.Printf("Skipping category seed %s: %v", categories[i].Name, err)
		} else {
			log.Printf("Seeded category: %s (ID: %s)", categories[i].Name, categories[i].ID)
		}
	}
}
