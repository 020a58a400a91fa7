// Package httpapi exposes the recipe API over HTTP/JSON using fiber.
package httpapi

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/recipeapi/internal/logging"
	"github.com/dmitrijs2005/recipeapi/internal/server/models"
	"github.com/dmitrijs2005/recipeapi/internal/server/services"
)

const (
	shutdownTimeout = 10 * time.Second
	bodyLimit       = 10 << 20
)

type UserService interface {
	CreateUser(ctx context.Context, email, password string, extra services.UserFields) (*models.User, error)
	ObtainToken(ctx context.Context, email, password string) (string, error)
	UserIDFromToken(token string) (int64, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, name, password *string) (*models.User, error)
}

type LabelService interface {
	List(ctx context.Context, userID int64, assignedOnly bool) ([]*models.Label, error)
	Create(ctx context.Context, userID int64, name string) (*models.Label, error)
	Get(ctx context.Context, userID, id int64) (*models.Label, error)
	Update(ctx context.Context, userID, id int64, name *string) (*models.Label, error)
	Delete(ctx context.Context, userID, id int64) error
}

type RecipeService interface {
	List(ctx context.Context, userID int64, filter models.RecipeFilter) ([]*models.Recipe, error)
	Get(ctx context.Context, userID, id int64) (*models.Recipe, error)
	Create(ctx context.Context, userID int64, in services.RecipeInput) (*models.Recipe, error)
	Update(ctx context.Context, userID, id int64, in services.RecipeInput) (*models.Recipe, error)
	Delete(ctx context.Context, userID, id int64) error
	UploadImage(ctx context.Context, userID, id int64, filename string, body io.Reader, size int64, contentType string) (*models.Recipe, error)
	ImageURL(ctx context.Context, key string) (string, error)
}

type Server struct {
	address     string
	app         *fiber.App
	users       UserService
	tags        LabelService
	ingredients LabelService
	recipes     RecipeService
	logger      logging.Logger
}

func NewServer(address string, l logging.Logger, us UserService, tags, ingredients LabelService, rs RecipeService) *Server {
	s := &Server{
		address:     address,
		users:       us,
		tags:        tags,
		ingredients: ingredients,
		recipes:     rs,
		logger:      l.With("module", "http_server"),
	}

	s.app = fiber.New(fiber.Config{
		ErrorHandler:          s.handleError,
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
	})
	s.routes()

	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Use(s.logRequests)

	api := s.app.Group("/api")
	api.Get("/health/", s.health)

	user := api.Group("/user")
	user.Post("/create/", s.createUser)
	user.Post("/token/", s.obtainToken)
	user.Get("/me/", s.requireAuth, s.getMe)
	user.Patch("/me/", s.requireAuth, s.updateMe)

	recipe := api.Group("/recipe", s.requireAuth)
	s.labelRoutes(recipe.Group("/tags"), s.tags)
	s.labelRoutes(recipe.Group("/ingredients"), s.ingredients)

	recipes := recipe.Group("/recipes")
	recipes.Get("/", s.listRecipes)
	recipes.Post("/", s.createRecipe)
	recipes.Get("/:id/", s.getRecipe)
	recipes.Put("/:id/", s.updateRecipe(false))
	recipes.Patch("/:id/", s.updateRecipe(true))
	recipes.Delete("/:id/", s.deleteRecipe)
	recipes.Post("/:id/upload-image/", s.uploadRecipeImage)
}

// Run serves HTTP until ctx is cancelled, then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.app.Listen(s.address); err != nil {
		return err
	}

	return nil
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "OK"})
}
