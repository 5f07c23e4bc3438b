package auth

import (
	"database/sql"

	authhttp "helfy-server/internal/auth/adapter/http"
	"helfy-server/internal/auth/adapter/persistence/postgres"
	"helfy-server/internal/auth/adapter/security"
	"helfy-server/internal/auth/config"
	"helfy-server/internal/auth/domain/repository"
	"helfy-server/internal/auth/usecase"
	"helfy-server/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// Module represents the complete authentication module
type Module struct {
	store    repository.CredentialStore
	tokenSvc repository.TokenService
	usecase  usecase.AuthUsecaseInterface
	handler  *authhttp.AuthHTTPHandler
	config   *config.Config
}

// NewModule wires the credential store, token service, usecase and HTTP
// handler together. The database handle is owned by the caller.
func NewModule(db *sql.DB, cfg *config.Config, activity usecase.ActivityRecorder, log logger.Logger) *Module {
	store := postgres.NewStore(db)
	tokenSvc := security.NewOpaqueTokenService(store, cfg.TokenTTL)
	authUsecase := usecase.NewAuthUsecase(store, tokenSvc, activity, cfg)
	handler := authhttp.NewAuthHTTPHandler(authUsecase, log)

	return &Module{
		store:    store,
		tokenSvc: tokenSvc,
		usecase:  authUsecase,
		handler:  handler,
		config:   cfg,
	}
}

// RegisterRoutes registers authentication routes with the provided router
func (m *Module) RegisterRoutes(router fiber.Router) {
	group := router.Group("/api/auth")
	m.handler.SetupRoutes(group, m.Middleware())
}

// Middleware returns the token-gating middleware
func (m *Module) Middleware() *authhttp.AuthMiddleware {
	return authhttp.NewAuthMiddleware(m.usecase)
}

// Usecase returns the auth usecase for external access
func (m *Module) Usecase() usecase.AuthUsecaseInterface {
	return m.usecase
}
