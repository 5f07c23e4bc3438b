package http

import (
	"helfy-server/internal/auth/usecase"
	apperrors "helfy-server/internal/shared/errors"
	"helfy-server/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	usecase usecase.AuthUsecaseInterface
	log     logger.Logger
}

// NewAuthHTTPHandler creates a new authentication HTTP handler
func NewAuthHTTPHandler(uc usecase.AuthUsecaseInterface, log logger.Logger) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		usecase: uc,
		log:     log.WithComponent("auth_http"),
	}
}

// SetupRoutes registers the auth routes under the given router
func (h *AuthHTTPHandler) SetupRoutes(router fiber.Router, middleware *AuthMiddleware) {
	// Public routes
	router.Post("/register", h.Register)
	router.Post("/login", h.Login)

	// Protected routes
	protected := router.Group("/", middleware.Protect())
	protected.Post("/logout", h.Logout)
	protected.Get("/me", h.CurrentUser)
	protected.Get("/verify", h.CurrentUser)
	protected.Post("/change-password", h.ChangePassword)
}

type loginBody struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *AuthHTTPHandler) Register(c *fiber.Ctx) error {
	var req usecase.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	req.ClientIP = ClientIP(c)

	user, token, err := h.usecase.Register(c.Context(), req)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles user login. The identifier may arrive in either the email
// or the username field.
func (h *AuthHTTPHandler) Login(c *fiber.Ctx) error {
	var body loginBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	identifier := body.Email
	if identifier == "" {
		identifier = body.Username
	}

	user, token, err := h.usecase.Login(c.Context(), usecase.LoginRequest{
		Identifier: identifier,
		Password:   body.Password,
		ClientIP:   ClientIP(c),
	})
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the presented token
func (h *AuthHTTPHandler) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals("token").(string)

	if err := h.usecase.Logout(c.Context(), token, ClientIP(c)); err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// CurrentUser returns the authenticated user's public fields. Serves both
// /me and /verify.
func (h *AuthHTTPHandler) CurrentUser(c *fiber.Ctx) error {
	user := c.Locals("user")
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	return c.JSON(fiber.Map{"user": user})
}

// ChangePassword replaces the caller's password hash
func (h *AuthHTTPHandler) ChangePassword(c *fiber.Ctx) error {
	var req usecase.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	req.TokenValue, _ = c.Locals("token").(string)
	req.ClientIP = ClientIP(c)

	if err := h.usecase.ChangePassword(c.Context(), req); err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// renderError maps usecase errors to HTTP responses with generic client
// messages. Store failures are logged with detail server-side and surfaced
// as a bare internal error.
func (h *AuthHTTPHandler) renderError(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)

	var message string
	switch status {
	case fiber.StatusBadRequest:
		message = err.Error()
	case fiber.StatusUnauthorized:
		message = "Invalid credentials"
	case fiber.StatusConflict:
		message = "Email or username already taken"
	default:
		h.log.Errorf("auth request failed: %v", err)
		status = fiber.StatusInternalServerError
		message = "Internal server error"
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}
