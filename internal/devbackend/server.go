package devbackend

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/revdup-client/internal/config"
	"github.com/spec-kit/revdup-client/internal/domain"
)

// Handler serves the authentication contract the client SDK consumes. It is a
// development stand-in for the production backend: logical failures (bad
// credentials, duplicate signup) are reported in-body with success=false, the
// way the production service does; transport-level failures are whatever the
// network makes of them.
type Handler struct {
	repo       AccountRepository
	tokens     *TokenManager
	bcryptCost int
	// omitFederatedRole drops user.role from federated responses so the
	// client's role defaulting can be exercised end to end.
	omitFederatedRole bool
	logger            *zap.Logger
}

// NewHandler constructs the handler.
func NewHandler(cfg config.DevBackendConfig, repo AccountRepository, logger *zap.Logger) *Handler {
	return &Handler{
		repo:              repo,
		tokens:            NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost:        cfg.BcryptCost,
		omitFederatedRole: cfg.OmitFederatedRole,
		logger:            logger,
	}
}

// NewApp wires the fiber application with the contract routes. The paths come
// from backend configuration so the dev server always matches what the client
// is configured to call.
func NewApp(backend config.BackendConfig, handler *Handler, logger *zap.Logger) *fiber.App {
	app := fiber.New()

	app.Use(requestLogger(logger))

	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Post(backend.LoginPath, handler.Login)
	app.Post(backend.SignupPath, handler.SignUp)
	app.Post(backend.FederatedVerifyPath, handler.FederatedVerify)

	return app
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()))
		return err
	}
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type federatedVerifyRequest struct {
	IDToken string `json:"idToken"`
}

type userBody struct {
	ID   string `json:"id"`
	Role string `json:"role,omitempty"`
}

type authResponse struct {
	Success bool      `json:"success"`
	Token   string    `json:"token,omitempty"`
	Message string    `json:"message,omitempty"`
	User    *userBody `json:"user,omitempty"`
}

// Login handles the password login route.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req authRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(authResponse{Success: false, Message: "username and password required"})
	}

	account, err := h.repo.GetByIdentifier(c.Context(), req.Username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(authResponse{Success: false, Message: "bad credentials"})
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if err := ComparePassword(account.PasswordHash, req.Password); err != nil {
		return c.JSON(authResponse{Success: false, Message: "bad credentials"})
	}

	token, _, err := h.tokens.GenerateToken(account.ID, account.Role)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(authResponse{
		Success: true,
		Token:   token,
		User:    &userBody{ID: account.ID, Role: string(account.Role)},
	})
}

// SignUp handles the registration route. Success does not authenticate.
func (h *Handler) SignUp(c *fiber.Ctx) error {
	var req authRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(authResponse{Success: false, Message: "username and password required"})
	}

	hash, err := HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	account := &Account{
		Identifier:   req.Username,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	}
	if err := h.repo.Create(c.Context(), account); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return c.JSON(authResponse{Success: false, Message: "identifier already registered"})
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	h.logger.Info("account registered", zap.String("identifier", account.Identifier))
	return c.JSON(authResponse{Success: true})
}

// FederatedVerify accepts an identity assertion, provisioning the account on
// first sight. The assertion is not verified against a real provider here.
func (h *Handler) FederatedVerify(c *fiber.Ctx) error {
	var req federatedVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.IDToken) == "" {
		return c.JSON(authResponse{Success: false, Message: "assertion required"})
	}

	identifier := federatedIdentifier(req.IDToken)
	account, err := h.repo.GetByIdentifier(c.Context(), identifier)
	if errors.Is(err, ErrNotFound) {
		account = &Account{
			Identifier: identifier,
			// Federated accounts have no local password.
			PasswordHash: "-",
			Role:         domain.RoleCustomer,
			Federated:    true,
		}
		if createErr := h.repo.Create(c.Context(), account); createErr != nil {
			return fiber.NewError(http.StatusInternalServerError, createErr.Error())
		}
	} else if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	token, _, err := h.tokens.GenerateToken(account.ID, account.Role)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	user := &userBody{ID: account.ID, Role: string(account.Role)}
	if h.omitFederatedRole {
		user.Role = ""
	}
	return c.JSON(authResponse{Success: true, Token: token, User: user})
}

// federatedIdentifier derives a stable account identifier from the assertion.
func federatedIdentifier(assertion string) string {
	sum := sha256.Sum256([]byte(assertion))
	return "federated:" + hex.EncodeToString(sum[:8])
}
