package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sumire/tracker/internal/service"
)

// Services bundles the application services the router exposes.
type Services struct {
	Auth     *service.AuthService
	Projects *service.ProjectService
	Members  *service.MemberService
	Issues   *service.IssueService
}

// RouterConfig configures cross-cutting HTTP behavior.
type RouterConfig struct {
	FrontendURL string
	Logger      *slog.Logger
	Validator   echo.Validator
}

// NewRouter builds the echo instance with middleware and all API routes.
func NewRouter(cfg RouterConfig, s Services) *echo.Echo {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = cfg.Validator

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/health", func(c echo.Context) error {
		return JSON(c, http.StatusOK, map[string]string{"status": "ok"})
	})

	authHandler := NewAuthHandler(s.Auth)
	projectHandler := NewProjectHandler(s.Projects)
	memberHandler := NewMemberHandler(s.Members)
	issueHandler := NewIssueHandler(s.Issues)

	api := e.Group("/api/v1")

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/google", authHandler.GoogleRedirect)
	auth.GET("/google/callback", authHandler.GoogleCallback)
	auth.GET("/github", authHandler.GitHubRedirect)
	auth.GET("/github/callback", authHandler.GitHubCallback)

	// Protected routes
	requireAuth := JWTAuth(s.Auth)
	auth.GET("/me", authHandler.Me, requireAuth)

	projects := api.Group("/projects", requireAuth)
	projects.GET("", projectHandler.List)
	projects.POST("", projectHandler.Create)
	projects.GET("/:key", projectHandler.Get)
	projects.GET("/:key/stats", projectHandler.Stats)

	projects.GET("/:key/members", memberHandler.List)
	projects.POST("/:key/members", memberHandler.Add)
	projects.PATCH("/:key/members/:userID", memberHandler.UpdateRole)
	projects.DELETE("/:key/members/:userID", memberHandler.Remove)

	projects.GET("/:key/issues", issueHandler.List)
	projects.POST("/:key/issues", issueHandler.Create)
	projects.GET("/:key/issues/:issueKey", issueHandler.Get)
	projects.PATCH("/:key/issues/:issueKey", issueHandler.Update)
	projects.PATCH("/:key/issues/:issueKey/status", issueHandler.Move)
	projects.GET("/:key/board", issueHandler.Board)

	return e
}
