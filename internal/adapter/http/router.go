package http

import (
	"time"

	"hr-admin-backend/internal/adapter/middleware"
	"hr-admin-backend/internal/domain/user"
	ucApproval "hr-admin-backend/internal/usecase/approval"
	ucUser "hr-admin-backend/internal/usecase/user"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
)

type Deps struct {
	Users     *ucUser.Usecase
	Approvals *ucApproval.Usecase
	Tokens    middleware.TokenParser

	// Redis enables Idempotency-Key handling on mutating routes. Nil disables it.
	Redis          *redis.Client
	IdempotencyTTL time.Duration
}

// NewServer builds the echo instance with the shared middleware stack and
// every route registered.
func NewServer(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Use(echomw.RequestID(), echomw.Recover(), middleware.RequestLogger())
	Register(e, d)
	return e
}

func Register(e *echo.Echo, d Deps) {
	h := NewHandler()
	authH := NewAuthHandler(d.Users)
	apprH := NewApprovalHandler(d.Approvals)

	var idem []echo.MiddlewareFunc
	if d.Redis != nil {
		idem = append(idem, middleware.Idempotency(d.Redis, d.IdempotencyTTL))
	}
	with := func(mw ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		return append(append([]echo.MiddlewareFunc{}, mw...), idem...)
	}

	approvers := middleware.Authorize(user.RoleSuperAdmin, user.RoleAdmin)
	anyone := middleware.Authorize()

	e.GET("/health", h.Health)

	api := e.Group("/api", middleware.Authenticate(d.Tokens))

	api.POST("/auth/login", authH.Login)
	api.GET("/auth/me", authH.Me, anyone)

	api.POST("/users", authH.CreateUser, with(middleware.Authorize(user.RoleSuperAdmin))...)
	api.GET("/users", authH.ListUsers, approvers)

	api.GET("/approvals", apprH.List, anyone)
	api.GET("/approvals/stats", apprH.Stats, approvers)
	api.GET("/approvals/export", apprH.Export, approvers)
	api.POST("/approvals", apprH.Create, with(anyone)...)
	api.POST("/approvals/bulk-decision", apprH.BulkDecision, with(approvers)...)
	api.GET("/approvals/:id", apprH.Get, anyone)
	api.PATCH("/approvals/:id/decision", apprH.Decide, with(approvers)...)
	api.POST("/approvals/:id/cancel", apprH.Cancel, with(anyone)...)
	api.GET("/approvals/:id/history", apprH.History, anyone)
	api.GET("/approvals/:id/comments", apprH.Comments, anyone)
	api.POST("/approvals/:id/comments", apprH.AddComment, with(anyone)...)
}
