package http

import (
	"errors"
	"net/http"
	"time"

	"hr-admin-backend/internal/auth"
	"hr-admin-backend/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

var errUnauthenticated = errors.New("authentication required")

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func principal(c echo.Context) (auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return auth.Principal{}, errUnauthenticated
	}
	return p, nil
}

func actorFrom(c echo.Context) (approval.Actor, error) {
	p, err := principal(c)
	if err != nil {
		return approval.Actor{}, err
	}
	return approval.Actor{ID: p.ID, UserID: p.UserID, Name: p.Name, Role: p.Role}, nil
}
