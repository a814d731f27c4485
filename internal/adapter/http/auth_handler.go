package http

import (
	"net/http"

	"hr-admin-backend/internal/adapter/response"
	"hr-admin-backend/internal/usecase/user"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct{ uc *user.Usecase }

func NewAuthHandler(uc *user.Usecase) *AuthHandler { return &AuthHandler{uc: uc} }

type loginReq struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	res, err := h.uc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, http.StatusOK, res)
}

func (h *AuthHandler) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return fail(c, err)
	}
	dto, err := h.uc.Get(c.Request().Context(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, http.StatusOK, dto)
}

type createUserReq struct {
	Name     string `json:"name"     validate:"required,max=120"`
	Email    string `json:"email"    validate:"required,email,max=190"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"required,role"`
}

func (h *AuthHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	dto, err := h.uc.Create(c.Request().Context(), user.CreateInput(req))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, http.StatusCreated, dto)
}

func (h *AuthHandler) ListUsers(c echo.Context) error {
	users, err := h.uc.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, http.StatusOK, users)
}
