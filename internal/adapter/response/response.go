// Package response writes the JSON envelope every endpoint answers with.
package response

import (
	"github.com/labstack/echo/v4"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type Envelope struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Meta    *Meta        `json:"meta,omitempty"`
	Error   string       `json:"error,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

func OK(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

func Paged(c echo.Context, status int, data any, meta Meta) error {
	return c.JSON(status, Envelope{Success: true, Data: data, Meta: &meta})
}

func Fail(c echo.Context, status int, msg string, details ...FieldError) error {
	return c.JSON(status, Envelope{Success: false, Error: msg, Details: details})
}
