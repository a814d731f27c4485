package http

import (
	"reflect"
	"strings"

	"hr-admin-backend/internal/adapter/response"
	"hr-admin-backend/internal/domain/approval"
	"hr-admin-backend/internal/domain/user"
	"hr-admin-backend/pkg/id"
	"hr-admin-backend/pkg/money"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct{ v *validator.Validate }

func upper(fl validator.FieldLevel) string {
	return strings.ToUpper(strings.TrimSpace(fl.Field().String()))
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// report fields by their JSON name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// public user id = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return id.Valid(fl.Field().String())
	})
	_ = v.RegisterValidation("iso_currency", func(fl validator.FieldLevel) bool {
		return money.ValidCurrency(upper(fl))
	})
	_ = v.RegisterValidation("approval_type", func(fl validator.FieldLevel) bool {
		return approval.Type(upper(fl)).Valid()
	})
	_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return approval.Priority(upper(fl)).Valid()
	})
	_ = v.RegisterValidation("decision", func(fl validator.FieldLevel) bool {
		return approval.Status(upper(fl)).IsDecision()
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return user.Role(upper(fl)).Valid()
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

func typeNames() string {
	names := make([]string, 0, len(approval.Types))
	for _, t := range approval.Types {
		names = append(names, string(t))
	}
	return strings.Join(names, " ")
}

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []response.FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []response.FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]response.FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		var msg string
		switch e.Tag() {
		case "required":
			msg = "is required"
		case "email":
			msg = "must be a valid email address"
		case "hex32":
			msg = "must be 32-char lowercase hex"
		case "iso_currency":
			msg = "must be a 3-letter ISO currency code"
		case "approval_type":
			msg = "must be one of " + typeNames()
		case "priority":
			msg = "must be one of LOW MEDIUM HIGH URGENT"
		case "decision":
			msg = "must be APPROVED or REJECTED"
		case "role":
			msg = "must be one of SUPERADMIN ADMIN EMPLOYEE"
		case "min":
			if e.Kind() == reflect.Slice {
				msg = "must contain at least " + e.Param() + " items"
			} else {
				msg = "must be at least " + e.Param() + " characters"
			}
		case "max":
			if e.Kind() == reflect.Slice {
				msg = "must contain at most " + e.Param() + " items"
			} else {
				msg = "must be at most " + e.Param() + " characters"
			}
		case "gte":
			msg = "must be greater than or equal to " + e.Param()
		case "lte":
			msg = "must be less than or equal to " + e.Param()
		default:
			msg = e.Tag() + " validation failed"
		}
		out = append(out, response.FieldError{Field: field, Message: msg})
	}
	return out
}
