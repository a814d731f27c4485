package http

import (
	"errors"
	"net/http"

	"hr-admin-backend/internal/adapter/response"
	"hr-admin-backend/internal/domain/approval"
	"hr-admin-backend/internal/domain/user"
	"hr-admin-backend/internal/domain/validation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const msgInternal = "internal error"

var statusByErr = []struct {
	err    error
	status int
}{
	{approval.ErrInvalidDecision, http.StatusBadRequest},
	{errUnauthenticated, http.StatusUnauthorized},
	{user.ErrInvalidCredentials, http.StatusUnauthorized},
	{user.ErrInactive, http.StatusUnauthorized},
	{approval.ErrForbidden, http.StatusForbidden},
	{approval.ErrNotFound, http.StatusNotFound},
	{user.ErrNotFound, http.StatusNotFound},
	{approval.ErrAlreadyDecided, http.StatusConflict},
	{approval.ErrInvalidTransition, http.StatusConflict},
	{approval.ErrVersionConflict, http.StatusConflict},
	{user.ErrEmailTaken, http.StatusConflict},
}

// fail writes the envelope for a use case error. Unknown errors become a
// generic 500 and are logged with the request id.
func fail(c echo.Context, err error) error {
	if errors.Is(err, errInvalidBody) || errors.Is(err, errInvalidQuery) {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	var fe validator.ValidationErrors
	if errors.As(err, &fe) {
		return response.Fail(c, http.StatusBadRequest, validation.ErrInvalid.Error(), ToFieldErrors(fe)...)
	}
	var ve *validation.Error
	if errors.As(err, &ve) {
		details := make([]response.FieldError, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			details = append(details, response.FieldError{Field: f.Field, Message: f.Message})
		}
		return response.Fail(c, http.StatusBadRequest, validation.ErrInvalid.Error(), details...)
	}
	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			return response.Fail(c, m.status, m.err.Error())
		}
	}
	log.WithError(err).
		WithField("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		WithField("uri", c.Request().RequestURI).
		Error("unhandled error")
	return response.Fail(c, http.StatusInternalServerError, msgInternal)
}

var errInvalidBody = errors.New("invalid body")

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errInvalidBody
	}
	return c.Validate(req)
}

// HTTPErrorHandler renders errors that escape handlers (unknown routes,
// wrong methods, panics caught by Recover) in the JSON envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		if he.Code >= http.StatusInternalServerError {
			log.WithError(err).Error("http error")
			msg = msgInternal
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = response.Fail(c, he.Code, msg)
		}
	} else {
		err = fail(c, err)
	}
	if err != nil {
		log.WithError(err).Error("write error response")
	}
}
