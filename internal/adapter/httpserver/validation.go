package httpserver

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "github.com/bruhmagedon/advanced-jwt-server/internal/platform/errors"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// requestValidator plugs go-playground/validator into echo's Validator hook.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	// Report fields under the name the client sent them with.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "query", "param", "form", "header"} {
			name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})
	return &requestValidator{validate: v}
}

func (rv *requestValidator) Validate(i any) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.InternalError("request validation misconfigured", err)
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, describeFieldError(fe))
	}
	return apperrors.ValidationError("request validation failed").WithContext(apperrors.ContextFields, fields)
}

func describeFieldError(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s: %s", fe.Field(), fe.Tag())
}

// Bind coerces the request (path, query, headers and body) into T and
// validates it. On failure the handler should return the error unchanged; the
// error middleware renders it as a 400 before any application logic runs.
func Bind[T any](c echo.Context) (*T, error) {
	var req T
	if err := c.Bind(&req); err != nil {
		return nil, bindError(err)
	}
	if err := (&echo.DefaultBinder{}).BindHeaders(c, &req); err != nil {
		return nil, bindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func bindError(err error) error {
	structuredErr := apperrors.ValidationError("malformed request payload")
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		structuredErr.WithContext("cause", fmt.Sprint(httpErr.Message))
		return structuredErr
	}
	structuredErr.Cause = err
	return structuredErr
}
