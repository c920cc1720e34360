package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// AppValidator adapts go-playground/validator to echo's Validator interface.
type AppValidator struct {
	validate *validator.Validate
}

func NewAppValidator() *AppValidator {
	return &AppValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *AppValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			fe := errs[0]
			return echo.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("field %q failed validation rule %q", fe.Field(), fe.Tag()))
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
