// Package validator plugs go-playground/validator into Echo's binding pipeline.
package validator

import (
	playground "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	domainerrors "gatekeeper/internal/domain/errors"
)

// echoValidator adapts go-playground/validator to echo.Validator.
type echoValidator struct {
	validate *playground.Validate
}

// New creates the validator used by the Echo server.
func New() echo.Validator {
	return &echoValidator{
		validate: playground.New(playground.WithRequiredStructEnabled()),
	}
}

// Validate checks struct tags and maps failures to the validation error kind
// so the error middleware renders a 400 envelope.
func (v *echoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		var invalid *playground.InvalidValidationError
		if errors.As(err, &invalid) {
			return errors.Wrap(err, "value is not validatable")
		}

		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
