package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/quicknotes/notes-api/internal/core/domain"
)

// invalidMessenger is implemented by requests that report a single
// client-facing message whatever field failed.
type invalidMessenger interface {
	invalidMessage() string
}

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: validator.New()}
}

// Validate satisfies the echo.Validator interface. Failures are returned as
// *domain.ValidationError.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	m, ok := i.(invalidMessenger)
	if !ok {
		return fmt.Errorf("validate %T: %w", i, err)
	}
	return domain.NewValidationError(m.invalidMessage())
}
