package auth

import (
	"dm-lab/errors"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type RegisterRequest struct {
	Username string `validate:"required,min=3"`
	Password string `validate:"required,min=6,max=72"`
	FullName string `validate:"max=100"`
}

type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// SendMessageRequest expects Content to be trimmed already.
type SendMessageRequest struct {
	ReceiverID string `validate:"required"`
	Content    string `validate:"required"`
}

func ValidateRegister(req RegisterRequest) error {
	return check(req)
}

func ValidateLogin(req LoginRequest) error {
	return check(req)
}

func ValidateSendMessage(req SendMessageRequest) error {
	return check(req)
}

func check(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !stderrors.As(err, &fieldErrors) {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, describe(fe))
	}
	return fmt.Errorf("%w: %s", errors.ErrValidation, strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
