package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"audioscribe/internal/api/errors"
)

// Validator lets request DTOs add domain rules on top of binding tags.
type Validator interface {
	Validate() error
}

// ValidateRequest binds the request body (JSON or multipart form, chosen by
// content type) into req and runs both tag and domain validation.
func ValidateRequest(c *gin.Context, req interface{}) error {
	if err := c.ShouldBind(req); err != nil {
		return errors.NewValidationError("Validation failed", fieldMessages(err))
	}

	if v, ok := req.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ValidateQuery binds query parameters into req and validates them.
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		apiErr := errors.NewBadRequestError("Invalid query parameters")
		apiErr.Details = fieldMessages(err)
		return apiErr
	}

	if v, ok := req.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func fieldMessages(err error) map[string]string {
	messages := make(map[string]string)

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		messages["request"] = "malformed request"
		return messages
	}

	for _, fieldError := range validationErrs {
		field := strings.ToLower(fieldError.Field())

		switch fieldError.Tag() {
		case "required":
			messages[field] = "is required"
		case "min":
			messages[field] = "is too small"
		case "max":
			messages[field] = "is too large"
		case "oneof":
			messages[field] = "must be one of the allowed values"
		default:
			messages[field] = "is invalid"
		}
	}

	return messages
}
