package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldError ties a validation message to the input field it concerns.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// fieldErrors flattens validator output into the API's error shape, or nil
// when err is not a validation error.
func fieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		var message string
		switch fe.Tag() {
		case "required":
			message = "is required"
		case "email":
			message = "wrong email format"
		case "gt":
			message = "length less than 4"
		case "excludes":
			message = "cannot include an @"
		default:
			message = "is invalid"
		}
		out = append(out, FieldError{Field: strings.ToLower(fe.Field()), Message: message})
	}
	return out
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
