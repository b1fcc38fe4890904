// Package validator builds the request validator shared by the API handlers
// and the member CLI.
package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/tour-member/internal/model"
)

// New creates a validator with the custom tags registered:
//
//	notblank          rejects whitespace-only strings
//	notificationtype  accepts the known promotion notice types
func New() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true
		}
		return strings.TrimSpace(str) != ""
	})

	_ = v.RegisterValidation("notificationtype", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return model.NotificationType(str).Valid()
	})

	return v
}
