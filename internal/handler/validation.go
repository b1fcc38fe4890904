package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// formatValidationError turns the first validator failure into a client
// facing message keyed by the JSON field name.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]
	field := jsonName(fe.Field())
	switch fe.Tag() {
	case "required":
		return "invalid request: " + field + " is required"
	case "gte":
		return "invalid request: " + field + " must be at least " + fe.Param()
	case "notificationtype":
		return "invalid request: unknown notification type"
	default:
		return "invalid request: " + field + " is invalid"
	}
}

var jsonNames = map[string]string{
	"TourID": "tour_id",
	"ID":     "id",
	"Type":   "type",
}

func jsonName(field string) string {
	if name, ok := jsonNames[field]; ok {
		return name
	}
	return strings.ToLower(field)
}
