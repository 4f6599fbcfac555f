package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors converts binding errors into a form field -> message map.
// Errors that are not validation errors are reported under the "form" key.
func FieldErrors(err error) map[string]string {
	fields := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			key := formKey(fieldError.Field())
			if _, seen := fields[key]; seen {
				continue
			}
			fields[key] = getFieldErrorMessage(fieldError)
		}
		return fields
	}

	fields["form"] = err.Error()
	return fields
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Name":     "Name",
		"Email":    "Email",
		"Password": "Password",
		"Title":    "Blog post title",
		"Subtitle": "Subtitle",
		"ImgURL":   "Blog image URL",
		"Body":     "Blog content",
		"Text":     "Comment",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}

// formKey maps a struct field name to the name of its HTML form input.
func formKey(field string) string {
	keys := map[string]string{
		"ImgURL": "img_url",
		"Text":   "comment_text",
	}
	if key, ok := keys[field]; ok {
		return key
	}
	return strings.ToLower(field)
}
