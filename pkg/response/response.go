// Package response defines the JSON bodies returned on request failures.
package response

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the flat error body every non-2xx JSON response carries.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details []ValidationError `json:"details,omitempty"`
}

var (
	EmptyRequestBodyResponse = ErrorResponse{Error: "Request body is empty"}
	BadRequestResponse       = ErrorResponse{Error: "Invalid request body"}
	EmptyUpdateResponse      = ErrorResponse{Error: "No valid fields to update"}
	ShortCodeExistsResponse  = ErrorResponse{Error: "Short code already exists"}
	LinkNotFoundResponse     = ErrorResponse{Error: "URL not found"}
	ServerErrorResponse      = ErrorResponse{Error: "Internal server error"}
)

// ValidationError describes one failed field check.
type ValidationError struct {
	Field string `json:"field"`
	Value any    `json:"value"`
	Issue string `json:"issue"`
}

// ValidationErrorResponse turns validator errors into a 400 body with
// per-field details. Non-validator errors produce a generic bad request body.
func ValidationErrorResponse(err error) ErrorResponse {
	errs := getValidationErrors(err)
	if len(errs) == 0 {
		return BadRequestResponse
	}

	return ErrorResponse{
		Error:   "Validation failed",
		Details: errs,
	}
}

func getValidationErrors(err error) []ValidationError {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	errs := make([]ValidationError, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		issue := fmt.Sprintf("Invalid %s.", fieldErr.Field())
		if fieldErr.Tag() == "required" {
			issue = "This field is required."
		}

		errs = append(errs, ValidationError{
			Field: fieldErr.Field(),
			Value: fieldErr.Value(),
			Issue: issue,
		})
	}

	return errs
}
