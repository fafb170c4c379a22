package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/straye-as/erp-gateway/internal/domain"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondWithError sends a standardized JSON error response
func respondWithError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   getErrorType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: message,
	})
}

// respondValidationError sends a standardized validation error response with specific field messages
func respondValidationError(w http.ResponseWriter, err error) {
	errs := make(map[string]string)
	if ve, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range ve {
			errs[toJSONFieldName(fe.Field())] = formatValidationError(fe)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   domain.ErrorTypeValidation,
		Title:  "Validation Error",
		Status: http.StatusUnprocessableEntity,
		Detail: "One or more fields failed validation",
		Errors: errs,
	})
}

// respondDomainError maps the typed gateway errors onto HTTP statuses. The
// response carries the error message but never backend payloads or causes.
func respondDomainError(w http.ResponseWriter, err error) {
	var (
		notFound   *domain.EntityNotFoundError
		authErr    *domain.AuthenticationError
		rateErr    *domain.RateLimitError
		configErr  *domain.ConfigurationError
		convErr    *domain.ConversionError
		validErr   *domain.ValidationError
		adapterErr *domain.AdapterError
	)

	switch {
	case errors.As(err, &notFound):
		respondWithError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &authErr):
		respondWithError(w, http.StatusUnauthorized, authErr.Error())
	case errors.As(err, &rateErr):
		w.Header().Set("Retry-After", strconv.Itoa(rateErr.RetryAfter))
		respondWithError(w, http.StatusTooManyRequests, rateErr.Error())
	case errors.As(err, &configErr):
		respondWithError(w, http.StatusBadRequest, configErr.Error())
	case errors.As(err, &convErr):
		respondWithError(w, http.StatusUnprocessableEntity, convErr.Error())
	case errors.As(err, &validErr):
		respondWithError(w, http.StatusUnprocessableEntity, validErr.Error())
	case errors.As(err, &adapterErr):
		respondWithError(w, http.StatusBadGateway, adapterErr.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", toJSONFieldName(fe.Field()))
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

// toJSONFieldName converts a Go struct field name to its JSON equivalent (snake_case)
func toJSONFieldName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// getErrorType returns the appropriate error type for an HTTP status code
func getErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrorTypeBadRequest
	case http.StatusUnauthorized:
		return domain.ErrorTypeUnauthorized
	case http.StatusNotFound:
		return domain.ErrorTypeNotFound
	case http.StatusUnprocessableEntity:
		return domain.ErrorTypeValidation
	case http.StatusTooManyRequests:
		return domain.ErrorTypeRateLimited
	case http.StatusBadGateway:
		return domain.ErrorTypeBackendFailed
	default:
		return domain.ErrorTypeInternal
	}
}
