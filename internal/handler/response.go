package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"transfer/internal/repository"
	"transfer/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Server errors are attached to the context so the error middleware can report them.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(code, ErrorResponse{Error: http.StatusText(code)})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondBadRequest sends a 400 for malformed input.
func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidDropoffLocation),
		errors.Is(err, service.ErrMissingDistance),
		errors.Is(err, service.ErrInvalidPassengers),
		errors.Is(err, service.ErrInvalidExtras),
		errors.Is(err, service.ErrInvalidChildSeat),
		errors.Is(err, service.ErrInvalidHours),
		errors.Is(err, service.ErrInvalidVehicleCategory),
		errors.Is(err, service.ErrInvalidPricingScheme),
		errors.Is(err, service.ErrInvalidFixedRoute),
		errors.Is(err, service.ErrInvalidCurrency),
		errors.Is(err, service.ErrInvalidChildSeatConfig),
		errors.Is(err, service.ErrInvalidPlaceQuery):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, service.ErrBaseCurrencyImmutable):
		return http.StatusConflict

	// Service unavailable
	case errors.Is(err, service.ErrPlacesUnavailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
