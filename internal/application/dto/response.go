package dto

import (
	"time"

	"crypto-watcher/internal/domain/entities"
)

// GenericErrorMessage is the only error text clients ever see for a 500
const GenericErrorMessage = "An internal server error occurred."

// ErrorResponse represents the error body returned by the API
// @Description Error response. Internal details are never included.
type ErrorResponse struct {
	Message string `json:"message" example:"An internal server error occurred."`
}

// HealthResponse represents the health check response with service status
// @Description Health check response with service status
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy" enums:"healthy,ready,unhealthy"` // Overall service status
	Timestamp time.Time         `json:"timestamp" example:"2024-05-01T10:30:00Z"`                 // When the check was performed
	Services  map[string]string `json:"services,omitempty" example:"upstream:ready"`              // Individual component statuses
}

// MarketsResponse is the latest market snapshot
// @Description Latest market snapshot produced by the background refresh
type MarketsResponse struct {
	VsCurrency string            `json:"vs_currency" example:"usd"`
	FetchedAt  time.Time         `json:"fetched_at" example:"2024-05-01T10:30:00Z"`
	AgeSeconds float64           `json:"age_seconds" example:"12.5"`
	Count      int               `json:"count" example:"100"`
	Markets    []entities.Market `json:"markets" swaggertype:"array,object"`
}

// NewErrorResponse creates an error body with the given message
func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Message: message}
}

// NewHealthResponse creates a health response
func NewHealthResponse(status string, services map[string]string) *HealthResponse {
	return &HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
	}
}
