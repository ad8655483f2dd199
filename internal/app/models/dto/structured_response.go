package dto

import "time"

// StructuredResponse is the envelope every successful endpoint answers with.
type StructuredResponse struct {
	Success   bool         `json:"success" example:"true"`
	Message   string       `json:"message" example:"Operation completed successfully"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewPartialResponse reports an operation that stopped early together with
// the part of its result that was produced.
func NewPartialResponse(data interface{}, detail *ErrorDetail) StructuredResponse {
	return StructuredResponse{
		Success:   false,
		Message:   detail.Message,
		Data:      data,
		Error:     detail,
		Timestamp: time.Now(),
	}
}

// NewStructuredResponse creates a standard structured API response
func NewStructuredResponse(data interface{}, message string) StructuredResponse {
	return StructuredResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}
