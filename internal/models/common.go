package models

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	// Detail is a human-readable error message.
	Detail string `json:"detail"`
}
