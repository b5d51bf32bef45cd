package models

// HealthResponse is returned by the root health check.
type HealthResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}
