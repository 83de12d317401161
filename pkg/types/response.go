package types

// ErrorResponse is the body the backend answers with on any failure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
