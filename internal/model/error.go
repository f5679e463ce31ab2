package model

// ErrorResponse is the consistent JSON structure for all API error responses.
// Code is the machine-readable failure kind, Error the text to show a user.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
}
