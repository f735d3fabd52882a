package types

// Error codes returned in the API error envelope.
const (
	CodeBadRequest     = "REQUEST_400"
	CodeForbidden      = "REQUEST_403"
	CodeSiteNotFound   = "SITE_404"
	CodeDeviceNotFound = "DEVICE_404"
	CodeInvalidLayout  = "LAYOUT_422"
	CodeInternal       = "SERVER_500"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds a consistent API error payload.
// details can be string, map, struct, etc.
func NewErrorResponse(code, message string, details any) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
