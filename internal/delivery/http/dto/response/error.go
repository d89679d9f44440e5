package response

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	OrderID string `json:"orderId,omitempty"`
}

type AckResponse struct {
	Success bool `json:"success"`
}
