package dto

// StatusRequest asks to move an order to BuildStatus.
type StatusRequest struct {
	BuildStatus string `json:"buildStatus"`
}
