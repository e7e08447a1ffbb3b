package model

// OrderNotificationPayload is the body of the order notification task.
type OrderNotificationPayload struct {
	Summary OrderSummary `json:"summary"`
	Message string       `json:"message"`
}
