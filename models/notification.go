package models

// Notification is the payload handed to the dispatch worker after a
// successful lifecycle event. Delivery is fire-and-forget.
type Notification struct {
	AccountID string            `json:"accountId"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
}
