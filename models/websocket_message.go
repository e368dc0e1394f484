package models

// StatusMessage answers a client's keepalive text on a websocket feed.
type StatusMessage struct {
	Status string `json:"status"`
}

var HealthyMessage = StatusMessage{Status: "healthy"}
