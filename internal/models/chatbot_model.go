package models

import "time"

// Chatbot status values.
const (
	ChatbotStatusOnline   = "online"
	ChatbotStatusTraining = "training"
	ChatbotStatusOffline  = "offline"
)

// ChatbotSettings configures how a chatbot responds. Each field is validated
// at creation time.
type ChatbotSettings struct {
	Language          string  `json:"language"`
	Tone              string  `json:"tone"`
	Personality       string  `json:"personality"`
	MaxResponseLength int     `json:"maxResponseLength"`
	Temperature       float64 `json:"temperature"`
}

// Chatbot is a per-user configurable assistant.
type Chatbot struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	Model       string          `json:"model"`
	Settings    ChatbotSettings `json:"settings"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
