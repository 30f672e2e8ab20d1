package models

import "time"

// UserSettings holds per-user preferences shown in the account area.
type UserSettings struct {
	Notifications bool   `json:"notifications"`
	Newsletter    bool   `json:"newsletter"`
	Language      string `json:"language,omitempty"`
}

// User represents an application-level user profile, keyed by the Firebase
// Auth UID. A profile must exist for every valid session.
type User struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	Phone        string        `json:"phone,omitempty"`
	Company      string        `json:"company,omitempty"`
	Position     string        `json:"position,omitempty"`
	ProfileImage string        `json:"profileImage,omitempty"`
	Settings     *UserSettings `json:"settings,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
