package api

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// SignUpRequest is the payload for POST /auth/signup.
type SignUpRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// SignInRequest is the payload for POST /auth/signin.
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PasswordResetRequest is the payload for POST /auth/password-reset.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// AuthResponse is returned from sign-up and sign-in.
type AuthResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// CreateSubscriptionRequest is the payload for POST /subscriptions.
type CreateSubscriptionRequest struct {
	PlanID   string `json:"planId" binding:"required"`
	IsYearly bool   `json:"isYearly"`
}

// CreateChatbotRequest is the payload for POST /chatbots. Optional fields
// fall back to the service defaults.
type CreateChatbotRequest struct {
	Name              string   `json:"name" binding:"required"`
	Description       string   `json:"description"`
	Model             string   `json:"model"`
	Language          string   `json:"language"`
	Tone              string   `json:"tone"`
	Personality       string   `json:"personality"`
	MaxResponseLength int      `json:"maxResponseLength"`
	Temperature       *float64 `json:"temperature"`
}

// FirebaseConfigResponse exposes the web client's Firebase project
// identifiers.
type FirebaseConfigResponse struct {
	APIKey            string `json:"apiKey"`
	AuthDomain        string `json:"authDomain"`
	ProjectID         string `json:"projectId"`
	StorageBucket     string `json:"storageBucket"`
	MessagingSenderID string `json:"messagingSenderId"`
	AppID             string `json:"appId"`
}
