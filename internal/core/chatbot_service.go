package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shoply-backend-go/internal/db"
	"shoply-backend-go/internal/models"
	"shoply-backend-go/internal/persistence"
	"shoply-backend-go/internal/validation"
)

// Chatbot configuration defaults applied when the creation input leaves a
// field empty.
const (
	DefaultChatbotModel       = "gpt-3.5-turbo"
	DefaultChatbotLanguage    = "en"
	DefaultChatbotTone        = "professional"
	DefaultChatbotPersonality = "helpful"
	DefaultMaxResponseLength  = 150
	DefaultTemperature        = 0.7
)

var chatbotSettingsRules = validation.Rules{
	"name":              {Required: true, MinLength: 2, MaxLength: 50, Message: "Please enter a chatbot name between 2 and 50 characters"},
	"model":             {Required: true},
	"language":          {Required: true},
	"tone":              {Required: true},
	"personality":       {Required: true},
	"maxResponseLength": {Min: validation.Float(50), Max: validation.Float(500), Message: "Response length must be between 50 and 500"},
	"temperature":       {Min: validation.Float(0), Max: validation.Float(1), Message: "Temperature must be between 0 and 1"},
}

type chatbotService struct {
	store  *persistence.Manager
	logger *zap.Logger
}

// NewChatbotService creates the chatbot service over the persistence
// manager.
func NewChatbotService(store *persistence.Manager, logger *zap.Logger) ChatbotService {
	return &chatbotService{store: store, logger: logger}
}

// Create validates the configuration, fills defaults and writes the chatbot.
// New chatbots start offline until training completes.
func (s *chatbotService) Create(ctx context.Context, userID string, input CreateChatbotInput) (*models.Chatbot, error) {
	if input.Model == "" {
		input.Model = DefaultChatbotModel
	}
	if input.Language == "" {
		input.Language = DefaultChatbotLanguage
	}
	if input.Tone == "" {
		input.Tone = DefaultChatbotTone
	}
	if input.Personality == "" {
		input.Personality = DefaultChatbotPersonality
	}
	if input.MaxResponseLength == 0 {
		input.MaxResponseLength = DefaultMaxResponseLength
	}
	temperature := DefaultTemperature
	if input.Temperature != nil {
		temperature = *input.Temperature
	}

	errs := validation.ValidateMap(map[string]interface{}{
		"name":              input.Name,
		"model":             input.Model,
		"language":          input.Language,
		"tone":              input.Tone,
		"personality":       input.Personality,
		"maxResponseLength": input.MaxResponseLength,
		"temperature":       temperature,
	}, chatbotSettingsRules)
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	bot := &models.Chatbot{
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Status:      models.ChatbotStatusOffline,
		Model:       input.Model,
		Settings: models.ChatbotSettings{
			Language:          input.Language,
			Tone:              input.Tone,
			Personality:       input.Personality,
			MaxResponseLength: input.MaxResponseLength,
			Temperature:       temperature,
		},
	}
	doc, err := models.ToDoc(bot)
	if err != nil {
		return nil, err
	}
	delete(doc, "id")

	id, err := s.store.Create(ctx, db.ChatbotsCollection, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create chatbot: %w", err)
	}

	s.logger.Info("chatbot created", zap.String("userID", userID), zap.String("chatbotID", id))
	return s.GetByID(ctx, id)
}

// ListByUser returns the user's chatbots, newest first.
func (s *chatbotService) ListByUser(ctx context.Context, userID string) ([]models.Chatbot, error) {
	docs, err := s.store.Query(ctx, db.ChatbotsCollection, db.Query{
		Wheres:  []db.Where{{Field: "userId", Op: "==", Value: userID}},
		OrderBy: "createdAt",
		Desc:    true,
	}, persistence.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to list chatbots: %w", err)
	}
	return models.FromDocs[models.Chatbot](docs)
}

// GetByID fetches one chatbot.
func (s *chatbotService) GetByID(ctx context.Context, chatbotID string) (*models.Chatbot, error) {
	doc, err := s.store.Get(ctx, db.ChatbotsCollection, chatbotID, persistence.Options{})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrChatbotNotFound
	}
	var bot models.Chatbot
	if err := models.FromDoc(doc, &bot); err != nil {
		return nil, err
	}
	return &bot, nil
}

// Update merges fields into the chatbot. Settings fields and the status go
// through the same validation as creation.
func (s *chatbotService) Update(ctx context.Context, chatbotID string, updates map[string]interface{}) (*models.Chatbot, error) {
	allowed := map[string]bool{
		"name": true, "description": true, "status": true,
		"model": true, "settings": true,
	}
	partial := make(map[string]interface{}, len(updates))
	for field, value := range updates {
		if allowed[field] {
			partial[field] = value
		}
	}
	if len(partial) == 0 {
		return s.GetByID(ctx, chatbotID)
	}

	errs := validation.Errors{}
	if name, ok := partial["name"]; ok {
		if msg := validation.ValidateField(name, chatbotSettingsRules["name"]); msg != "" {
			errs["name"] = msg
		}
	}
	if status, ok := partial["status"].(string); ok {
		switch status {
		case models.ChatbotStatusOnline, models.ChatbotStatusTraining, models.ChatbotStatusOffline:
		default:
			errs["status"] = "Invalid chatbot status"
		}
	}
	if settings, ok := partial["settings"].(map[string]interface{}); ok {
		for _, field := range []string{"maxResponseLength", "temperature"} {
			if value, present := settings[field]; present {
				if msg := validation.ValidateField(value, chatbotSettingsRules[field]); msg != "" {
					errs[field] = msg
				}
			}
		}
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	if _, err := s.GetByID(ctx, chatbotID); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, db.ChatbotsCollection, chatbotID, partial); err != nil {
		return nil, fmt.Errorf("failed to update chatbot: %w", err)
	}

	s.logger.Info("chatbot updated", zap.String("chatbotID", chatbotID))
	return s.GetByID(ctx, chatbotID)
}
