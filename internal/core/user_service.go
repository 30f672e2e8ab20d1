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

type userService struct {
	store  *persistence.Manager
	logger *zap.Logger
}

// NewUserService creates the user profile service over the persistence
// manager.
func NewUserService(store *persistence.Manager, logger *zap.Logger) UserService {
	return &userService{store: store, logger: logger}
}

// Create writes the profile document for a freshly signed-up account. The
// document id is the auth UID, so profile lookups never need a query.
func (s *userService) Create(ctx context.Context, userID, email, name string) (*models.User, error) {
	errs := validation.ValidateMap(map[string]interface{}{
		"email": email,
		"name":  name,
	}, validation.Rules{
		"email": validation.EmailRule,
		"name":  validation.NameRule,
	})
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	user := &models.User{
		ID:    userID,
		Email: email,
		Name:  name,
		Settings: &models.UserSettings{
			Notifications: true,
			Newsletter:    false,
		},
	}
	doc, err := models.ToDoc(user)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Create(ctx, db.UsersCollection, doc); err != nil {
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}

	s.logger.Info("user profile created", zap.String("userID", userID))
	return s.GetByID(ctx, userID)
}

// GetByID fetches a profile, served from cache when fresh.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	doc, err := s.store.Get(ctx, db.UsersCollection, userID, persistence.Options{})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrUserNotFound
	}

	var user models.User
	if err := models.FromDoc(doc, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update merges the given fields into the profile and returns the updated
// document. Only known profile fields are accepted.
func (s *userService) Update(ctx context.Context, userID string, updates map[string]interface{}) (*models.User, error) {
	allowed := map[string]bool{
		"name": true, "phone": true, "company": true,
		"position": true, "profileImage": true, "settings": true,
	}
	partial := make(map[string]interface{}, len(updates))
	for field, value := range updates {
		if allowed[field] {
			partial[field] = value
		}
	}
	if len(partial) == 0 {
		return s.GetByID(ctx, userID)
	}

	rules := validation.Rules{}
	if _, ok := partial["name"]; ok {
		rules["name"] = validation.NameRule
	}
	if _, ok := partial["phone"]; ok {
		rules["phone"] = validation.PhoneRule
	}
	if errs := validation.ValidateMap(partial, rules); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	if _, err := s.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, db.UsersCollection, userID, partial); err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}

	s.logger.Info("user profile updated", zap.String("userID", userID))
	return s.GetByID(ctx, userID)
}
