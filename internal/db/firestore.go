package db

import (
	"context"
	"encoding/base64"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"shoply-backend-go/internal/config"
)

// Clients bundles the Firebase Admin SDK clients used by the application.
// It is constructed once at startup and passed explicitly; there is no
// lazily-initialized global.
type Clients struct {
	Firestore *firestore.Client
	Auth      *auth.Client
}

// NewClients initializes the Firebase Admin SDK and returns the Firestore
// and Auth clients. Credentials come from a service account file path or a
// base64-encoded service account JSON, per config.
func NewClients(ctx context.Context, cfg *config.Config) (*Clients, error) {
	if cfg == nil {
		return nil, fmt.Errorf("NewClients: cfg cannot be nil")
	}

	var credsOption option.ClientOption
	if cfg.GoogleApplicationCredentials != "" {
		credsOption = option.WithCredentialsFile(cfg.GoogleApplicationCredentials)
	} else if cfg.FirebaseServiceAccountJSONBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		credsOption = option.WithCredentialsJSON(decoded)
	}

	appConfig := &firebase.Config{ProjectID: cfg.FirebaseProjectID}

	var app *firebase.App
	var err error
	if credsOption != nil {
		app, err = firebase.NewApp(ctx, appConfig, credsOption)
	} else {
		app, err = firebase.NewApp(ctx, appConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		fsClient.Close()
		return nil, fmt.Errorf("app.Auth: %w", err)
	}

	return &Clients{Firestore: fsClient, Auth: authClient}, nil
}

// Close releases the underlying client connections.
func (c *Clients) Close() error {
	if c.Firestore != nil {
		return c.Firestore.Close()
	}
	return nil
}
