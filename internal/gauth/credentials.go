// Package gauth loads the Google service-account identity shared by the
// sheet store and the read-only drive client.
package gauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"google.golang.org/api/option"

	"github.com/Hsnnder/real-estatemvp/internal/config"
)

// ErrNoCredentials is returned when neither inline JSON nor a credentials file is available.
var ErrNoCredentials = errors.New("google service account credentials not configured")

type serviceAccount struct {
	Type        string `json:"type"`
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
}

// LoadServiceAccount returns the raw service-account JSON, preferring the
// inline GOOGLE_CREDENTIALS value over the credentials file.
func LoadServiceAccount(cfg *config.Config) ([]byte, error) {
	var raw []byte
	switch {
	case cfg.GoogleCredentialsJSON != "":
		raw = []byte(cfg.GoogleCredentialsJSON)
	case cfg.GoogleCredentialsFile != "":
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, ErrNoCredentials
			}
			return nil, fmt.Errorf("failed to read credentials file %s: %w", cfg.GoogleCredentialsFile, err)
		}
		raw = data
	default:
		return nil, ErrNoCredentials
	}
	if err := ValidateServiceAccount(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ValidateServiceAccount checks that the JSON describes a usable service account.
func ValidateServiceAccount(raw []byte) error {
	var sa serviceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return fmt.Errorf("invalid service account JSON: %w", err)
	}
	if sa.Type != "service_account" {
		return fmt.Errorf("invalid service account JSON: type is %q, want service_account", sa.Type)
	}
	if sa.PrivateKey == "" || sa.ClientEmail == "" {
		return fmt.Errorf("invalid service account JSON: private_key and client_email are required")
	}
	return nil
}

// ClientOptions builds API client options for the service account with the given scopes.
func ClientOptions(cfg *config.Config, scopes ...string) ([]option.ClientOption, error) {
	raw, err := LoadServiceAccount(cfg)
	if err != nil {
		return nil, err
	}
	return []option.ClientOption{
		option.WithCredentialsJSON(raw),
		option.WithScopes(scopes...),
	}, nil
}
