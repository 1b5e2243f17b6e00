package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	"github.com/Hsnnder/real-estatemvp/internal/config"
)

// TokenStore keeps the Drive OAuth token in memory and in a JSON file.
type TokenStore struct {
	mu    sync.Mutex
	path  string
	token *oauth2.Token
}

// NewTokenStore loads the token at path if one was saved before.
func NewTokenStore(path string) *TokenStore {
	s := &TokenStore{path: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Println("Drive OAuth token not found; authorization required")
	case err != nil:
		log.Printf("Failed to read Drive OAuth token %s: %v", path, err)
	default:
		var tok oauth2.Token
		if err := json.Unmarshal(data, &tok); err != nil {
			log.Printf("Failed to parse Drive OAuth token %s: %v", path, err)
			break
		}
		s.token = &tok
		log.Println("Drive OAuth token loaded")
	}
	return s
}

// Token returns a copy of the current token, or nil.
func (s *TokenStore) Token() *oauth2.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return nil
	}
	tok := *s.token
	return &tok
}

// Save replaces the token and rewrites the file.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token %s: %w", s.path, err)
	}
	t := *tok
	s.token = &t
	return nil
}

// Valid reports whether an access or refresh token is present.
func (s *TokenStore) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != nil && (s.token.AccessToken != "" || s.token.RefreshToken != "")
}

// persistingTokenSource writes refreshed tokens back to the store.
type persistingTokenSource struct {
	base  oauth2.TokenSource
	store *TokenStore
	mu    sync.Mutex
	last  string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		if err := p.store.Save(tok); err != nil {
			log.Printf("Failed to persist refreshed Drive token: %v", err)
		}
		p.last = tok.AccessToken
	}
	return tok, nil
}

// DriveAuth runs the interactive consent flow that grants upload access.
type DriveAuth struct {
	oauth  *oauth2.Config
	tokens *TokenStore
}

// NewDriveAuth builds the OAuth client from config.
func NewDriveAuth(cfg *config.Config, tokens *TokenStore) *DriveAuth {
	return &DriveAuth{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Scopes:       []string{drive.DriveFileScope},
			Endpoint:     google.Endpoint,
		},
		tokens: tokens,
	}
}

// AuthURL is the consent page URL. Offline access with forced approval makes
// Google return a refresh token every time.
func (a *DriveAuth) AuthURL(state string) string {
	return a.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades the callback code for a token and persists it.
func (a *DriveAuth) Exchange(ctx context.Context, code string) error {
	tok, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("drive oauth exchange: %w", err)
	}
	if err := a.tokens.Save(tok); err != nil {
		return err
	}
	log.Println("Drive OAuth token stored")
	return nil
}

// IsAuthorized reports whether a usable token exists.
func (a *DriveAuth) IsAuthorized() bool {
	return a.tokens.Valid()
}

// Client returns an HTTP client that refreshes and persists the token.
func (a *DriveAuth) Client(ctx context.Context) (*http.Client, error) {
	tok := a.tokens.Token()
	if tok == nil || (tok.AccessToken == "" && tok.RefreshToken == "") {
		return nil, ErrNotAuthorized
	}
	ts := &persistingTokenSource{
		base:  oauth2.ReuseTokenSource(tok, a.oauth.TokenSource(ctx, tok)),
		store: a.tokens,
		last:  tok.AccessToken,
	}
	return oauth2.NewClient(ctx, ts), nil
}
