package spotify

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/domo/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

var playerScopes = []string{
	"user-read-private",
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
}

// TokenStore persists the OAuth token and the single-use handshake values.
// TakeState and TakeVerifier consume the stored value: a second call fails
// with [shared.ErrNotFound].
type TokenStore interface {
	SaveToken(token *oauth2.Token) error
	Token() (*oauth2.Token, error)
	Clear() error
	SaveState(state string) error
	TakeState() (string, error)
	SaveVerifier(verifier string) error
	TakeVerifier() (string, error)
}

// Session manages the OAuth token lifecycle for the remote playback service.
// It wraps an [oauth2.Config] for the PKCE authorization-code flow and keeps
// the most recently loaded token cached in memory.
type Session struct {
	mu     sync.Mutex
	config *oauth2.Config
	store  TokenStore
	logger *log.Logger
	cached *oauth2.Token
}

// NewSession builds a session from the configured Spotify credentials.
// The client secret is optional: the PKCE flow works for public clients.
func NewSession(cfg *shared.Config, store TokenStore, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	creds := cfg.Credentials.Spotify
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: spotify client_id", shared.ErrMissingCredentials)
	}

	redirectURI := creds.RedirectURI
	if redirectURI == "" {
		redirectURI = fmt.Sprintf("http://%s/auth/callback", cfg.Server.Address())
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       playerScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &Session{config: config, store: store, logger: logger}, nil
}

// AuthorizationURL generates a fresh CSRF state and PKCE verifier, persists
// both for the upcoming callback, and returns the provider login URL.
func (s *Session) AuthorizationURL() (string, error) {
	state := shared.GenerateID()
	verifier := oauth2.GenerateVerifier()

	if err := s.store.SaveState(state); err != nil {
		return "", fmt.Errorf("failed to save authorization state: %w", err)
	}
	if err := s.store.SaveVerifier(verifier); err != nil {
		return "", fmt.Errorf("failed to save code verifier: %w", err)
	}

	return s.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

// Exchange trades the callback code for a token. The state must match the
// value stored by [Session.AuthorizationURL]; both the state and the verifier
// are consumed whether or not the exchange succeeds.
func (s *Session) Exchange(ctx context.Context, code, state string) (*oauth2.Token, error) {
	stored, err := s.store.TakeState()
	if err != nil {
		return nil, fmt.Errorf("%w: no pending authorization", shared.ErrAuthFailed)
	}
	if state == "" || state != stored {
		return nil, fmt.Errorf("%w: callback state does not match", shared.ErrStateMismatch)
	}

	verifier, err := s.store.TakeVerifier()
	if err != nil {
		return nil, fmt.Errorf("%w: missing code verifier", shared.ErrAuthFailed)
	}

	token, err := s.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := s.SaveToken(token); err != nil {
		return nil, err
	}

	s.logger.Info("authenticated with spotify", "expiry", token.Expiry)
	return token, nil
}

// SaveToken persists the token and caches it for subsequent requests.
func (s *Session) SaveToken(token *oauth2.Token) error {
	if err := s.store.SaveToken(token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	s.mu.Lock()
	s.cached = token
	s.mu.Unlock()
	return nil
}

// Token returns the cached token, falling back to the store. Failure to load
// wraps [shared.ErrNotFound] when no token has ever been saved.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached.Valid() {
		return s.cached, nil
	}

	token, err := s.store.Token()
	if err != nil {
		return nil, err
	}

	s.cached = token
	return token, nil
}

// HasValid reports whether a usable (present, non-expired) token exists.
func (s *Session) HasValid() bool {
	token, err := s.Token()
	return err == nil && token.Valid()
}

// Invalidate drops the cached token and clears the store. Called when the
// remote service rejects the token, so the next command fails locally with
// [shared.ErrAuthRequired] instead of retrying a dead session.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		s.logger.Warn("failed to clear stored token", "error", err)
	}
}
