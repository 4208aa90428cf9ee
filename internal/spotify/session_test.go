package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/domo/internal/shared"
	tu "github.com/desertthunder/domo/internal/testing"
	"golang.org/x/oauth2"
)

// memStore is an in-memory TokenStore with single-use state and verifier.
type memStore struct {
	mu       sync.Mutex
	token    *oauth2.Token
	state    string
	verifier string
}

func (m *memStore) SaveToken(token *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memStore) Token() (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == nil {
		return nil, fmt.Errorf("%w: token", shared.ErrNotFound)
	}
	return m.token, nil
}

func (m *memStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = nil
	return nil
}

func (m *memStore) SaveState(state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	return nil
}

func (m *memStore) TakeState() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == "" {
		return "", fmt.Errorf("%w: authorization state", shared.ErrNotFound)
	}
	v := m.state
	m.state = ""
	return v, nil
}

func (m *memStore) SaveVerifier(verifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifier = verifier
	return nil
}

func (m *memStore) TakeVerifier() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.verifier == "" {
		return "", fmt.Errorf("%w: code verifier", shared.ErrNotFound)
	}
	v := m.verifier
	m.verifier = ""
	return v, nil
}

func testConfig() *shared.Config {
	cfg := shared.DefaultConfig()
	cfg.Credentials.Spotify.ClientID = "client-id"
	return cfg
}

func newTestSession(t *testing.T) (*Session, *memStore) {
	t.Helper()
	store := &memStore{}
	sess, err := NewSession(testConfig(), store, shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return sess, store
}

func TestNewSession(t *testing.T) {
	t.Run("requires client id", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		_, err := NewSession(cfg, &memStore{}, shared.NewLogger(io.Discard))
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("NewSession() error = %v, want ErrMissingCredentials", err)
		}
	})

	t.Run("defaults redirect to server address", func(t *testing.T) {
		sess, _ := newTestSession(t)
		if got := sess.config.RedirectURL; got != "http://127.0.0.1:8080/auth/callback" {
			t.Errorf("RedirectURL = %q", got)
		}
	})
}

func TestSessionAuthorizationURL(t *testing.T) {
	sess, store := newTestSession(t)

	rawURL, err := sess.AuthorizationURL()
	if err != nil {
		t.Fatalf("AuthorizationURL() error = %v", err)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("failed to parse auth URL: %v", err)
	}
	query := parsed.Query()

	if got := query.Get("client_id"); got != "client-id" {
		t.Errorf("client_id = %q", got)
	}
	if got := query.Get("code_challenge_method"); got != "S256" {
		t.Errorf("code_challenge_method = %q", got)
	}
	if query.Get("code_challenge") == "" {
		t.Error("expected a code challenge")
	}

	state := query.Get("state")
	if state == "" {
		t.Fatal("expected a state parameter")
	}

	stored, err := store.TakeState()
	if err != nil || stored != state {
		t.Errorf("stored state = %q (err %v), want %q", stored, err, state)
	}
	if _, err := store.TakeState(); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("second TakeState error = %v, want ErrNotFound", err)
	}
	if v, err := store.TakeVerifier(); err != nil || v == "" {
		t.Errorf("TakeVerifier() = %q, %v", v, err)
	}
}

func TestSessionExchange(t *testing.T) {
	tokenJSON := `{"access_token":"remote-token","token_type":"Bearer","expires_in":3600}`

	t.Run("rejects mismatched state", func(t *testing.T) {
		sess, store := newTestSession(t)
		store.SaveState("expected")
		store.SaveVerifier("verifier")

		_, err := sess.Exchange(context.Background(), "code", "forged")
		if !errors.Is(err, shared.ErrStateMismatch) {
			t.Errorf("Exchange() error = %v, want ErrStateMismatch", err)
		}
	})

	t.Run("rejects callback with no pending authorization", func(t *testing.T) {
		sess, _ := newTestSession(t)
		_, err := sess.Exchange(context.Background(), "code", "state")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("Exchange() error = %v, want ErrAuthFailed", err)
		}
	})

	t.Run("exchanges code and persists token", func(t *testing.T) {
		sess, store := newTestSession(t)

		rawURL, err := sess.AuthorizationURL()
		if err != nil {
			t.Fatalf("AuthorizationURL() error = %v", err)
		}
		parsed, _ := url.Parse(rawURL)
		state := parsed.Query().Get("state")

		rt := tu.NewHandlerRoundTripper(func(r *http.Request) (*http.Response, error) {
			return tu.JSONResponse(http.StatusOK, tokenJSON), nil
		})
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Transport: rt})

		token, err := sess.Exchange(ctx, "code", state)
		if err != nil {
			t.Fatalf("Exchange() error = %v", err)
		}
		if token.AccessToken != "remote-token" {
			t.Errorf("AccessToken = %q", token.AccessToken)
		}
		if !sess.HasValid() {
			t.Error("expected a valid session after exchange")
		}
		if stored, err := store.Token(); err != nil || stored.AccessToken != "remote-token" {
			t.Errorf("stored token = %v (err %v)", stored, err)
		}
	})
}

func TestSessionValidity(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		sess, _ := newTestSession(t)
		if sess.HasValid() {
			t.Error("expected no valid session")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		sess, _ := newTestSession(t)
		if err := sess.SaveToken(&oauth2.Token{AccessToken: "old", Expiry: time.Now().Add(-time.Hour)}); err != nil {
			t.Fatalf("SaveToken() error = %v", err)
		}
		if sess.HasValid() {
			t.Error("expected expired token to be invalid")
		}
	})

	t.Run("valid token", func(t *testing.T) {
		sess, _ := newTestSession(t)
		if err := sess.SaveToken(&oauth2.Token{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)}); err != nil {
			t.Fatalf("SaveToken() error = %v", err)
		}
		if !sess.HasValid() {
			t.Error("expected a valid session")
		}
	})

	t.Run("invalidate clears cache and store", func(t *testing.T) {
		sess, store := newTestSession(t)
		if err := sess.SaveToken(&oauth2.Token{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)}); err != nil {
			t.Fatalf("SaveToken() error = %v", err)
		}

		sess.Invalidate()

		if sess.HasValid() {
			t.Error("expected session to be invalid after Invalidate")
		}
		if _, err := store.Token(); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("store.Token() error = %v, want ErrNotFound", err)
		}
	})
}
