package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/domo/internal/shared"
	"golang.org/x/oauth2"
)

// Session entry keys. Value shapes are private to this layer.
const (
	keyToken    = "spotify_token"
	keyState    = "auth_state"
	keyVerifier = "auth_verifier"
)

// SessionRepository persists small durable key/value entries: the OAuth
// token and the single-use CSRF state and PKCE verifier. It satisfies the
// spotify package's TokenStore.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Set stores or replaces the value for a key.
func (r *SessionRepository) Set(key, value string) error {
	query := `
		INSERT INTO sessions (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to store session entry %s: %w", key, err)
	}
	return nil
}

// Get retrieves the value for a key.
func (r *SessionRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM sessions WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: session entry %s", shared.ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session entry %s: %w", key, err)
	}
	return value, nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (r *SessionRepository) Delete(key string) error {
	if _, err := r.db.Exec(`DELETE FROM sessions WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete session entry %s: %w", key, err)
	}
	return nil
}

// Take reads and deletes a key in one transaction, so a value can only be
// consumed once.
func (r *SessionRepository) Take(key string) (string, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var value string
	err = tx.QueryRow(`SELECT value FROM sessions WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: session entry %s", shared.ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session entry %s: %w", key, err)
	}

	if _, err := tx.Exec(`DELETE FROM sessions WHERE key = ?`, key); err != nil {
		return "", fmt.Errorf("failed to consume session entry %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit session read: %w", err)
	}
	return value, nil
}

// SaveToken persists the OAuth token as a JSON entry.
func (r *SessionRepository) SaveToken(token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return r.Set(keyToken, string(data))
}

// Token loads the stored OAuth token. Wraps [shared.ErrNotFound] when no
// token has been saved.
func (r *SessionRepository) Token() (*oauth2.Token, error) {
	value, err := r.Get(keyToken)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(value), &token); err != nil {
		return nil, fmt.Errorf("failed to decode stored token: %w", err)
	}
	return &token, nil
}

// Clear removes the stored token.
func (r *SessionRepository) Clear() error {
	return r.Delete(keyToken)
}

// SaveState stores the single-use CSRF state for the pending authorization.
func (r *SessionRepository) SaveState(state string) error {
	return r.Set(keyState, state)
}

// TakeState consumes the pending CSRF state.
func (r *SessionRepository) TakeState() (string, error) {
	return r.Take(keyState)
}

// SaveVerifier stores the single-use PKCE verifier for the pending authorization.
func (r *SessionRepository) SaveVerifier(verifier string) error {
	return r.Set(keyVerifier, verifier)
}

// TakeVerifier consumes the pending PKCE verifier.
func (r *SessionRepository) TakeVerifier() (string, error) {
	return r.Take(keyVerifier)
}
