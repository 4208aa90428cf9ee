package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/domo/internal/shared"
	"github.com/desertthunder/domo/internal/spotify"
)

// OAuthResult contains the outcome of one authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o OAuthResult) Error() error {
	return o.err
}

// OAuthHandler serves the login redirect and the authorization callback for
// the remote streaming service. The session consumes its stored CSRF state
// on first use, so a replayed callback fails the exchange rather than
// minting a second token.
//
// Implements [Handler] for registration with a [Router].
type OAuthHandler struct {
	session *spotify.Session
	logger  *log.Logger

	resultChan chan OAuthResult
	once       sync.Once
}

// NewOAuthHandler creates a handler around an authorization session.
func NewOAuthHandler(session *spotify.Session, logger *log.Logger) *OAuthHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &OAuthHandler{
		session:    session,
		logger:     logger,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"/auth/login", "/auth/callback"}
}

// ServeHTTP dispatches to the login or callback route.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/auth/login":
		h.login(w, r)
	case "/auth/callback":
		h.callback(w, r)
	default:
		http.NotFound(w, r)
	}
}

// login generates a fresh authorization URL and redirects the browser to
// the remote consent page.
func (h *OAuthHandler) login(w http.ResponseWriter, r *http.Request) {
	url, err := h.session.AuthorizationURL()
	if err != nil {
		h.logger.Error("failed to build authorization url", "error", err)
		http.Error(w, "Failed to start authorization", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// callback validates the state parameter, exchanges the authorization code,
// and sends the result through the result channel.
func (h *OAuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		err := fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, errParam, q.Get("error_description"))
		h.send(OAuthResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: callback missing authorization code", shared.ErrAuthFailed)
		h.send(OAuthResult{err: err})
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	token, err := h.session.Exchange(r.Context(), code, q.Get("state"))
	if err != nil {
		h.send(OAuthResult{err: err})
		if errors.Is(err, shared.ErrStateMismatch) || errors.Is(err, shared.ErrAuthFailed) {
			http.Error(w, "Invalid authorization callback", http.StatusBadRequest)
			return
		}
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, authSuccessPage)
}

// send delivers the OAuth result through the channel (only once).
func (h *OAuthHandler) send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the channel receiving the flow's completion.
//
// The channel receives exactly one result and is then closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

const authSuccessPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Spotify Connected</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>&#10003; Spotify Connected</h1>
        <p>You can close this window and return to the dashboard.</p>
    </div>
</body>
</html>
`
