package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/shared"
	"golang.org/x/time/rate"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

// RemoteError describes a failed call to the remote playback service.
// Status is the HTTP status code, or 0 for transport-level failures.
type RemoteError struct {
	Status  int
	Message string
	err     error
}

func newRemoteError(status int, message string) *RemoteError {
	return &RemoteError{Status: status, Message: message, err: shared.ErrRemoteService}
}

func newTimeoutError() *RemoteError {
	return &RemoteError{Message: "request timed out", err: shared.ErrTimeout}
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("remote service error: %s", e.Message)
	}
	return fmt.Sprintf("remote service error: status %d: %s", e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.err
}

// ClientOptions configures a remote playback [Client].
type ClientOptions struct {
	Session    *Session
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	RatePerSec float64
	Logger     *log.Logger
}

// Client issues authenticated playback commands against the remote service
// and mirrors the last known remote playback state. All methods check the
// session before building a request; without a valid session no network
// traffic happens.
type Client struct {
	session *Session
	http    *http.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *log.Logger

	mu       sync.Mutex
	deviceID string
	state    music.PlaybackState
	gen      uint64
}

// NewClient builds a remote playback client. Zero-value options fall back to
// the live API endpoint, a 10 second timeout, and 10 requests per second.
func NewClient(opts ClientOptions) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 10
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Client{
		session: opts.Session,
		http:    opts.HTTPClient,
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
		logger:  opts.Logger,
		state:   music.PlaybackState{CurrentIndex: -1},
	}
}

// Session exposes the underlying session, mainly so callers can check
// validity before offering remote controls.
func (c *Client) Session() *Session {
	return c.session
}

// doRequest performs an authenticated HTTP request against the remote API.
// The session gate runs first: without a valid token the method returns
// before any network call. A 401 reply invalidates the session.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, query url.Values, body, result any) error {
	if !c.session.HasValid() {
		return fmt.Errorf("%w: no valid session", shared.ErrAuthRequired)
	}
	token, err := c.session.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthRequired, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("request cancelled: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	apiURL := c.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	var req *http.Request
	if reqBody != nil {
		req, err = http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, apiURL, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return newTimeoutError()
		}
		return newRemoteError(0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("remote service rejected token, invalidating session")
		c.session.Invalidate()
		return fmt.Errorf("%w: session rejected by service", shared.ErrAuthRequired)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newRemoteError(resp.StatusCode, readAPIError(resp))
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// readAPIError extracts the service's error message, falling back to the
// generic status text when the body is not the documented error shape.
func readAPIError(resp *http.Response) string {
	var payload apiError
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return http.StatusText(resp.StatusCode)
}

// Devices lists the user's playback devices and caches the target id:
// the device the service marks active, else the first listed, else none
// (commands then omit targeting and let the service pick).
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var payload devicesResponse
	if err := c.doRequest(ctx, http.MethodGet, "/me/player/devices", nil, nil, &payload); err != nil {
		return nil, err
	}

	id := pickDevice(payload.Devices)

	c.mu.Lock()
	c.deviceID = id
	c.mu.Unlock()

	c.logger.Debug("discovered playback devices", "count", len(payload.Devices), "target", id)
	return payload.Devices, nil
}

func pickDevice(devices []Device) string {
	for _, d := range devices {
		if d.IsActive {
			return d.ID
		}
	}
	if len(devices) > 0 {
		return devices[0].ID
	}
	return ""
}

// ActiveDevice returns the cached target device id, if any.
func (c *Client) ActiveDevice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceID
}

// deviceQuery builds the device_id query for transport commands.
func (c *Client) deviceQuery() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deviceID == "" {
		return nil
	}
	return url.Values{"device_id": []string{c.deviceID}}
}

// bump advances the command generation, marking in-flight polls stale.
func (c *Client) bump() {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
}

// Play resumes playback on the targeted device.
func (c *Client) Play(ctx context.Context) error {
	c.bump()
	if err := c.doRequest(ctx, http.MethodPut, "/me/player/play", c.deviceQuery(), nil, nil); err != nil {
		return err
	}
	c.setPlaying(true)
	return nil
}

// Pause pauses playback on the targeted device.
func (c *Client) Pause(ctx context.Context) error {
	c.bump()
	if err := c.doRequest(ctx, http.MethodPut, "/me/player/pause", c.deviceQuery(), nil, nil); err != nil {
		return err
	}
	c.setPlaying(false)
	return nil
}

// Next skips to the next track in the remote queue.
func (c *Client) Next(ctx context.Context) error {
	c.bump()
	return c.doRequest(ctx, http.MethodPost, "/me/player/next", c.deviceQuery(), nil, nil)
}

// Previous skips to the previous track in the remote queue.
func (c *Client) Previous(ctx context.Context) error {
	c.bump()
	return c.doRequest(ctx, http.MethodPost, "/me/player/previous", c.deviceQuery(), nil, nil)
}

// Seek moves the remote playhead. Negative positions clamp to zero.
func (c *Client) Seek(ctx context.Context, position time.Duration) error {
	if position < 0 {
		position = 0
	}

	c.bump()
	query := c.deviceQuery()
	if query == nil {
		query = url.Values{}
	}
	query.Set("position_ms", strconv.FormatInt(position.Milliseconds(), 10))
	return c.doRequest(ctx, http.MethodPut, "/me/player/seek", query, nil, nil)
}

// SetVolume sets the remote device volume from a [0,1] fraction,
// clamping out-of-range values.
func (c *Client) SetVolume(ctx context.Context, v float64) error {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}

	c.bump()
	query := c.deviceQuery()
	if query == nil {
		query = url.Values{}
	}
	query.Set("volume_percent", strconv.Itoa(int(v*100+0.5)))
	return c.doRequest(ctx, http.MethodPut, "/me/player/volume", query, nil, nil)
}

// PlaybackState polls the remote player and refreshes the local mirror.
// A poll that was in flight when a transport command ran belongs to a stale
// generation; its payload is discarded and the newer mirror returned instead.
// A 204 reply means nothing is playing and clears the mirror.
func (c *Client) PlaybackState(ctx context.Context) (music.PlaybackState, error) {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	var payload playerState
	if err := c.doRequest(ctx, http.MethodGet, "/me/player", nil, nil, &payload); err != nil {
		return music.PlaybackState{CurrentIndex: -1}, err
	}
	fresh := payload.snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.logger.Debug("discarding stale playback poll", "generation", gen, "current", c.gen)
		return cloneState(c.state), nil
	}

	c.state = fresh
	return cloneState(c.state), nil
}

// State returns the last mirrored playback state without touching the network.
func (c *Client) State() music.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneState(c.state)
}

// setPlaying flips the mirrored play flag right after a successful command,
// ahead of the next poll confirming it.
func (c *Client) setPlaying(playing bool) {
	c.mu.Lock()
	c.state.IsPlaying = playing
	c.mu.Unlock()
}

func cloneState(s music.PlaybackState) music.PlaybackState {
	if s.CurrentTrack != nil {
		track := *s.CurrentTrack
		s.CurrentTrack = &track
	}
	return s
}
