package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed    = fmt.Errorf("authentication failed")
	ErrAuthRequired  = fmt.Errorf("authentication required")
	ErrTokenExpired  = fmt.Errorf("access token expired")
	ErrStateMismatch = fmt.Errorf("oauth state mismatch")

	// Playback errors
	ErrNoTrack       = fmt.Errorf("no track available")
	ErrMediaLoad     = fmt.Errorf("media failed to load")
	ErrRemoteService = fmt.Errorf("remote service request failed")
	ErrTimeout       = fmt.Errorf("operation timed out")

	// Catalog errors
	ErrSearchFailed = fmt.Errorf("search failed")

	// Storage errors
	ErrNotFound = fmt.Errorf("record not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
