package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	WarmQueries Phase = iota
	WarmArtwork
	WarmSummary
)

func (p Phase) String() string {
	switch p {
	case WarmQueries:
		return "warm_queries"
	case WarmArtwork:
		return "warm_artwork"
	case WarmSummary:
		return "warm_summary"
	default:
		return ""
	}
}

func warmQueryUpdate(step, total int, query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WarmQueries,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Searching: %s...", step, total, query),
	}
}

func queryDoneUpdate(step, total int, query string, count int, reason string) ProgressUpdate {
	message := fmt.Sprintf("[%d/%d] ✓ %s (%d tracks)", step, total, query, count)
	if reason != "" {
		message = fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, query, reason)
	}
	return ProgressUpdate{
		Phase:   WarmQueries,
		Step:    step,
		Total:   total,
		Message: message,
	}
}

func warmArtworkUpdate(step, total int, rawURL string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WarmArtwork,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, rawURL),
	}
}

func artworkFailedUpdate(step, total int, rawURL string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WarmArtwork,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, rawURL, err),
	}
}

func warmDoneUpdate(result *WarmResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WarmSummary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Warmed %d queries and %d artwork assets", result.Queries, result.Artwork),
		Data:    result,
	}
}
