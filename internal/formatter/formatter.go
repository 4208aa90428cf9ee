// package formatter renders track listings for the CLI and for export (table, CSV, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/shared"
)

// FormatDuration renders a duration as m:ss, or "--:--" when unknown.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "--:--"
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// ToTable renders tracks as an aligned text table with a header row.
func ToTable(tracks []music.Track) []byte {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "#\tTITLE\tARTIST\tGENRE\tLENGTH\tSOURCE")
	for i, track := range tracks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1, track.Title, track.Artist, track.Genre, FormatDuration(track.Duration), track.Source)
	}

	w.Flush()
	return buf.Bytes()
}

// ToCSV converts tracks to CSV format with columns: ID, Title, Artist, Genre, Duration, PlayURL, License
func ToCSV(tracks []music.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Genre", "Duration", "PlayURL", "License"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Genre,
			FormatDuration(track.Duration),
			track.PlayURL,
			track.License,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToJSON generates a JSON representation of the track listing
func ToJSON(tracks []music.Track, pretty bool) ([]byte, error) {
	return shared.MarshalJSON(tracks, pretty)
}

// ToMarkdown converts tracks to a titled Markdown listing with attribution lines
func ToMarkdown(title string, tracks []music.Track) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(tracks)))

	for i, track := range tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", i+1, track.Artist, track.Title, FormatDuration(track.Duration)))
		if track.Attribution != "" {
			buf.WriteString(fmt.Sprintf("   - %s", track.Attribution))
			if track.License != "" {
				buf.WriteString(fmt.Sprintf(" (%s)", track.License))
			}
			buf.WriteString("\n")
		}
	}

	return buf.Bytes()
}
