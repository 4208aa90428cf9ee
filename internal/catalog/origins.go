// Origin clients for the royalty-free catalog (Jamendo-compatible) and the
// local-artist feed.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/shared"
)

const remoteCatalogLimit = 20

// catalogTrack is one result row from the royalty-free catalog API.
type catalogTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ArtistName string `json:"artist_name"`
	Duration   int    `json:"duration"`
	Audio      string `json:"audio"`
	Image      string `json:"image"`
	LicenseURL string `json:"license_ccurl"`
}

type catalogResponse struct {
	Results []catalogTrack `json:"results"`
}

// artistTrack is one entry of the local-artist feed, a static JSON document
// listing the artist's published tracks.
type artistTrack struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Genre    string `json:"genre"`
	Duration int    `json:"duration"`
	Audio    string `json:"audio"`
	Artwork  string `json:"artwork"`
	License  string `json:"license"`
}

// fetchJSON performs one bounded GET against an origin and decodes the body.
// Every failure wraps [shared.ErrSearchFailed]; callers treat it as a
// degraded origin, never a user-facing error.
func (p *Provider) fetchJSON(ctx context.Context, origin, rawURL string, result any) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrSearchFailed, origin, err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrSearchFailed, origin, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", shared.ErrSearchFailed, origin, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrSearchFailed, origin, err)
	}
	return nil
}

// searchRemoteCatalog queries the royalty-free catalog API.
func (p *Provider) searchRemoteCatalog(ctx context.Context, query string) ([]music.Track, error) {
	params := url.Values{
		"client_id": []string{p.remoteClientID},
		"format":    []string{"json"},
		"limit":     []string{fmt.Sprint(remoteCatalogLimit)},
		"search":    []string{query},
	}
	endpoint := fmt.Sprintf("%s/tracks/?%s", p.remoteBaseURL, params.Encode())

	var payload catalogResponse
	if err := p.fetchJSON(ctx, "remote catalog", endpoint, &payload); err != nil {
		return nil, err
	}

	tracks := make([]music.Track, 0, len(payload.Results))
	for _, r := range payload.Results {
		tracks = append(tracks, music.Track{
			ID:          "catalog-" + r.ID,
			Title:       r.Name,
			Artist:      r.ArtistName,
			Duration:    time.Duration(r.Duration) * time.Second,
			ArtworkURL:  r.Image,
			PlayURL:     r.Audio,
			Source:      music.SourceRemoteCatalog,
			License:     r.LicenseURL,
			Attribution: fmt.Sprintf("%s via Jamendo", r.ArtistName),
		})
	}
	return tracks, nil
}

// searchArtistFeed downloads the artist feed and filters it by the query.
// The feed is small and static, so matching happens client-side.
func (p *Provider) searchArtistFeed(ctx context.Context, query string) ([]music.Track, error) {
	endpoint := p.artistBaseURL + "/tracks.json"

	var feed []artistTrack
	if err := p.fetchJSON(ctx, "artist feed", endpoint, &feed); err != nil {
		return nil, err
	}

	var tracks []music.Track
	for _, t := range feed {
		if !matchesQuery(t, query) {
			continue
		}
		tracks = append(tracks, music.Track{
			ID:          "artist-" + t.ID,
			Title:       t.Title,
			Artist:      t.Artist,
			Genre:       t.Genre,
			Duration:    time.Duration(t.Duration) * time.Second,
			ArtworkURL:  t.Artwork,
			PlayURL:     t.Audio,
			Source:      music.SourceRemoteArtist,
			License:     t.License,
			Attribution: t.Artist,
		})
	}
	return tracks, nil
}

// matchesQuery reports whether any query term appears in the track's title,
// artist, or genre.
func matchesQuery(t artistTrack, query string) bool {
	haystack := strings.ToLower(t.Title + " " + t.Artist + " " + t.Genre)
	for _, term := range strings.Fields(query) {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}
