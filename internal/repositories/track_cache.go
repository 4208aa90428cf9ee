package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/shared"
)

// TrackCacheRepository memoizes search results per normalized query.
//
// Each Put replaces the whole result set for a query, preserving the origin
// ordering via the position column. Duplicate tracks within one query are
// silently ignored (UNIQUE constraint violations).
type TrackCacheRepository struct {
	db *sql.DB
}

// NewTrackCacheRepository creates a new TrackCacheRepository with the given database connection
func NewTrackCacheRepository(db *sql.DB) *TrackCacheRepository {
	return &TrackCacheRepository{db: db}
}

// Put replaces the cached result set for a query.
func (r *TrackCacheRepository) Put(query string, tracks []music.Track) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM track_cache WHERE query = ?`, query); err != nil {
		return fmt.Errorf("failed to clear cached tracks: %w", err)
	}

	insert := `
		INSERT INTO track_cache (id, query, track_id, title, artist, genre, duration_secs, artwork_url, play_url, source, license, attribution, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	for i, track := range tracks {
		_, err := tx.Exec(insert,
			shared.GenerateID(),
			query,
			track.ID,
			track.Title,
			track.Artist,
			track.Genre,
			int64(track.Duration/time.Second),
			track.ArtworkURL,
			track.PlayURL,
			string(track.Source),
			track.License,
			track.Attribution,
			i,
			now,
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint") {
				continue
			}
			return fmt.Errorf("failed to cache track %s: %w", track.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit track cache: %w", err)
	}
	return nil
}

// Get returns the cached result set for a query in stored order.
// Wraps [shared.ErrNotFound] when the query has never been cached.
func (r *TrackCacheRepository) Get(query string) ([]music.Track, error) {
	rows, err := r.db.Query(`
		SELECT track_id, title, artist, genre, duration_secs, artwork_url, play_url, source, license, attribution
		FROM track_cache
		WHERE query = ?
		ORDER BY position ASC
	`, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query track cache: %w", err)
	}
	defer rows.Close()

	var tracks []music.Track
	for rows.Next() {
		var (
			track                   music.Track
			genre, artwork, license sql.NullString
			attribution, source     sql.NullString
			durationSecs            int64
		)
		err := rows.Scan(&track.ID, &track.Title, &track.Artist, &genre, &durationSecs, &artwork, &track.PlayURL, &source, &license, &attribution)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cached track: %w", err)
		}

		track.Genre = genre.String
		track.ArtworkURL = artwork.String
		track.License = license.String
		track.Attribution = attribution.String
		track.Source = music.Source(source.String)
		track.Duration = time.Duration(durationSecs) * time.Second
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no cached tracks for %q", shared.ErrNotFound, query)
	}
	return tracks, nil
}

// Purge deletes cached entries older than the given age and reports how many
// rows were removed.
func (r *TrackCacheRepository) Purge(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	result, err := r.db.Exec(`DELETE FROM track_cache WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge track cache: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}
