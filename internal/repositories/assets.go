package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/domo/internal/shared"
)

// Asset is an offline copy of a fetched resource, keyed by cache version
// and URL.
type Asset struct {
	Version     string
	URL         string
	ContentType string
	Status      int
	Body        []byte
	FetchedAt   time.Time
}

// AssetRepository stores asset bodies for the offline cache layer.
type AssetRepository struct {
	db *sql.DB
}

// NewAssetRepository creates a new AssetRepository with the given database connection
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// Put stores or replaces the asset for its (version, url) key.
func (r *AssetRepository) Put(asset Asset) error {
	query := `
		INSERT INTO assets (version, url, content_type, status, body, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(version, url) DO UPDATE SET
			content_type = excluded.content_type,
			status = excluded.status,
			body = excluded.body,
			fetched_at = excluded.fetched_at
	`

	fetchedAt := asset.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	if _, err := r.db.Exec(query, asset.Version, asset.URL, asset.ContentType, asset.Status, asset.Body, fetchedAt); err != nil {
		return fmt.Errorf("failed to store asset %s: %w", asset.URL, err)
	}
	return nil
}

// Get loads the asset stored for (version, url).
// Wraps [shared.ErrNotFound] on a cache miss.
func (r *AssetRepository) Get(version, url string) (*Asset, error) {
	query := `
		SELECT version, url, content_type, status, body, fetched_at
		FROM assets
		WHERE version = ? AND url = ?
	`

	var asset Asset
	err := r.db.QueryRow(query, version, url).Scan(
		&asset.Version,
		&asset.URL,
		&asset.ContentType,
		&asset.Status,
		&asset.Body,
		&asset.FetchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: asset %s", shared.ErrNotFound, url)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read asset %s: %w", url, err)
	}

	return &asset, nil
}

// PurgeOtherVersions deletes every asset stored under a different cache
// version and reports how many rows were removed.
func (r *AssetRepository) PurgeOtherVersions(keep string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM assets WHERE version != ?`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to purge stale assets: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// Count reports how many assets are stored under a version.
func (r *AssetRepository) Count(version string) (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM assets WHERE version = ?`, version).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return count, nil
}
