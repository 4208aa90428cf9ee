package repositories

import (
	"database/sql"
)

// Repositories bundles the stores sharing one database handle.
type Repositories struct {
	Sessions *SessionRepository
	Tracks   *TrackCacheRepository
	Assets   *AssetRepository
}

// New wires every repository to the given database.
func New(db *sql.DB) *Repositories {
	return &Repositories{
		Sessions: NewSessionRepository(db),
		Tracks:   NewTrackCacheRepository(db),
		Assets:   NewAssetRepository(db),
	}
}
