// Package repositories implements SQLite persistence for session state,
// search memoization, and offline assets.
//
// Key Implementations:
//   - [SessionRepository] : durable key/value entries consumed by the auth layer, with single-use reads for the CSRF state and PKCE verifier
//   - [TrackCacheRepository] : search results memoized per normalized query and replaced as a set
//   - [AssetRepository] : offline copies of fetched assets keyed by cache version and URL
//
// All repositories share one [sql.DB] opened by shared.NewDatabase and
// migrated by shared.RunMigrations.
package repositories
