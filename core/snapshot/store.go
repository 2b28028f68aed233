package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
)

// Store persists snapshots in SQLite and ENFORCES write-once semantics:
// a stored snapshot can never be overwritten, and superseding a snapshot
// is guarded by optimistic concurrency. Pass ":memory:" for tests.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the snapshot database and ensures the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Storage("open snapshot db", err)
	}

	// WAL mode for concurrent readers.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Storage("set wal mode", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS pricing_snapshots (
		id TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		profile_id TEXT NOT NULL,
		catalog_version TEXT NOT NULL,
		template_version TEXT NOT NULL,
		supersedes TEXT,
		superseded_by TEXT,
		revision TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Storage("create snapshot table", err)
	}
	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_snapshots_profile ON pricing_snapshots(tenant_id, profile_id)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_supersedes ON pricing_snapshots(supersedes)`,
	} {
		if _, err := db.Exec(idx); err != nil {
			db.Close()
			return nil, errors.Storage("create snapshot index", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a snapshot atomically: the full record plus the supersession
// link commit together or not at all. Saving an existing ID fails; a
// supersession race fails with STALE_SUPERSESSION and the caller re-reads
// and retries. Never silently overwrites.
func (s *Store) Save(ctx context.Context, snap *PricingSnapshot) error {
	if snap == nil || !snap.Sealed() {
		return errors.Input("only sealed snapshots can be persisted")
	}
	if err := snap.Verify(); err != nil {
		return err
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return errors.Storage("serialize snapshot", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("begin", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pricing_snapshots WHERE id = ?", string(snap.ID),
	).Scan(&exists); err != nil {
		return errors.Storage("check existing snapshot", err)
	}
	if exists > 0 {
		// Same ID means same content; re-saving identical data is a no-op
		// request, not a correction. Refuse rather than touch the record.
		return errors.Newf(errors.TypeStorage, "snapshot %s already exists: snapshots are write-once", snap.ID)
	}

	if snap.Supersedes != "" {
		res, err := tx.ExecContext(ctx,
			`UPDATE pricing_snapshots SET superseded_by = ?, revision = ?
			 WHERE id = ? AND superseded_by IS NULL`,
			string(snap.ID), uuid.NewString(), string(snap.Supersedes),
		)
		if err != nil {
			return errors.Storage("mark superseded", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Storage("mark superseded", err)
		}
		if n == 0 {
			var prior int
			if err := tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM pricing_snapshots WHERE id = ?", string(snap.Supersedes),
			).Scan(&prior); err != nil {
				return errors.Storage("check prior snapshot", err)
			}
			if prior == 0 {
				return errors.NotFound("snapshot to supersede", string(snap.Supersedes))
			}
			return errors.StaleSupersession(string(snap.Supersedes))
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO pricing_snapshots
		(id, content_hash, tenant_id, profile_id, catalog_version, template_version,
		 supersedes, superseded_by, revision, payload, created_at)
		VALUES (?,?,?,?,?,?,?,NULL,?,?,?)`,
		string(snap.ID), snap.ContentHash, snap.TenantID, snap.ProfileID,
		snap.CatalogVersion, snap.TemplateVersion,
		nullable(string(snap.Supersedes)), uuid.NewString(), string(payload),
		snap.CreatedAt.Format(time.RFC3339),
	); err != nil {
		return errors.Storage("insert snapshot", err)
	}

	return tx.Commit()
}

// Get retrieves a snapshot by ID and verifies its content hash.
func (s *Store) Get(ctx context.Context, id ID) (*PricingSnapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM pricing_snapshots WHERE id = ?", string(id),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("snapshot", string(id))
	}
	if err != nil {
		return nil, errors.Storage("read snapshot", err)
	}
	return decode(payload)
}

// Latest returns the newest non-superseded snapshot for a profile.
func (s *Store) Latest(ctx context.Context, tenantID, profileID string) (*PricingSnapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM pricing_snapshots
		 WHERE tenant_id = ? AND profile_id = ? AND superseded_by IS NULL
		 ORDER BY created_at DESC LIMIT 1`,
		tenantID, profileID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("snapshot for profile", profileID)
	}
	if err != nil {
		return nil, errors.Storage("read latest snapshot", err)
	}
	return decode(payload)
}

// History returns every snapshot for a profile, oldest first, including
// superseded records. Audits need the full chain.
func (s *Store) History(ctx context.Context, tenantID, profileID string) ([]*PricingSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM pricing_snapshots
		 WHERE tenant_id = ? AND profile_id = ?
		 ORDER BY created_at ASC`,
		tenantID, profileID,
	)
	if err != nil {
		return nil, errors.Storage("read snapshot history", err)
	}
	defer rows.Close()

	var out []*PricingSnapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.Storage("scan snapshot", err)
		}
		snap, err := decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func decode(payload string) (*PricingSnapshot, error) {
	var snap PricingSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, errors.Storage("decode snapshot", err)
	}
	snap.sealed = true
	if err := snap.Verify(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
