// Package store manages all SQLite persistence for critterdex.
//
// The store holds the durable projection of the progression engine:
// mission records, the day markers, tool inventory counts, gallery tallies,
// owned unlocks and the local wallet. Every logical engine operation maps
// to exactly one transaction (Update), so a crash never leaves half of a
// claim or half of a daily reset on disk.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/daviddao/critterdex/pkg/model"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a keyed record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store manages all SQLite operations with WAL mode.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the SQLite database and initializes the schema.
func New(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewWithDB wraps an already-open database without running migrations.
// Used with sqlmock and by callers that manage the schema themselves.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS missions (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		progress    INTEGER NOT NULL DEFAULT 0,
		received    INTEGER NOT NULL DEFAULT 0,
		stage_index INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_missions_kind ON missions(kind);

	CREATE TABLE IF NOT EXISTS meta (
		id             INTEGER PRIMARY KEY CHECK (id = 1),
		last_reset_day TEXT NOT NULL DEFAULT '',
		last_login_day TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS tool_counts (
		tool  TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS gallery_tallies (
		page_id TEXT PRIMARY KEY,
		tally   INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS unlocks (
		kind       TEXT NOT NULL,
		id         TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (kind, id)
	);

	CREATE TABLE IF NOT EXISTS wallet (
		currency TEXT PRIMARY KEY,
		balance  INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Update runs fn inside a read-write transaction. The transaction commits
// when fn returns nil and rolls back otherwise. Transient SQLite errors
// retry the whole transaction.
func (s *Store) Update(ctx context.Context, fn func(Tx) error) error {
	return retryOnContention(ctx, func() error {
		return s.inTx(ctx, false, fn)
	})
}

// View runs fn inside a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(Tx) error) error {
	return retryOnContention(ctx, func() error {
		return s.inTx(ctx, true, fn)
	})
}

func (s *Store) inTx(ctx context.Context, readOnly bool, fn func(Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := fn(&tx{tx: sqlTx, now: s.now}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Snapshot reads the full durable state in one transaction.
func (s *Store) Snapshot(ctx context.Context) (model.Snapshot, error) {
	var snap model.Snapshot
	err := s.View(ctx, func(t Tx) error {
		var err error
		if snap.Missions, err = t.ListMissions(); err != nil {
			return err
		}
		if snap.Meta, err = t.GetMeta(); err != nil {
			return err
		}
		if snap.Tools, err = t.ListToolCounts(); err != nil {
			return err
		}
		if snap.Tallies, err = t.ListTallies(); err != nil {
			return err
		}
		snap.Unlocks, err = t.ListUnlocks()
		return err
	})
	return snap, err
}

// UnlockImage inserts an owned record for a gallery image unless one
// already exists. Reports whether a record was inserted.
func (s *Store) UnlockImage(ctx context.Context, id string) (bool, error) {
	var inserted bool
	err := s.Update(ctx, func(t Tx) error {
		var err error
		inserted, err = t.InsertUnlock(model.UnlockRecord{Kind: model.UnlockImage, ID: id})
		return err
	})
	return inserted, err
}

// ---------------------------------------------------------------------------
// Transaction
// ---------------------------------------------------------------------------

type tx struct {
	tx  *sql.Tx
	now func() time.Time
}

// --- Missions ---

func (t *tx) ListMissions() ([]model.MissionRecord, error) {
	rows, err := t.tx.Query(
		`SELECT id, kind, progress, received, stage_index FROM missions ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []model.MissionRecord
	for rows.Next() {
		var r model.MissionRecord
		var kind string
		var received int
		if err := rows.Scan(&r.ID, &kind, &r.Progress, &received, &r.StageIndex); err != nil {
			return nil, err
		}
		r.Kind = model.Kind(kind)
		r.Received = received != 0
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (t *tx) GetMission(id string) (model.MissionRecord, error) {
	var r model.MissionRecord
	var kind string
	var received int
	err := t.tx.QueryRow(
		`SELECT id, kind, progress, received, stage_index FROM missions WHERE id = ?`, id,
	).Scan(&r.ID, &kind, &r.Progress, &received, &r.StageIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MissionRecord{}, ErrNotFound
	}
	if err != nil {
		return model.MissionRecord{}, err
	}
	r.Kind = model.Kind(kind)
	r.Received = received != 0
	return r, nil
}

func (t *tx) InsertMission(r model.MissionRecord) error {
	_, err := t.tx.Exec(
		`INSERT INTO missions (id, kind, progress, received, stage_index) VALUES (?, ?, ?, ?, ?)`,
		r.ID, string(r.Kind), r.Progress, boolToInt(r.Received), r.StageIndex,
	)
	if err != nil {
		return fmt.Errorf("insert mission %s: %w", r.ID, err)
	}
	return nil
}

func (t *tx) UpdateMission(r model.MissionRecord) error {
	_, err := t.tx.Exec(
		`UPDATE missions SET kind = ?, progress = ?, received = ?, stage_index = ? WHERE id = ?`,
		string(r.Kind), r.Progress, boolToInt(r.Received), r.StageIndex, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update mission %s: %w", r.ID, err)
	}
	return nil
}

func (t *tx) DeleteMissionsByKind(kind model.Kind) (int64, error) {
	res, err := t.tx.Exec(`DELETE FROM missions WHERE kind = ?`, string(kind))
	if err != nil {
		return 0, fmt.Errorf("delete %s missions: %w", kind, err)
	}
	return res.RowsAffected()
}

// --- Meta ---

func (t *tx) GetMeta() (model.MetaRecord, error) {
	var m model.MetaRecord
	err := t.tx.QueryRow(
		`SELECT last_reset_day, last_login_day FROM meta WHERE id = 1`,
	).Scan(&m.LastResetDay, &m.LastLoginDay)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MetaRecord{}, nil
	}
	return m, err
}

func (t *tx) PutMeta(m model.MetaRecord) error {
	_, err := t.tx.Exec(
		`INSERT INTO meta (id, last_reset_day, last_login_day) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   last_reset_day = excluded.last_reset_day,
		   last_login_day = excluded.last_login_day`,
		m.LastResetDay, m.LastLoginDay,
	)
	return err
}

// --- Tool counts ---

func (t *tx) ListToolCounts() ([]model.ToolCountRecord, error) {
	rows, err := t.tx.Query(`SELECT tool, count FROM tool_counts ORDER BY tool`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []model.ToolCountRecord
	for rows.Next() {
		var r model.ToolCountRecord
		if err := rows.Scan(&r.Tool, &r.Count); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (t *tx) InsertToolCount(r model.ToolCountRecord) error {
	_, err := t.tx.Exec(`INSERT INTO tool_counts (tool, count) VALUES (?, ?)`, r.Tool, r.Count)
	return err
}

func (t *tx) UpdateToolCount(r model.ToolCountRecord) error {
	_, err := t.tx.Exec(`UPDATE tool_counts SET count = ? WHERE tool = ?`, r.Count, r.Tool)
	return err
}

func (t *tx) DeleteToolCount(tool string) error {
	_, err := t.tx.Exec(`DELETE FROM tool_counts WHERE tool = ?`, tool)
	return err
}

// --- Gallery tallies ---

func (t *tx) ListTallies() ([]model.GalleryTallyRecord, error) {
	rows, err := t.tx.Query(`SELECT page_id, tally FROM gallery_tallies ORDER BY page_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []model.GalleryTallyRecord
	for rows.Next() {
		var r model.GalleryTallyRecord
		if err := rows.Scan(&r.PageID, &r.Tally); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (t *tx) PutTally(r model.GalleryTallyRecord) error {
	_, err := t.tx.Exec(
		`INSERT INTO gallery_tallies (page_id, tally) VALUES (?, ?)
		 ON CONFLICT(page_id) DO UPDATE SET tally = excluded.tally`,
		r.PageID, r.Tally,
	)
	return err
}

// --- Unlocks ---

func (t *tx) ListUnlocks() ([]model.UnlockRecord, error) {
	rows, err := t.tx.Query(`SELECT kind, id FROM unlocks ORDER BY kind, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []model.UnlockRecord
	for rows.Next() {
		var r model.UnlockRecord
		var kind string
		if err := rows.Scan(&kind, &r.ID); err != nil {
			return nil, err
		}
		r.Kind = model.UnlockKind(kind)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (t *tx) InsertUnlock(r model.UnlockRecord) (bool, error) {
	res, err := t.tx.Exec(
		`INSERT INTO unlocks (kind, id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(kind, id) DO NOTHING`,
		string(r.Kind), r.ID, t.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("insert unlock %s/%s: %w", r.Kind, r.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- Wallet ---

func (t *tx) AddBalance(currency model.Currency, amount int) error {
	_, err := t.tx.Exec(
		`INSERT INTO wallet (currency, balance) VALUES (?, ?)
		 ON CONFLICT(currency) DO UPDATE SET balance = balance + excluded.balance`,
		string(currency), amount,
	)
	return err
}

func (t *tx) ListBalances() ([]model.WalletRecord, error) {
	rows, err := t.tx.Query(`SELECT currency, balance FROM wallet ORDER BY currency`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []model.WalletRecord
	for rows.Next() {
		var r model.WalletRecord
		var cur string
		if err := rows.Scan(&cur, &r.Balance); err != nil {
			return nil, err
		}
		r.Currency = model.Currency(cur)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
