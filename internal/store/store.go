package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pulseboard/pulseboard/internal/model"
)

// ErrNotFound is returned when a row lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Store wraps the uptime database and provides the query surface used by the
// scheduler, retention GC and API. All writes are serialized by an internal
// mutex and run inside a transaction that commits on success and rolls back
// on error.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens the database addressed by databaseURL, applies migrations, and
// returns a ready Store.
func Open(databaseURL string) (*Store, error) {
	db, err := OpenDB(databaseURL)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a write transaction. Commit on clean return,
// rollback on error.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// --- targets ---

const targetColumns = "id, name, url, enabled, interval_s, timeout_s, verify_tls, created_at_ns, updated_at_ns"

// CreateTarget inserts a new target.
func (s *Store) CreateTarget(t *model.Target) error {
	return s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO targets (`+targetColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, t.ID, t.Name, t.URL, boolToInt(t.Enabled), t.IntervalS, t.TimeoutS,
			boolToInt(t.VerifyTLS), t.CreatedAt.UnixNano(), t.UpdatedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("insert target: %w", err)
		}
		return nil
	})
}

// GetTarget returns the target with the given ID, or ErrNotFound.
func (s *Store) GetTarget(id string) (*model.Target, error) {
	row := s.db.QueryRow("SELECT "+targetColumns+" FROM targets WHERE id = ?", id)
	t, err := scanTarget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get target: %w", err)
	}
	return t, nil
}

// ListTargets returns all targets ordered by creation time.
func (s *Store) ListTargets() ([]model.Target, error) {
	rows, err := s.db.Query("SELECT " + targetColumns + " FROM targets ORDER BY created_at_ns")
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	defer rows.Close()

	var result []model.Target
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

// UpdateTarget overwrites the stored row for t.ID, or returns ErrNotFound.
func (s *Store) UpdateTarget(t *model.Target) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE targets
			SET name = ?, url = ?, enabled = ?, interval_s = ?, timeout_s = ?,
			    verify_tls = ?, updated_at_ns = ?
			WHERE id = ?
		`, t.Name, t.URL, boolToInt(t.Enabled), t.IntervalS, t.TimeoutS,
			boolToInt(t.VerifyTLS), t.UpdatedAt.UnixNano(), t.ID)
		if err != nil {
			return fmt.Errorf("update target: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update target rows: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteTarget removes a target and, via ON DELETE CASCADE, all its checks.
func (s *Store) DeleteTarget(id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM targets WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete target: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete target rows: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// --- checks ---

const checkColumns = "id, target_id, checked_at_ns, up, latency_ms, http_status, error_type, error_message"

// InsertCheck appends a check row. Checks are never mutated afterwards.
func (s *Store) InsertCheck(c *model.Check) error {
	return s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO checks (`+checkColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, c.TargetID, c.CheckedAt.UnixNano(), boolToInt(c.Up),
			c.LatencyMS, c.HTTPStatus, string(c.ErrorType), c.ErrorMessage)
		if err != nil {
			return fmt.Errorf("insert check: %w", err)
		}
		return nil
	})
}

// ListEnabledTargetsWithLastCheck returns every enabled target paired with
// the time of its most recent check (nil when it has never been checked).
// Single grouped query; the due decision stays with the caller.
func (s *Store) ListEnabledTargetsWithLastCheck() ([]model.TargetLastCheck, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.url, t.enabled, t.interval_s, t.timeout_s,
		       t.verify_tls, t.created_at_ns, t.updated_at_ns,
		       MAX(c.checked_at_ns)
		FROM targets t
		LEFT JOIN checks c ON c.target_id = t.id
		WHERE t.enabled = 1
		GROUP BY t.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list enabled targets: %w", err)
	}
	defer rows.Close()

	var result []model.TargetLastCheck
	for rows.Next() {
		var (
			t         model.Target
			enabled   int
			verifyTLS int
			created   int64
			updated   int64
			lastNs    sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.URL, &enabled, &t.IntervalS,
			&t.TimeoutS, &verifyTLS, &created, &updated, &lastNs); err != nil {
			return nil, fmt.Errorf("scan enabled target: %w", err)
		}
		t.Enabled = enabled != 0
		t.VerifyTLS = verifyTLS != 0
		t.CreatedAt = time.Unix(0, created).UTC()
		t.UpdatedAt = time.Unix(0, updated).UTC()

		tlc := model.TargetLastCheck{Target: t}
		if lastNs.Valid {
			ts := time.Unix(0, lastNs.Int64).UTC()
			tlc.LastChecked = &ts
		}
		result = append(result, tlc)
	}
	return result, rows.Err()
}

// LatestChecksPerTarget returns each target's most recent check keyed by
// target ID. Targets with no checks are absent from the map.
func (s *Store) LatestChecksPerTarget() (map[string]model.Check, error) {
	rows, err := s.db.Query(`
		SELECT ` + prefixedCheckColumns("c") + `
		FROM checks c
		JOIN (
			SELECT target_id, MAX(checked_at_ns) AS last_checked_ns
			FROM checks
			GROUP BY target_id
		) latest ON latest.target_id = c.target_id
		       AND latest.last_checked_ns = c.checked_at_ns
	`)
	if err != nil {
		return nil, fmt.Errorf("latest checks: %w", err)
	}
	defer rows.Close()

	result := make(map[string]model.Check)
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan latest check: %w", err)
		}
		result[c.TargetID] = *c
	}
	return result, rows.Err()
}

// HistoryFilter narrows a History query. TargetID and Up are optional.
type HistoryFilter struct {
	TargetID string
	Since    time.Time
	Up       *bool
}

// History returns checks matching the filter, newest first.
func (s *Store) History(f HistoryFilter) ([]model.Check, error) {
	query := "SELECT " + checkColumns + " FROM checks WHERE checked_at_ns >= ?"
	args := []any{f.Since.UnixNano()}

	if f.TargetID != "" {
		query += " AND target_id = ?"
		args = append(args, f.TargetID)
	}
	if f.Up != nil {
		query += " AND up = ?"
		args = append(args, boolToInt(*f.Up))
	}
	query += " ORDER BY checked_at_ns DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var result []model.Check
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history check: %w", err)
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

// ChecksForTargetSince returns a target's checks at or after since, oldest
// first. Used for daily uptime bucketing.
func (s *Store) ChecksForTargetSince(targetID string, since time.Time) ([]model.Check, error) {
	rows, err := s.db.Query(`
		SELECT `+checkColumns+`
		FROM checks
		WHERE target_id = ? AND checked_at_ns >= ?
		ORDER BY checked_at_ns ASC
	`, targetID, since.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("checks for target: %w", err)
	}
	defer rows.Close()

	var result []model.Check
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

// AggregateUptime returns the total and up check counts for a target since
// the given time.
func (s *Store) AggregateUptime(targetID string, since time.Time) (total, up int, err error) {
	row := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(up), 0)
		FROM checks
		WHERE target_id = ? AND checked_at_ns >= ?
	`, targetID, since.UnixNano())
	if err := row.Scan(&total, &up); err != nil {
		return 0, 0, fmt.Errorf("aggregate uptime: %w", err)
	}
	return total, up, nil
}

// DeleteChecksBefore removes all checks older than cutoff and returns the
// number of rows deleted.
func (s *Store) DeleteChecksBefore(cutoff time.Time) (int64, error) {
	var deleted int64
	err := s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM checks WHERE checked_at_ns < ?", cutoff.UnixNano())
		if err != nil {
			return fmt.Errorf("delete checks: %w", err)
		}
		deleted, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete checks rows: %w", err)
		}
		return nil
	})
	return deleted, err
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTarget(row rowScanner) (*model.Target, error) {
	var (
		t         model.Target
		enabled   int
		verifyTLS int
		created   int64
		updated   int64
	)
	if err := row.Scan(&t.ID, &t.Name, &t.URL, &enabled, &t.IntervalS,
		&t.TimeoutS, &verifyTLS, &created, &updated); err != nil {
		return nil, err
	}
	t.Enabled = enabled != 0
	t.VerifyTLS = verifyTLS != 0
	t.CreatedAt = time.Unix(0, created).UTC()
	t.UpdatedAt = time.Unix(0, updated).UTC()
	return &t, nil
}

func scanCheck(row rowScanner) (*model.Check, error) {
	var (
		c         model.Check
		checkedNs int64
		up        int
		latency   sql.NullInt64
		status    sql.NullInt64
		errType   string
		errMsg    sql.NullString
	)
	if err := row.Scan(&c.ID, &c.TargetID, &checkedNs, &up, &latency, &status,
		&errType, &errMsg); err != nil {
		return nil, err
	}
	c.CheckedAt = time.Unix(0, checkedNs).UTC()
	c.Up = up != 0
	if latency.Valid {
		v := latency.Int64
		c.LatencyMS = &v
	}
	if status.Valid {
		v := int(status.Int64)
		c.HTTPStatus = &v
	}
	c.ErrorType = model.ErrorKind(errType)
	if errMsg.Valid {
		v := errMsg.String
		c.ErrorMessage = &v
	}
	return &c, nil
}

func prefixedCheckColumns(alias string) string {
	return alias + ".id, " + alias + ".target_id, " + alias + ".checked_at_ns, " +
		alias + ".up, " + alias + ".latency_ms, " + alias + ".http_status, " +
		alias + ".error_type, " + alias + ".error_message"
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
