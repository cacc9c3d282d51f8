package state

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS care_states (
	tenant_id     TEXT NOT NULL,
	entity_type   TEXT NOT NULL,
	entity_id     TEXT NOT NULL,
	current_state TEXT NOT NULL,
	updated_at    TEXT NOT NULL,
	PRIMARY KEY (tenant_id, entity_type, entity_id)
);

CREATE TABLE IF NOT EXISTS care_transitions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	tenant_id     TEXT NOT NULL,
	entity_type   TEXT NOT NULL,
	entity_id     TEXT NOT NULL,
	from_state    TEXT NOT NULL,
	to_state      TEXT NOT NULL,
	reason        TEXT NOT NULL,
	actor         TEXT NOT NULL,
	context_json  TEXT,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transitions_entity
ON care_transitions(tenant_id, entity_type, entity_id);

CREATE TABLE IF NOT EXISTS suggestions (
	id            TEXT PRIMARY KEY,
	tenant_id     TEXT NOT NULL,
	entity_type   TEXT NOT NULL,
	entity_id     TEXT NOT NULL,
	trigger_type  TEXT NOT NULL,
	body          TEXT NOT NULL,
	confidence    REAL NOT NULL,
	outcome       TEXT,
	dedup_day     TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	UNIQUE (tenant_id, entity_type, entity_id, trigger_type, dedup_day)
);
`

// #endregion schema

// InitialState is assigned implicitly on the first signal seen for an entity.
const InitialState = "unaware"

// #region store-struct
// Store manages care lifecycle records in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region get
// Get reads the care record for an entity. Returns ErrNotFound when absent.
func (s *Store) Get(ref EntityRef) (CareRecord, error) {
	var rec CareRecord
	var updatedStr string
	err := s.db.QueryRow(
		`SELECT current_state, updated_at FROM care_states
		 WHERE tenant_id = ? AND entity_type = ? AND entity_id = ?`,
		ref.TenantID, ref.EntityType, ref.EntityID,
	).Scan(&rec.CurrentState, &updatedStr)
	if err == sql.ErrNoRows {
		return CareRecord{}, ErrNotFound
	}
	if err != nil {
		return CareRecord{}, fmt.Errorf("get care state: %w", err)
	}
	rec.Ref = ref
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return rec, nil
}

// #endregion get

// #region get-or-create
// GetOrCreate reads the care record, creating it in the initial state on
// the first signal seen for the entity.
func (s *Store) GetOrCreate(ref EntityRef) (CareRecord, error) {
	if !ref.Complete() {
		return CareRecord{}, fmt.Errorf("incomplete entity ref %+v", ref)
	}
	rec, err := s.Get(ref)
	if err == nil {
		return rec, nil
	}
	if err != ErrNotFound {
		return CareRecord{}, err
	}

	now := time.Now().UTC()
	_, err = s.db.Exec(
		`INSERT INTO care_states (tenant_id, entity_type, entity_id, current_state, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(tenant_id, entity_type, entity_id) DO NOTHING`,
		ref.TenantID, ref.EntityType, ref.EntityID, InitialState, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return CareRecord{}, fmt.Errorf("create care state: %w", err)
	}
	// Re-read: a concurrent creator may have won the insert race.
	return s.Get(ref)
}

// #endregion get-or-create

// #region append-transition
// AppendTransition inserts a history row and moves the state pointer in one
// transaction. The pointer update is guarded by expectedFrom; if another
// writer moved the state first, the transaction aborts with ErrStateConflict.
func (s *Store) AppendTransition(ref EntityRef, entry TransitionEntry, expectedFrom string) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE care_states SET current_state = ?, updated_at = ?
		 WHERE tenant_id = ? AND entity_type = ? AND entity_id = ? AND current_state = ?`,
		entry.ToState, entry.CreatedAt.Format(time.RFC3339Nano),
		ref.TenantID, ref.EntityType, ref.EntityID, expectedFrom,
	)
	if err != nil {
		return fmt.Errorf("move state pointer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStateConflict
	}

	_, err = tx.Exec(
		`INSERT INTO care_transitions (tenant_id, entity_type, entity_id, from_state, to_state, reason, actor, context_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ref.TenantID, ref.EntityType, ref.EntityID,
		entry.FromState, entry.ToState, entry.Reason, entry.Actor,
		nullIfEmpty(entry.ContextJSON), entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}

	return tx.Commit()
}

// #endregion append-transition

// #region history
// History returns the ordered append-only transition log for an entity.
func (s *Store) History(ref EntityRef) ([]TransitionEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, from_state, to_state, reason, actor, context_json, created_at
		 FROM care_transitions
		 WHERE tenant_id = ? AND entity_type = ? AND entity_id = ?
		 ORDER BY id ASC`,
		ref.TenantID, ref.EntityType, ref.EntityID,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []TransitionEntry
	for rows.Next() {
		var e TransitionEntry
		var contextJSON sql.NullString
		var createdStr string
		if err := rows.Scan(&e.ID, &e.FromState, &e.ToState, &e.Reason, &e.Actor, &contextJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		if contextJSON.Valid {
			e.ContextJSON = contextJSON.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion history

// #region list-states
// ListStates returns the most recently updated care records.
func (s *Store) ListStates(limit int) ([]CareRecord, error) {
	rows, err := s.db.Query(
		`SELECT tenant_id, entity_type, entity_id, current_state, updated_at
		 FROM care_states ORDER BY updated_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	defer rows.Close()

	var records []CareRecord
	for rows.Next() {
		var rec CareRecord
		var updatedStr string
		if err := rows.Scan(&rec.Ref.TenantID, &rec.Ref.EntityType, &rec.Ref.EntityID, &rec.CurrentState, &updatedStr); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-states

// #region insert-suggestion
// InsertSuggestion persists a suggestion row. The unique constraint on
// (entity, trigger_type, dedup_day) surfaces as ErrDuplicateSuggestion.
func (s *Store) InsertSuggestion(sug Suggestion) (string, error) {
	if sug.ID == "" {
		sug.ID = uuid.New().String()
	}
	if sug.CreatedAt.IsZero() {
		sug.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO suggestions (id, tenant_id, entity_type, entity_id, trigger_type, body, confidence, outcome, dedup_day, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sug.ID, sug.Ref.TenantID, sug.Ref.EntityType, sug.Ref.EntityID,
		sug.TriggerType, sug.Body, sug.Confidence, nullIfEmpty(sug.Outcome),
		sug.CreatedAt.Format("2006-01-02"), sug.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", ErrDuplicateSuggestion
		}
		return "", fmt.Errorf("insert suggestion: %w", err)
	}
	return sug.ID, nil
}

// #endregion insert-suggestion

// #region latest-suggestion
// LatestSuggestionAt returns when the most recent suggestion for the entity
// and trigger type was created. ok is false when none exists.
func (s *Store) LatestSuggestionAt(ref EntityRef, triggerType string) (time.Time, bool, error) {
	var createdStr string
	err := s.db.QueryRow(
		`SELECT created_at FROM suggestions
		 WHERE tenant_id = ? AND entity_type = ? AND entity_id = ? AND trigger_type = ?
		 ORDER BY created_at DESC LIMIT 1`,
		ref.TenantID, ref.EntityType, ref.EntityID, triggerType,
	).Scan(&createdStr)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest suggestion: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse created_at: %w", err)
	}
	return t, true, nil
}

// #endregion latest-suggestion

// #region set-outcome
// SetSuggestionOutcome decorates a suggestion row with its terminal outcome.
func (s *Store) SetSuggestionOutcome(id, outcome string) error {
	_, err := s.db.Exec(`UPDATE suggestions SET outcome = ? WHERE id = ?`, outcome, id)
	if err != nil {
		return fmt.Errorf("set outcome: %w", err)
	}
	return nil
}

// #endregion set-outcome

// #region list-suggestions
// ListSuggestions returns the most recent suggestion rows.
func (s *Store) ListSuggestions(limit int) ([]Suggestion, error) {
	rows, err := s.db.Query(
		`SELECT id, tenant_id, entity_type, entity_id, trigger_type, body, confidence, outcome, created_at
		 FROM suggestions ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	var sugs []Suggestion
	for rows.Next() {
		var sug Suggestion
		var outcome sql.NullString
		var createdStr string
		if err := rows.Scan(&sug.ID, &sug.Ref.TenantID, &sug.Ref.EntityType, &sug.Ref.EntityID,
			&sug.TriggerType, &sug.Body, &sug.Confidence, &outcome, &createdStr); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		if outcome.Valid {
			sug.Outcome = outcome.String
		}
		sug.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		sugs = append(sugs, sug)
	}
	return sugs, rows.Err()
}

// #endregion list-suggestions

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
