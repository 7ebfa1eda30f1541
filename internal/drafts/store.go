// Package drafts persists simplified records so an issue being composed
// survives a restart of the mapper.
package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"defect-reporter/internal/common/errors"
	"defect-reporter/internal/common/logger"
	"defect-reporter/internal/fieldmap"
)

var ErrDraftNotFound = stderrors.New("draft not found")

const (
	createTable = `CREATE TABLE IF NOT EXISTS jira_issue_drafts (
	uuid       TEXT PRIMARY KEY,
	record     JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

	upsertDraft = `INSERT INTO jira_issue_drafts (uuid, record, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (uuid) DO UPDATE SET record = EXCLUDED.record, updated_at = EXCLUDED.updated_at`

	selectDraft = `SELECT uuid, record, updated_at FROM jira_issue_drafts WHERE uuid = $1`
)

// Draft is the latest simplified record for one defect.
type Draft struct {
	UUID      string
	Record    fieldmap.Record
	UpdatedAt time.Time
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema creates the drafts table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return errors.NewDraftPersistenceError(err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, uuid string, record fieldmap.Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return errors.NewDraftPersistenceError(err)
	}
	if _, err := s.db.ExecContext(ctx, upsertDraft, uuid, raw, s.now()); err != nil {
		return errors.NewDraftPersistenceError(err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, uuid string) (*Draft, error) {
	var (
		d   Draft
		raw []byte
	)
	err := s.db.QueryRowContext(ctx, selectDraft, uuid).Scan(&d.UUID, &raw, &d.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, uuid)
	}
	if err != nil {
		return nil, errors.NewDraftPersistenceError(err)
	}
	if err := json.Unmarshal(raw, &d.Record); err != nil {
		return nil, errors.NewDraftPersistenceError(fmt.Errorf("decode record: %w", err))
	}
	return &d, nil
}

// Emitter saves every changed record that carries a universal_unique_identifier.
// Grouped records have none and are skipped. Other signals are ignored.
type Emitter struct {
	store  *Store
	logger logger.Logger
}

func NewEmitter(store *Store, log logger.Logger) *Emitter {
	return &Emitter{store: store, logger: log}
}

func (e *Emitter) DefectChanged(ctx context.Context, record fieldmap.Record) error {
	f, ok := record[fieldmap.UUIDKey]
	if !ok || f == nil {
		return nil
	}
	uuid, ok := f.Value.Str()
	if !ok || uuid == "" {
		return nil
	}
	if err := e.store.Save(ctx, uuid, record); err != nil {
		return err
	}
	e.logger.Debug("draft saved", map[string]interface{}{"uuid": uuid})
	return nil
}

func (e *Emitter) MappingsUpdated(context.Context, []fieldmap.Descriptor) error { return nil }

func (e *Emitter) ValidationFailed(context.Context, fieldmap.Mismatch) error { return nil }
