package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defect-reporter/internal/common/errors"
	"defect-reporter/internal/common/logger"
	"defect-reporter/internal/fieldmap"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewStore(db)
	s.now = func() time.Time { return fixedNow }
	return s, mock
}

func sampleRecord() fieldmap.Record {
	return fieldmap.Record{
		fieldmap.UUIDKey: {Value: fieldmap.StringValue("u-1"), Valid: true},
		"summary":        {Value: fieldmap.StringValue("Crash"), Valid: true},
	}
}

func TestStore_Save(t *testing.T) {
	s, mock := newTestStore(t)
	rec := sampleRecord()
	raw, _ := json.Marshal(rec)

	mock.ExpectExec(regexp.QuoteMeta(upsertDraft)).
		WithArgs("u-1", raw, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Save(context.Background(), "u-1", rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveFailure(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta(upsertDraft)).WillReturnError(fmt.Errorf("connection reset"))

	err := s.Save(context.Background(), "u-1", sampleRecord())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDraftPersistence))
}

func TestStore_Load(t *testing.T) {
	s, mock := newTestStore(t)

	rows := sqlmock.NewRows([]string{"uuid", "record", "updated_at"}).
		AddRow("u-1", []byte(`{"summary":{"value":"Crash","valid":false}}`), fixedNow)
	mock.ExpectQuery(regexp.QuoteMeta(selectDraft)).WithArgs("u-1").WillReturnRows(rows)

	d, err := s.Load(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", d.UUID)
	assert.Equal(t, fixedNow, d.UpdatedAt)
	require.Contains(t, d.Record, "summary")
	assert.False(t, d.Record["summary"].Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LoadNotFound(t *testing.T) {
	s, mock := newTestStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectDraft)).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestEmitter_SavesOnlyIdentifiedRecords(t *testing.T) {
	s, mock := newTestStore(t)
	e := NewEmitter(s, logger.NewTestLogger(t))
	ctx := context.Background()

	// grouped record: no uuid, nothing written
	require.NoError(t, e.DefectChanged(ctx, fieldmap.Record{"summary": {Value: fieldmap.StringValue("x")}}))

	mock.ExpectExec(regexp.QuoteMeta(upsertDraft)).
		WithArgs("u-1", sqlmock.AnyArg(), fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, e.DefectChanged(ctx, sampleRecord()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_EnsureSchema(t *testing.T) {
	s, mock := newTestStore(t)
	mock.ExpectExec(regexp.QuoteMeta(createTable)).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
