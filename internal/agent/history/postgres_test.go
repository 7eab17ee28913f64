package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-command-agent/internal/models"
)

var historyColumns = []string{
	"id", "command", "intent", "command_type", "status", "provider",
	"confidence", "processing_time_ms", "user_id", "created_at",
}

func TestPostgresRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := record("cmd_1", models.StatusCompleted)
	rec.ProcessingTimeMs = 120
	rec.UserID = "user-1"

	mock.ExpectExec("INSERT INTO command_history").
		WithArgs(rec.ID, rec.Command, rec.Intent, string(rec.CommandType), rec.Status,
			rec.Provider, rec.Confidence, rec.ProcessingTimeMs, rec.UserID, rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewPostgresRepository(db)
	require.NoError(t, repo.Save(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO command_history").
		WillReturnError(errors.New("connection refused"))

	repo := NewPostgresRepository(db)
	err = repo.Save(context.Background(), record("cmd_1", models.StatusCompleted))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert command history")
}

func TestPostgresRepository_FindRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(historyColumns).
		AddRow("cmd_2", "Pause the queue", "pause_queue", "queue_modification",
			models.StatusCompleted, "google", 0.9, int64(80), "", now).
		AddRow("cmd_1", "Enable starvation mode", "enable_starvation_mode", "system_configuration",
			models.StatusCompleted, "openai", 0.95, int64(120), "user-1", now.Add(-time.Minute))

	mock.ExpectQuery(`(?s)SELECT .+ FROM command_history\s+ORDER BY created_at DESC`).
		WithArgs(2).
		WillReturnRows(rows)

	repo := NewPostgresRepository(db)
	records, err := repo.FindRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "cmd_2", records[0].ID)
	assert.Equal(t, models.CommandTypeQueueModification, records[0].CommandType)
	assert.Equal(t, "user-1", records[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(historyColumns).
		AddRow("cmd_bad", "gibberish", "unknown", "unknown",
			models.StatusError, "none", 0.0, int64(15), "", time.Now().UTC())

	mock.ExpectQuery(`(?s)SELECT .+ FROM command_history\s+WHERE status = .+ORDER BY created_at DESC`).
		WithArgs(models.StatusError, 10).
		WillReturnRows(rows)

	repo := NewPostgresRepository(db)
	records, err := repo.FindByStatus(context.Background(), models.StatusError, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "cmd_bad", records[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindRecentDefaultLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT .+ FROM command_history\s+ORDER BY created_at DESC`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows(historyColumns))

	repo := NewPostgresRepository(db)
	records, err := repo.FindRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}
