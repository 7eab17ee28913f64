package history

import (
	"context"
	"database/sql"
	"fmt"

	"ai-command-agent/internal/models"
)

// PostgresRepository persists command records in the command_history table.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, record models.CommandRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO command_history
			(id, command, intent, command_type, status, provider, confidence, processing_time_ms, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		record.ID,
		record.Command,
		record.Intent,
		string(record.CommandType),
		record.Status,
		record.Provider,
		record.Confidence,
		record.ProcessingTimeMs,
		record.UserID,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert command history: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindRecent(ctx context.Context, limit int) ([]models.CommandRecord, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, command, intent, command_type, status, provider, confidence, processing_time_ms, user_id, created_at
		FROM command_history
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query command history: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *PostgresRepository) FindByStatus(ctx context.Context, status string, limit int) ([]models.CommandRecord, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, command, intent, command_type, status, provider, confidence, processing_time_ms, user_id, created_at
		FROM command_history
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("query command history by status: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]models.CommandRecord, error) {
	records := make([]models.CommandRecord, 0)
	for rows.Next() {
		var rec models.CommandRecord
		var commandType string
		if err := rows.Scan(
			&rec.ID,
			&rec.Command,
			&rec.Intent,
			&commandType,
			&rec.Status,
			&rec.Provider,
			&rec.Confidence,
			&rec.ProcessingTimeMs,
			&rec.UserID,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan command history row: %w", err)
		}
		rec.CommandType = models.CommandType(commandType)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate command history rows: %w", err)
	}
	return records, nil
}
