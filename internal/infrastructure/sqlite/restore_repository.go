package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mschot/dbcalm-open-backend/internal/core/domain"
	"github.com/mschot/dbcalm-open-backend/internal/core/repository"
)

type restoreRepository struct {
	db *DB
}

func NewRestoreRepository(db *DB) repository.RestoreRepository {
	return &restoreRepository{db: db}
}

func (r *restoreRepository) Create(ctx context.Context, restore *domain.Restore) error {
	query := `
		INSERT INTO restore (backup_id, backup_timestamp, target, target_path, start_time, end_time, process_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var endTime sql.NullTime
	if restore.EndTime != nil {
		endTime = sql.NullTime{Valid: true, Time: *restore.EndTime}
	}

	result, err := r.db.ExecContext(ctx, query,
		restore.BackupID,
		restore.BackupTimestamp,
		restore.Target,
		restore.TargetPath,
		restore.StartTime,
		endTime,
		restore.ProcessID,
	)
	if err != nil {
		return fmt.Errorf("failed to create restore: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	restore.ID = id

	return nil
}

func (r *restoreRepository) FindByID(ctx context.Context, id int64) (*domain.Restore, error) {
	query := `
		SELECT id, backup_id, backup_timestamp, target, target_path, start_time, end_time, process_id
		FROM restore
		WHERE id = ?
	`
	return r.scanRestore(r.db.QueryRowContext(ctx, query, id))
}

func (r *restoreRepository) List(ctx context.Context, filter repository.RestoreFilter) ([]*domain.Restore, error) {
	query := `
		SELECT id, backup_id, backup_timestamp, target, target_path, start_time, end_time, process_id
		FROM restore
		WHERE 1=1
	`
	args := []interface{}{}

	query, args = ApplyFilters(query, args, filter.Filters)
	query = ApplyOrdering(query, filter.Order, "start_time DESC")
	query, args = ApplyPagination(query, args, filter.Page, filter.PerPage)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list restores: %w", err)
	}
	defer rows.Close()

	var restores []*domain.Restore
	for rows.Next() {
		restore, err := r.scanRestoreRow(rows)
		if err != nil {
			return nil, err
		}
		restores = append(restores, restore)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restores: %w", err)
	}

	return restores, nil
}

func (r *restoreRepository) Count(ctx context.Context, filter repository.RestoreFilter) (int, error) {
	query := `SELECT COUNT(*) FROM restore WHERE 1=1`
	args := []interface{}{}

	query, args = ApplyFilters(query, args, filter.Filters)

	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count restores: %w", err)
	}

	return count, nil
}

func (r *restoreRepository) scanRestore(row *sql.Row) (*domain.Restore, error) {
	var restore domain.Restore
	var endTime sql.NullTime

	err := row.Scan(
		&restore.ID,
		&restore.BackupID,
		&restore.BackupTimestamp,
		&restore.Target,
		&restore.TargetPath,
		&restore.StartTime,
		&endTime,
		&restore.ProcessID,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("restore %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan restore: %w", err)
	}

	if endTime.Valid {
		restore.EndTime = &endTime.Time
	}

	return &restore, nil
}

func (r *restoreRepository) scanRestoreRow(rows *sql.Rows) (*domain.Restore, error) {
	var restore domain.Restore
	var endTime sql.NullTime

	err := rows.Scan(
		&restore.ID,
		&restore.BackupID,
		&restore.BackupTimestamp,
		&restore.Target,
		&restore.TargetPath,
		&restore.StartTime,
		&endTime,
		&restore.ProcessID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan restore: %w", err)
	}

	if endTime.Valid {
		restore.EndTime = &endTime.Time
	}

	return &restore, nil
}
