package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mschot/dbcalm-open-backend/internal/core/domain"
	"github.com/mschot/dbcalm-open-backend/internal/core/repository"
)

type processRepository struct {
	db *DB
}

func NewProcessRepository(db *DB) repository.ProcessRepository {
	return &processRepository{db: db}
}

func (r *processRepository) Create(ctx context.Context, process *domain.Process) error {
	argsJSON, err := json.Marshal(process.Args)
	if err != nil {
		return fmt.Errorf("failed to marshal args: %w", err)
	}

	query := `
		INSERT INTO process (command_id, command, pid, status, output, error, return_code, start_time, end_time, type, args)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var endTime sql.NullTime
	if process.EndTime != nil {
		endTime = sql.NullTime{Valid: true, Time: *process.EndTime}
	}

	result, err := r.db.ExecContext(ctx, query,
		process.CommandID,
		process.Command,
		NullInt(process.PID),
		process.Status,
		NullString(process.Output),
		NullString(process.Error),
		NullInt(process.ReturnCode),
		process.StartTime,
		endTime,
		process.Type,
		string(argsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to create process: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	process.ID = id

	return nil
}

func (r *processRepository) FindByID(ctx context.Context, id int64) (*domain.Process, error) {
	query := `
		SELECT id, command_id, command, pid, status, output, error, return_code, start_time, end_time, type, args
		FROM process
		WHERE id = ?
	`
	return r.scanProcess(r.db.QueryRowContext(ctx, query, id))
}

// FindByCommandID returns the most recent process step sharing the command
// id. Multi-step restores record one row per step under one command id, so
// status polling always reflects the latest step.
func (r *processRepository) FindByCommandID(ctx context.Context, commandID string) (*domain.Process, error) {
	query := `
		SELECT id, command_id, command, pid, status, output, error, return_code, start_time, end_time, type, args
		FROM process
		WHERE command_id = ?
		ORDER BY id DESC
		LIMIT 1
	`
	return r.scanProcess(r.db.QueryRowContext(ctx, query, commandID))
}

func (r *processRepository) List(ctx context.Context, filter repository.ProcessFilter) ([]*domain.Process, error) {
	query := `
		SELECT id, command_id, command, pid, status, output, error, return_code, start_time, end_time, type, args
		FROM process
		WHERE 1=1
	`
	args := []interface{}{}

	query, args = ApplyFilters(query, args, filter.Filters)
	query = ApplyOrdering(query, filter.Order, "start_time DESC")
	query, args = ApplyPagination(query, args, filter.Page, filter.PerPage)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	defer rows.Close()

	var processes []*domain.Process
	for rows.Next() {
		process, err := r.scanProcessRow(rows)
		if err != nil {
			return nil, err
		}
		processes = append(processes, process)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating processes: %w", err)
	}

	return processes, nil
}

func (r *processRepository) Count(ctx context.Context, filter repository.ProcessFilter) (int, error) {
	query := `SELECT COUNT(*) FROM process WHERE 1=1`
	args := []interface{}{}

	query, args = ApplyFilters(query, args, filter.Filters)

	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count processes: %w", err)
	}

	return count, nil
}

func (r *processRepository) scanProcess(row *sql.Row) (*domain.Process, error) {
	var process domain.Process
	var argsJSON string
	var pid, returnCode sql.NullInt64
	var output, errorOutput sql.NullString
	var endTime sql.NullTime

	err := row.Scan(
		&process.ID,
		&process.CommandID,
		&process.Command,
		&pid,
		&process.Status,
		&output,
		&errorOutput,
		&returnCode,
		&process.StartTime,
		&endTime,
		&process.Type,
		&argsJSON,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("process %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan process: %w", err)
	}

	if pid.Valid {
		pidInt := int(pid.Int64)
		process.PID = &pidInt
	}
	if output.Valid {
		process.Output = &output.String
	}
	if errorOutput.Valid {
		process.Error = &errorOutput.String
	}
	if returnCode.Valid {
		rcInt := int(returnCode.Int64)
		process.ReturnCode = &rcInt
	}
	if endTime.Valid {
		process.EndTime = &endTime.Time
	}

	if err := json.Unmarshal([]byte(argsJSON), &process.Args); err != nil {
		return nil, fmt.Errorf("failed to unmarshal args: %w", err)
	}

	return &process, nil
}

func (r *processRepository) scanProcessRow(rows *sql.Rows) (*domain.Process, error) {
	var process domain.Process
	var argsJSON string
	var pid, returnCode sql.NullInt64
	var output, errorOutput sql.NullString
	var endTime sql.NullTime

	err := rows.Scan(
		&process.ID,
		&process.CommandID,
		&process.Command,
		&pid,
		&process.Status,
		&output,
		&errorOutput,
		&returnCode,
		&process.StartTime,
		&endTime,
		&process.Type,
		&argsJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan process: %w", err)
	}

	if pid.Valid {
		pidInt := int(pid.Int64)
		process.PID = &pidInt
	}
	if output.Valid {
		process.Output = &output.String
	}
	if errorOutput.Valid {
		process.Error = &errorOutput.String
	}
	if returnCode.Valid {
		rcInt := int(returnCode.Int64)
		process.ReturnCode = &rcInt
	}
	if endTime.Valid {
		process.EndTime = &endTime.Time
	}

	if err := json.Unmarshal([]byte(argsJSON), &process.Args); err != nil {
		return nil, fmt.Errorf("failed to unmarshal args: %w", err)
	}

	return &process, nil
}
