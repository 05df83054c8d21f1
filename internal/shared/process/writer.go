package process

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mschot/dbcalm-open-backend/internal/shared/database"
)

// Writer persists process rows for the command services. The API reads the
// same table through its own repository; the writer only ever inserts one row
// per execution and updates it once at terminal.
type Writer struct {
	db *database.DB
}

func NewWriter(dbPath string) (*Writer, error) {
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &Writer{db: db}, nil
}

func (w *Writer) Close() error {
	return w.db.Close()
}

func (w *Writer) CreateProcess(command, commandID string, pid int, status, processType string, args map[string]interface{}, startTime time.Time) (int, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal args: %w", err)
	}

	result, err := w.db.Exec(`
		INSERT INTO process (command, command_id, pid, status, output, error, return_code, start_time, end_time, type, args)
		VALUES (?, ?, ?, ?, NULL, NULL, NULL, ?, NULL, ?, ?)
	`, command, commandID, pid, status, startTime.UTC(), processType, string(argsJSON))
	if err != nil {
		return 0, fmt.Errorf("failed to insert process: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return int(id), nil
}

func (w *Writer) UpdateProcessStatus(processID int, status string, output, errorMsg *string, returnCode *int, endTime *time.Time) error {
	var end interface{}
	if endTime != nil {
		end = endTime.UTC()
	}

	_, err := w.db.Exec(`
		UPDATE process
		SET status = ?, output = ?, error = ?, return_code = ?, end_time = ?
		WHERE id = ?
	`, status, output, errorMsg, returnCode, end, processID)
	if err != nil {
		return fmt.Errorf("failed to update process: %w", err)
	}

	return nil
}

// GetProcessByCommandID returns the most recent process sharing commandID,
// or nil when none exists. The runner uses the nil case to prove a candidate
// command id is still free.
func (w *Writer) GetProcessByCommandID(commandID string) (*Process, error) {
	var p Process
	var output, errorMsg sql.NullString
	var returnCode, id sql.NullInt64
	var endTime sql.NullTime

	err := w.db.QueryRow(`
		SELECT id, command, command_id, pid, status, output, error, return_code, start_time, end_time, type, args
		FROM process
		WHERE command_id = ?
		ORDER BY id DESC
		LIMIT 1
	`, commandID).Scan(&id, &p.Command, &p.CommandID, &p.PID, &p.Status, &output, &errorMsg, &returnCode, &p.StartTime, &endTime, &p.Type, &p.ArgsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query process: %w", err)
	}

	if id.Valid {
		idInt := int(id.Int64)
		p.ID = &idInt
	}
	if output.Valid {
		p.Output = &output.String
	}
	if errorMsg.Valid {
		p.Error = &errorMsg.String
	}
	if returnCode.Valid {
		rc := int(returnCode.Int64)
		p.ReturnCode = &rc
	}
	if endTime.Valid {
		p.EndTime = &endTime.Time
	}

	if p.ArgsJSON != "" {
		if err := json.Unmarshal([]byte(p.ArgsJSON), &p.Args); err != nil {
			return nil, fmt.Errorf("failed to unmarshal args: %w", err)
		}
	}

	return &p, nil
}
