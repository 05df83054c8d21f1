package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mschot/dbcalm-open-backend/internal/shared/database"
)

type Backup struct {
	ID           string
	FromBackupID *string
	ScheduleID   *int
	StartTime    time.Time
	EndTime      *time.Time
	ProcessID    int
}

type BackupRepository struct {
	db *database.DB
}

func NewBackupRepository(db *database.DB) *BackupRepository {
	return &BackupRepository{db: db}
}

func (r *BackupRepository) Create(backup *Backup) error {
	var endTime interface{}
	if backup.EndTime != nil {
		endTime = backup.EndTime.UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO backup (id, from_backup_id, schedule_id, start_time, end_time, process_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, backup.ID, backup.FromBackupID, backup.ScheduleID, backup.StartTime.UTC(), endTime, backup.ProcessID)
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	return nil
}

// Get returns the backup row for id, or nil when absent.
func (r *BackupRepository) Get(id string) (*Backup, error) {
	row := r.db.QueryRow(`
		SELECT id, from_backup_id, schedule_id, start_time, end_time, process_id
		FROM backup
		WHERE id = ?
	`, id)
	return scanBackup(row)
}

func (r *BackupRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM backup WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete backup %s: %w", id, err)
	}
	return nil
}

// RequiredBackups walks the from_backup_id links from backupID back to the
// root full backup and returns the chain oldest first.
func (r *BackupRepository) RequiredBackups(backupID string) ([]string, error) {
	var required []string
	current := backupID

	for current != "" {
		backup, err := r.Get(current)
		if err != nil {
			return nil, err
		}
		if backup == nil {
			return nil, fmt.Errorf("backup not found: %s", current)
		}

		required = append(required, backup.ID)

		if backup.FromBackupID == nil {
			break
		}
		current = *backup.FromBackupID
	}

	for i := 0; i < len(required)/2; i++ {
		j := len(required) - 1 - i
		required[i], required[j] = required[j], required[i]
	}

	return required, nil
}

func (r *BackupRepository) LatestBackup() (*Backup, error) {
	row := r.db.QueryRow(`
		SELECT id, from_backup_id, schedule_id, start_time, end_time, process_id
		FROM backup
		ORDER BY start_time DESC
		LIMIT 1
	`)
	return scanBackup(row)
}

func scanBackup(row *sql.Row) (*Backup, error) {
	var backup Backup
	var fromBackupID sql.NullString
	var scheduleID sql.NullInt64
	var endTime sql.NullTime

	err := row.Scan(&backup.ID, &fromBackupID, &scheduleID, &backup.StartTime, &endTime, &backup.ProcessID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan backup: %w", err)
	}

	if fromBackupID.Valid {
		backup.FromBackupID = &fromBackupID.String
	}
	if scheduleID.Valid {
		sid := int(scheduleID.Int64)
		backup.ScheduleID = &sid
	}
	if endTime.Valid {
		backup.EndTime = &endTime.Time
	}

	return &backup, nil
}
