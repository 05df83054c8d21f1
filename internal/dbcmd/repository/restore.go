package repository

import (
	"fmt"
	"time"

	"github.com/mschot/dbcalm-open-backend/internal/shared/database"
)

type Restore struct {
	ID              int
	StartTime       time.Time
	EndTime         *time.Time
	Target          string
	TargetPath      string
	BackupID        string
	BackupTimestamp *time.Time
	ProcessID       int
}

type RestoreRepository struct {
	db *database.DB
}

func NewRestoreRepository(db *database.DB) *RestoreRepository {
	return &RestoreRepository{db: db}
}

func (r *RestoreRepository) Create(restore *Restore) error {
	var endTime, backupTimestamp interface{}
	if restore.EndTime != nil {
		endTime = restore.EndTime.UTC()
	}
	if restore.BackupTimestamp != nil {
		backupTimestamp = restore.BackupTimestamp.UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO restore (start_time, end_time, target, target_path, backup_id, backup_timestamp, process_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, restore.StartTime.UTC(), endTime, restore.Target, restore.TargetPath, restore.BackupID, backupTimestamp, restore.ProcessID)
	if err != nil {
		return fmt.Errorf("failed to create restore: %w", err)
	}

	return nil
}
