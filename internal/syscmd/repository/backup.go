package repository

import (
	"fmt"

	"github.com/mschot/dbcalm-open-backend/internal/shared/database"
)

// BackupRepository is the slice of the backup table the system service
// touches: deleting records whose folder has been removed.
type BackupRepository struct {
	db *database.DB
}

func NewBackupRepository(db *database.DB) *BackupRepository {
	return &BackupRepository{db: db}
}

func (r *BackupRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM backup WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete backup %s: %w", id, err)
	}
	return nil
}
