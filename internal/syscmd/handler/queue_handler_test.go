package handler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mschot/dbcalm-open-backend/internal/shared/database"
	sharedProcess "github.com/mschot/dbcalm-open-backend/internal/shared/process"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/process"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/repository"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite3"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE backup (
			id TEXT PRIMARY KEY,
			from_backup_id TEXT,
			schedule_id INTEGER,
			start_time TEXT,
			end_time TEXT,
			process_id INTEGER
		)
	`)
	if err != nil {
		t.Fatalf("failed to create backup table: %v", err)
	}

	return db
}

func seedBackup(t *testing.T, db *database.DB, id string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO backup (id, start_time, process_id) VALUES (?, ?, 1)`,
		id, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("failed to seed backup %s: %v", id, err)
	}
}

func countBackups(t *testing.T, db *database.DB) int {
	t.Helper()
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM backup`).Scan(&count); err != nil {
		t.Fatalf("failed to count backups: %v", err)
	}
	return count
}

func TestReconcileCleanupDeletesOnlyRemovedFolders(t *testing.T) {
	db := setupTestDB(t)
	backupRepo := repository.NewBackupRepository(db)
	h := NewQueueHandler(backupRepo)

	tmpDir := t.TempDir()

	// Folder for backup-a is gone; backup-b's folder survived a failed rm.
	goneFolder := filepath.Join(tmpDir, "backup-a")
	keptFolder := filepath.Join(tmpDir, "backup-b")
	if err := os.MkdirAll(keptFolder, 0755); err != nil {
		t.Fatalf("failed to create folder: %v", err)
	}

	seedBackup(t, db, "backup-a")
	seedBackup(t, db, "backup-b")

	proc := &sharedProcess.Process{
		CommandID: "cmd-1",
		Status:    sharedProcess.StatusFailed,
		Type:      process.TypeCleanupBackups,
		Args: map[string]interface{}{
			"backup_ids": []interface{}{"backup-a", "backup-b"},
			"folders":    []interface{}{goneFolder, keptFolder},
		},
	}

	h.handleProcess(proc)

	if got := countBackups(t, db); got != 1 {
		t.Errorf("expected 1 surviving backup record, got %d", got)
	}

	var id string
	if err := db.QueryRow(`SELECT id FROM backup`).Scan(&id); err != nil {
		t.Fatalf("failed to read surviving backup: %v", err)
	}
	if id != "backup-b" {
		t.Errorf("expected backup-b to survive, got %s", id)
	}
}

func TestReconcileCleanupAllFoldersRemoved(t *testing.T) {
	db := setupTestDB(t)
	h := NewQueueHandler(repository.NewBackupRepository(db))

	tmpDir := t.TempDir()
	seedBackup(t, db, "backup-a")
	seedBackup(t, db, "backup-b")

	proc := &sharedProcess.Process{
		CommandID: "cmd-2",
		Status:    sharedProcess.StatusSuccess,
		Type:      process.TypeCleanupBackups,
		Args: map[string]interface{}{
			"backup_ids": []string{"backup-a", "backup-b"},
			"folders": []string{
				filepath.Join(tmpDir, "backup-a"),
				filepath.Join(tmpDir, "backup-b"),
			},
		},
	}

	h.handleProcess(proc)

	if got := countBackups(t, db); got != 0 {
		t.Errorf("expected all backup records deleted, got %d remaining", got)
	}
}

func TestReconcileCleanupMismatchedArgs(t *testing.T) {
	db := setupTestDB(t)
	h := NewQueueHandler(repository.NewBackupRepository(db))

	seedBackup(t, db, "backup-a")

	proc := &sharedProcess.Process{
		CommandID: "cmd-3",
		Status:    sharedProcess.StatusSuccess,
		Type:      process.TypeCleanupBackups,
		Args: map[string]interface{}{
			"backup_ids": []string{"backup-a"},
			"folders":    []string{},
		},
	}

	h.handleProcess(proc)

	if got := countBackups(t, db); got != 1 {
		t.Errorf("mismatched args must not delete records, got %d remaining", got)
	}
}

func TestHandleProcessIgnoresOtherTypes(t *testing.T) {
	db := setupTestDB(t)
	h := NewQueueHandler(repository.NewBackupRepository(db))

	seedBackup(t, db, "backup-a")

	proc := &sharedProcess.Process{
		CommandID: "cmd-4",
		Status:    sharedProcess.StatusSuccess,
		Type:      process.TypeUpdateCron,
		Args: map[string]interface{}{
			"backup_ids": []string{"backup-a"},
			"folders":    []string{"/nonexistent"},
		},
	}

	h.handleProcess(proc)

	if got := countBackups(t, db); got != 1 {
		t.Errorf("non-cleanup process must not touch backup records, got %d remaining", got)
	}
}
