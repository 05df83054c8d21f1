package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/builder"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/config"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/process"
	sharedProcess "github.com/mschot/dbcalm-open-backend/internal/shared/process"
)

// DatabaseAdapter handles database backup and restore operations.
// Works with both MariaDB (via mariabackup) and MySQL (via xtrabackup).
type DatabaseAdapter struct {
	config  *config.Config
	builder builder.Builder
	runner  *sharedProcess.Runner
}

func NewDatabaseAdapter(cfg *config.Config, bldr builder.Builder, runner *sharedProcess.Runner) *DatabaseAdapter {
	return &DatabaseAdapter{
		config:  cfg,
		builder: bldr,
		runner:  runner,
	}
}

func (a *DatabaseAdapter) FullBackup(id string, scheduleID *int) (*sharedProcess.Process, <-chan *sharedProcess.Process, error) {
	cmd := a.builder.BuildFullBackupCmd(id)

	args := map[string]interface{}{
		"id": id,
	}
	if scheduleID != nil {
		args["schedule_id"] = *scheduleID
	}

	proc, procChan := a.runner.Execute(cmd, process.TypeBackup, nil, args)

	return proc, procChan, nil
}

func (a *DatabaseAdapter) IncrementalBackup(id, fromBackupID string, scheduleID *int) (*sharedProcess.Process, <-chan *sharedProcess.Process, error) {
	cmd := a.builder.BuildIncrementalBackupCmd(id, fromBackupID)

	args := map[string]interface{}{
		"id":             id,
		"from_backup_id": fromBackupID,
	}
	if scheduleID != nil {
		args["schedule_id"] = *scheduleID
	}

	proc, procChan := a.runner.Execute(cmd, process.TypeBackup, nil, args)

	return proc, procChan, nil
}

func (a *DatabaseAdapter) RestoreBackup(idList []string, target string) (*sharedProcess.Process, <-chan *sharedProcess.Process, error) {
	// Database restores prepare in a throwaway scratch dir; folder restores
	// prepare into a timestamped dir the operator keeps.
	var tmpDir string
	if target == string(builder.RestoreTargetDatabase) {
		tmpDir = filepath.Join(a.config.BackupDir, "tmp", uuid.New().String())
	} else {
		tmpDir = filepath.Join(a.config.BackupDir, "restores", time.Now().UTC().Format("2006-01-02-15-04-05"))
	}

	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create restore directory: %w", err)
	}

	commands := a.builder.BuildRestoreCmds(tmpDir, idList, target)

	args := map[string]interface{}{
		"id_list": idList,
		"target":  target,
		"tmp_dir": tmpDir,
	}

	proc, procChan := a.runner.ExecuteConsecutive(commands, process.TypeRestore, args)

	return proc, procChan, nil
}
