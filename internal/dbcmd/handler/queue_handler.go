package handler

import (
	"log"
	"os"
	"path/filepath"

	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/builder"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/config"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/process"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/repository"
	sharedProcess "github.com/mschot/dbcalm-open-backend/internal/shared/process"
)

// QueueHandler consumes terminal processes and materializes them into
// backup and restore rows. Failed processes never produce a row; failed
// backups additionally get their partial folder removed.
type QueueHandler struct {
	config      *config.Config
	backupRepo  *repository.BackupRepository
	restoreRepo *repository.RestoreRepository
}

func NewQueueHandler(cfg *config.Config, backupRepo *repository.BackupRepository, restoreRepo *repository.RestoreRepository) *QueueHandler {
	return &QueueHandler{
		config:      cfg,
		backupRepo:  backupRepo,
		restoreRepo: restoreRepo,
	}
}

func (h *QueueHandler) Handle(processChan <-chan *sharedProcess.Process) {
	go func() {
		for proc := range processChan {
			h.handleProcess(proc)
		}
	}()
}

func (h *QueueHandler) handleProcess(proc *sharedProcess.Process) {
	if proc == nil {
		return
	}

	if proc.ReturnCode != nil && *proc.ReturnCode != 0 {
		log.Printf("process failed with return code %d: %s", *proc.ReturnCode, proc.Command)
		h.cleanupFailedProcess(proc)
		return
	}

	switch proc.Type {
	case process.TypeBackup:
		h.handleBackup(proc)
	case process.TypeRestore:
		h.handleRestore(proc)
	case process.TypePingCheck:
		// Probe only, nothing to materialize.
	default:
		log.Printf("unknown process type: %s", proc.Type)
	}
}

func (h *QueueHandler) handleBackup(proc *sharedProcess.Process) {
	id, ok := proc.Args["id"].(string)
	if !ok || id == "" {
		log.Printf("backup process %s has no id argument", proc.CommandID)
		return
	}

	// The validator already refused duplicate ids at dispatch; a row showing
	// up in between means a concurrent job won, so keep the existing record.
	if existing, err := h.backupRepo.Get(id); err == nil && existing != nil {
		log.Printf("backup record %s already exists, skipping", id)
		return
	}

	backup := &repository.Backup{
		ID:        id,
		StartTime: proc.StartTime,
		EndTime:   proc.EndTime,
		ProcessID: *proc.ID,
	}

	if fromBackupID, ok := proc.Args["from_backup_id"].(string); ok && fromBackupID != "" {
		backup.FromBackupID = &fromBackupID
	}

	backup.ScheduleID = scheduleIDArg(proc.Args)

	if err := h.backupRepo.Create(backup); err != nil {
		log.Printf("failed to create backup record: %v", err)
		return
	}
	log.Printf("backup created successfully: %s", backup.ID)
}

func (h *QueueHandler) handleRestore(proc *sharedProcess.Process) {
	idList := stringList(proc.Args["id_list"])
	if len(idList) == 0 {
		log.Printf("restore process %s has no id_list argument", proc.CommandID)
		return
	}

	target, _ := proc.Args["target"].(string)
	tmpDir, _ := proc.Args["tmp_dir"].(string)

	backupID := idList[0]
	latestBackupID := idList[len(idList)-1]

	latestBackup, err := h.backupRepo.Get(latestBackupID)
	if err != nil {
		log.Printf("failed to get backup %s: %v", latestBackupID, err)
	}

	restore := &repository.Restore{
		StartTime:  proc.StartTime,
		EndTime:    proc.EndTime,
		Target:     target,
		TargetPath: tmpDir,
		BackupID:   backupID,
		ProcessID:  *proc.ID,
	}

	if latestBackup != nil {
		restore.BackupTimestamp = &latestBackup.StartTime
	}

	if err := h.restoreRepo.Create(restore); err != nil {
		log.Printf("failed to create restore record: %v", err)
	} else {
		log.Printf("restore created successfully for backup: %s", backupID)
	}

	// The scratch copy has been copied back; nothing to keep.
	if restore.Target == string(builder.RestoreTargetDatabase) && restore.TargetPath != "" {
		go h.removeTmpRestoreFolder(restore.TargetPath)
	}
}

func (h *QueueHandler) cleanupFailedProcess(proc *sharedProcess.Process) {
	if proc.Type != process.TypeBackup {
		return
	}
	id, ok := proc.Args["id"].(string)
	if !ok || id == "" {
		return
	}
	backupPath := filepath.Join(h.config.BackupDir, id)
	if _, err := os.Stat(backupPath); err == nil {
		log.Printf("removing failed backup folder: %s", backupPath)
		if err := os.RemoveAll(backupPath); err != nil {
			log.Printf("failed to remove backup folder: %v", err)
		}
	}
}

func (h *QueueHandler) removeTmpRestoreFolder(tmpPath string) {
	log.Printf("removing temporary restore folder: %s", tmpPath)
	if err := os.RemoveAll(tmpPath); err != nil {
		log.Printf("failed to remove temporary restore folder: %v", err)
	}
}

// scheduleIDArg copes with the two shapes the args map can carry: an int
// when built in-process, a float64 when round-tripped through JSON.
func scheduleIDArg(args map[string]interface{}) *int {
	switch v := args["schedule_id"].(type) {
	case int:
		if v > 0 {
			return &v
		}
	case float64:
		if v > 0 {
			sid := int(v)
			return &sid
		}
	}
	return nil
}

func stringList(raw interface{}) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		var list []string
		for _, item := range v {
			if str, ok := item.(string); ok {
				list = append(list, str)
			}
		}
		return list
	}
	return nil
}
