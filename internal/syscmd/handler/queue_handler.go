package handler

import (
	"log"
	"os"

	sharedProcess "github.com/mschot/dbcalm-open-backend/internal/shared/process"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/process"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/repository"
)

// QueueHandler consumes terminal processes of the system service. Most
// types only need their outcome logged; cleanup_backups additionally
// reconciles backup records against the filesystem, on success and on
// partial failure alike.
type QueueHandler struct {
	backupRepo *repository.BackupRepository
}

func NewQueueHandler(backupRepo *repository.BackupRepository) *QueueHandler {
	return &QueueHandler{backupRepo: backupRepo}
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

	if proc.Status == sharedProcess.StatusSuccess {
		log.Printf("process %s completed successfully (type: %s)", proc.CommandID, proc.Type)
	} else {
		log.Printf("process %s failed (type: %s)", proc.CommandID, proc.Type)
		if proc.Error != nil {
			log.Printf("error: %s", *proc.Error)
		}
	}

	// The rm can fail on one folder and still have removed the others, so
	// the records are reconciled regardless of the exit status: the
	// filesystem is the source of truth.
	if proc.Type == process.TypeCleanupBackups {
		h.reconcileCleanup(proc)
	}
}

func (h *QueueHandler) reconcileCleanup(proc *sharedProcess.Process) {
	backupIDs := stringList(proc.Args["backup_ids"])
	folders := stringList(proc.Args["folders"])

	if len(backupIDs) == 0 || len(backupIDs) != len(folders) {
		log.Printf("cleanup process %s has mismatched backup_ids/folders args", proc.CommandID)
		return
	}

	deleted := 0
	for i, id := range backupIDs {
		if _, err := os.Stat(folders[i]); !os.IsNotExist(err) {
			// Folder still present (or unreadable): keep the record.
			continue
		}
		if err := h.backupRepo.Delete(id); err != nil {
			log.Printf("failed to delete backup record %s: %v", id, err)
			continue
		}
		deleted++
	}

	log.Printf("deleted %d backup records out of %d", deleted, len(backupIDs))
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
