package adapter

import (
	sharedProcess "github.com/mschot/dbcalm-open-backend/internal/shared/process"
)

// Adapter executes the accepted db commands. Each call returns the first
// spawned process (so the processor can answer with its command id) and a
// channel carrying the terminal process of the job.
type Adapter interface {
	FullBackup(id string, scheduleID *int) (*sharedProcess.Process, <-chan *sharedProcess.Process, error)
	IncrementalBackup(id, fromBackupID string, scheduleID *int) (*sharedProcess.Process, <-chan *sharedProcess.Process, error)
	RestoreBackup(idList []string, target string) (*sharedProcess.Process, <-chan *sharedProcess.Process, error)
}
