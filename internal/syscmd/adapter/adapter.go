package adapter

import (
	sharedProcess "github.com/mschot/dbcalm-open-backend/internal/shared/process"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/model"
)

// Adapter executes the privileged system commands. Each call returns the
// first spawned process and a channel carrying the terminal process.
type Adapter interface {
	UpdateCronSchedules(schedules []model.Schedule) (*sharedProcess.Process, <-chan *sharedProcess.Process, error)
	DeleteDirectory(path string) (*sharedProcess.Process, <-chan *sharedProcess.Process, error)
	CleanupBackups(backupIDs []string, folders []string) (*sharedProcess.Process, <-chan *sharedProcess.Process, error)
}
