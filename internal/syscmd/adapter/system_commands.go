package adapter

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	sharedProcess "github.com/mschot/dbcalm-open-backend/internal/shared/process"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/builder"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/model"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/process"
)

type SystemCommands struct {
	runner      *sharedProcess.Runner
	cronBuilder *builder.CronFileBuilder
}

func NewSystemCommands(runner *sharedProcess.Runner, cronBuilder *builder.CronFileBuilder) *SystemCommands {
	return &SystemCommands{
		runner:      runner,
		cronBuilder: cronBuilder,
	}
}

// UpdateCronSchedules replaces /etc/cron.d/dbcalm with the enabled
// schedules: the content is written to a temp file, chmodded 644 and then
// renamed into place so cron never observes a half-written fragment.
func (s *SystemCommands) UpdateCronSchedules(schedules []model.Schedule) (*sharedProcess.Process, <-chan *sharedProcess.Process, error) {
	cronContent := s.cronBuilder.BuildCronFileContent(schedules)

	tempFile := fmt.Sprintf("/tmp/dbcalm-cron-%s.tmp", uuid.New().String())
	targetFile := "/etc/cron.d/dbcalm"

	escapedContent := strings.ReplaceAll(cronContent, `"`, `\"`)
	escapedContent = strings.ReplaceAll(escapedContent, `$`, `\$`)
	escapedContent = strings.ReplaceAll(escapedContent, "`", "\\`")

	command := []string{
		"/bin/sh",
		"-c",
		fmt.Sprintf(`echo "%s" > %s && chmod 644 %s && mv %s %s`,
			escapedContent, tempFile, tempFile, tempFile, targetFile),
	}

	args := map[string]interface{}{
		"schedule_count": len(schedules),
	}

	proc, procChan := s.runner.Execute(command, process.TypeUpdateCron, nil, args)
	return proc, procChan, nil
}

// DeleteDirectory removes a directory owned by the database OS user; this
// service runs as root so ownership does not matter.
func (s *SystemCommands) DeleteDirectory(path string) (*sharedProcess.Process, <-chan *sharedProcess.Process, error) {
	command := []string{
		"/bin/rm",
		"-rf",
		path,
	}

	args := map[string]interface{}{
		"path": path,
	}

	proc, procChan := s.runner.Execute(command, process.TypeDeleteDir, nil, args)
	return proc, procChan, nil
}

// CleanupBackups removes the expired backup folders in one rm invocation.
// The ids and folders travel in the process args so the queue handler can
// reconcile records against what actually disappeared.
func (s *SystemCommands) CleanupBackups(backupIDs []string, folders []string) (*sharedProcess.Process, <-chan *sharedProcess.Process, error) {
	command := []string{"/bin/rm", "-rf"}
	command = append(command, folders...)

	args := map[string]interface{}{
		"backup_ids": backupIDs,
		"folders":    folders,
	}

	proc, procChan := s.runner.Execute(command, process.TypeCleanupBackups, nil, args)
	return proc, procChan, nil
}
