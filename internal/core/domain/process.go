package domain

import "time"

type ProcessStatus string

const (
	ProcessStatusRunning ProcessStatus = "running"
	ProcessStatusSuccess ProcessStatus = "success"
	ProcessStatusFailed  ProcessStatus = "failed"
)

type ProcessType string

const (
	ProcessTypeBackup              ProcessType = "backup"
	ProcessTypeRestore             ProcessType = "restore"
	ProcessTypeCleanupBackups      ProcessType = "cleanup_backups"
	ProcessTypeUpdateCronSchedules ProcessType = "update_cron_schedules"
	ProcessTypeDeleteDirectory     ProcessType = "delete_directory"
	ProcessTypePingCheck           ProcessType = "mysql_ping_check"
)

type Process struct {
	ID        int64                  `db:"id"`
	CommandID string                 `db:"command_id"` // UUID for API polling
	Command   string                 `db:"command"`
	PID       *int                   `db:"pid"`
	Status    ProcessStatus          `db:"status"`
	Output    *string                `db:"output"`
	Error     *string                `db:"error"`
	ReturnCode *int                  `db:"return_code"`
	StartTime time.Time              `db:"start_time"`
	EndTime   *time.Time             `db:"end_time"`
	Type      ProcessType            `db:"type"`
	Args      map[string]interface{} `db:"args"` // JSON-serializable args
}

// IsComplete reports whether the process reached a terminal status. The API
// only ever reads Process rows; the command services own their lifecycle.
func (p *Process) IsComplete() bool {
	return p.Status == ProcessStatusSuccess || p.Status == ProcessStatusFailed
}
