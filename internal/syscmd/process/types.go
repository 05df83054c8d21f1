package process

// Process type constants for cmd service
const (
	TypeUpdateCron     = "update_cron_schedules"
	TypeDeleteDir      = "delete_directory"
	TypeCleanupBackups = "cleanup_backups"
)
