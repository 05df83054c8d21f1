package process

// Process type constants for the db-cmd service
const (
	TypeBackup    = "backup"
	TypeRestore   = "restore"
	TypePingCheck = "mysql_ping_check"
)
