package dto

import "time"

// CreateBackupRequest is the body of POST /backups. backup_id is normally
// omitted and minted server-side; from_backup_id only applies to
// incrementals and defaults to the latest finished full backup.
type CreateBackupRequest struct {
	Type         string  `json:"type" binding:"required,oneof=full incremental"`
	BackupID     *string `json:"backup_id"`
	FromBackupID *string `json:"from_backup_id"`
	ScheduleID   *int64  `json:"schedule_id"`
}

// BackupResponse is a backup row as the API lists it. Retention fields are
// filled from the owning schedule when there is one; Type, ProcessID and
// Size stay internal.
type BackupResponse struct {
	ID             string     `json:"id"`
	Type           string     `json:"-"`
	FromBackupID   *string    `json:"from_backup_id,omitempty"`
	ScheduleID     *int64     `json:"schedule_id,omitempty"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	ProcessID      int64      `json:"-"`
	Size           *int64     `json:"-"`
	RetentionValue *int       `json:"retention_value,omitempty"`
	RetentionUnit  *string    `json:"retention_unit,omitempty"`
}

// BackupListResponse is one page of backups.
type BackupListResponse struct {
	Items      []BackupResponse `json:"items"`
	Pagination PaginationInfo   `json:"pagination"`
}
