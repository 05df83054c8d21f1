package dto

// CleanupRequest is the body of POST /cleanup. Without a schedule id the
// retention pass covers every schedule that has a policy.
type CleanupRequest struct {
	ScheduleID *int64 `json:"schedule_id,omitempty"`
}
