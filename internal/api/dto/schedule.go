package dto

import "time"

// CreateScheduleRequest is the body of POST /schedules. Which of the
// day/hour/minute/interval fields must be set depends on the frequency;
// the service validates the combination.
type CreateScheduleRequest struct {
	BackupType     string  `json:"backup_type" binding:"required,oneof=full incremental"`
	Frequency      string  `json:"frequency" binding:"required,oneof=daily weekly monthly hourly interval"`
	DayOfWeek      *int    `json:"day_of_week,omitempty"`  // 0 = Sunday
	DayOfMonth     *int    `json:"day_of_month,omitempty"` // 1-31
	Hour           *int    `json:"hour,omitempty"`
	Minute         *int    `json:"minute,omitempty"`
	IntervalValue  *int    `json:"interval_value,omitempty"`
	IntervalUnit   *string `json:"interval_unit,omitempty"`  // minutes or hours
	RetentionValue *int    `json:"retention_value,omitempty"`
	RetentionUnit  *string `json:"retention_unit,omitempty"` // days, weeks or months
	Enabled        bool    `json:"enabled"`
}

// UpdateScheduleRequest is the body of PUT /schedules/:id; every field is
// optional and absent fields keep their current value.
type UpdateScheduleRequest struct {
	BackupType     *string `json:"backup_type,omitempty"`
	Frequency      *string `json:"frequency,omitempty"`
	DayOfWeek      *int    `json:"day_of_week,omitempty"`
	DayOfMonth     *int    `json:"day_of_month,omitempty"`
	Hour           *int    `json:"hour,omitempty"`
	Minute         *int    `json:"minute,omitempty"`
	IntervalValue  *int    `json:"interval_value,omitempty"`
	IntervalUnit   *string `json:"interval_unit,omitempty"`
	RetentionValue *int    `json:"retention_value,omitempty"`
	RetentionUnit  *string `json:"retention_unit,omitempty"`
	Enabled        *bool   `json:"enabled,omitempty"`
}

// ScheduleResponse is a schedule as the API returns it.
type ScheduleResponse struct {
	ID             int64     `json:"id"`
	BackupType     string    `json:"backup_type"`
	Frequency      string    `json:"frequency"`
	DayOfWeek      *int      `json:"day_of_week,omitempty"`
	DayOfMonth     *int      `json:"day_of_month,omitempty"`
	Hour           *int      `json:"hour,omitempty"`
	Minute         *int      `json:"minute,omitempty"`
	IntervalValue  *int      `json:"interval_value,omitempty"`
	IntervalUnit   *string   `json:"interval_unit,omitempty"`
	RetentionValue *int      `json:"retention_value,omitempty"`
	RetentionUnit  *string   `json:"retention_unit,omitempty"`
	Enabled        bool      `json:"enabled"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ScheduleListResponse is one page of schedules.
type ScheduleListResponse struct {
	Items      []ScheduleResponse `json:"items"`
	Pagination PaginationInfo     `json:"pagination"`
}
