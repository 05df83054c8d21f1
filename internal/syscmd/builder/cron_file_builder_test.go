package builder

import (
	"strings"
	"testing"

	"github.com/mschot/dbcalm-open-backend/internal/syscmd/model"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestGenerateCronExpression(t *testing.T) {
	b := NewCronFileBuilder("dbcalm")

	tests := []struct {
		name     string
		schedule model.Schedule
		want     string
		wantErr  bool
	}{
		{
			name:     "daily at 03:30",
			schedule: model.Schedule{Frequency: "daily", Hour: intPtr(3), Minute: intPtr(30)},
			want:     "30 3 * * *",
		},
		{
			name:     "hourly at minute 15",
			schedule: model.Schedule{Frequency: "hourly", Minute: intPtr(15)},
			want:     "15 * * * *",
		},
		{
			name:     "weekly on sunday",
			schedule: model.Schedule{Frequency: "weekly", Hour: intPtr(2), Minute: intPtr(0), DayOfWeek: intPtr(0)},
			want:     "0 2 * * 0",
		},
		{
			name:     "weekly without day runs any day",
			schedule: model.Schedule{Frequency: "weekly", Hour: intPtr(2), Minute: intPtr(0)},
			want:     "0 2 * * *",
		},
		{
			name:     "monthly on the 1st",
			schedule: model.Schedule{Frequency: "monthly", Hour: intPtr(4), Minute: intPtr(45), DayOfMonth: intPtr(1)},
			want:     "45 4 1 * *",
		},
		{
			name:     "interval every 15 minutes",
			schedule: model.Schedule{Frequency: "interval", IntervalValue: intPtr(15), IntervalUnit: strPtr("minutes")},
			want:     "*/15 * * * *",
		},
		{
			name:     "interval every 6 hours",
			schedule: model.Schedule{Frequency: "interval", IntervalValue: intPtr(6), IntervalUnit: strPtr("hours")},
			want:     "0 */6 * * *",
		},
		{
			name:     "interval missing unit",
			schedule: model.Schedule{Frequency: "interval", IntervalValue: intPtr(6)},
			wantErr:  true,
		},
		{
			name:     "daily missing minute",
			schedule: model.Schedule{Frequency: "daily", Hour: intPtr(3)},
			wantErr:  true,
		},
		{
			name:     "daily missing hour",
			schedule: model.Schedule{Frequency: "daily", Minute: intPtr(30)},
			wantErr:  true,
		},
		{
			name:     "unknown frequency",
			schedule: model.Schedule{Frequency: "fortnightly", Hour: intPtr(3), Minute: intPtr(30)},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.GenerateCronExpression(&tt.schedule)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateCronCommand(t *testing.T) {
	b := NewCronFileBuilder("dbcalm")

	schedule := model.Schedule{ID: 7, BackupType: "incremental"}
	got := b.GenerateCronCommand(&schedule)

	want := "/usr/bin/dbcalm backup incremental --schedule-id 7 >> /var/log/dbcalm/cron-7.log 2>&1"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestBuildCronFileContent(t *testing.T) {
	b := NewCronFileBuilder("dbcalm")

	schedules := []model.Schedule{
		{ID: 1, BackupType: "full", Frequency: "daily", Hour: intPtr(1), Minute: intPtr(0), Enabled: true},
		{ID: 2, BackupType: "incremental", Frequency: "hourly", Minute: intPtr(30), Enabled: true},
		{ID: 3, BackupType: "full", Frequency: "daily", Hour: intPtr(5), Minute: intPtr(0), Enabled: false},
	}

	content := b.BuildCronFileContent(schedules)

	if !strings.Contains(content, "# Schedule ID: 1") {
		t.Errorf("missing schedule 1 entry:\n%s", content)
	}
	if !strings.Contains(content, "0 1 * * * root /usr/bin/dbcalm backup full --schedule-id 1") {
		t.Errorf("missing schedule 1 cron line:\n%s", content)
	}
	if !strings.Contains(content, "30 * * * * root /usr/bin/dbcalm backup incremental --schedule-id 2") {
		t.Errorf("missing schedule 2 cron line:\n%s", content)
	}
	if strings.Contains(content, "Schedule ID: 3") {
		t.Errorf("disabled schedule must not appear:\n%s", content)
	}
	if !strings.Contains(content, "0 2 * * * root /usr/bin/dbcalm cleanup") {
		t.Errorf("missing daily cleanup entry:\n%s", content)
	}
	if !strings.Contains(content, "# Auto-generated - do not edit manually") {
		t.Errorf("missing header:\n%s", content)
	}
}

func TestBuildCronFileContentIsStable(t *testing.T) {
	// The cron file is rewritten on every schedule update; identical
	// schedules must produce identical bytes so unchanged updates leave
	// /etc/cron.d untouched.
	b := NewCronFileBuilder("dbcalm")

	schedules := []model.Schedule{
		{ID: 1, BackupType: "full", Frequency: "daily", Hour: intPtr(1), Minute: intPtr(0), Enabled: true},
		{ID: 2, BackupType: "incremental", Frequency: "hourly", Minute: intPtr(30), Enabled: true},
	}

	first := b.BuildCronFileContent(schedules)
	second := b.BuildCronFileContent(schedules)

	if first != second {
		t.Errorf("repeated builds differ:\n--- first ---\n%s\n--- second ---\n%s", first, second)
	}
}

func TestBuildCronFileContentInvalidScheduleKeepsOthers(t *testing.T) {
	b := NewCronFileBuilder("dbcalm")

	schedules := []model.Schedule{
		{ID: 1, BackupType: "full", Frequency: "interval", Enabled: true}, // missing interval fields
		{ID: 2, BackupType: "full", Frequency: "daily", Hour: intPtr(1), Minute: intPtr(0), Enabled: true},
	}

	content := b.BuildCronFileContent(schedules)

	if !strings.Contains(content, "# ERROR for schedule 1") {
		t.Errorf("invalid schedule should surface as a comment:\n%s", content)
	}
	if !strings.Contains(content, "# Schedule ID: 2") {
		t.Errorf("valid schedule must survive an invalid sibling:\n%s", content)
	}
}
