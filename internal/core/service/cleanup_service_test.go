package service

import (
	"context"
	"testing"
	"time"

	"github.com/mschot/dbcalm-open-backend/internal/core/domain"
	"github.com/mschot/dbcalm-open-backend/internal/core/repository"
	"github.com/mschot/dbcalm-open-backend/internal/infrastructure/sqlite"
)

func setupCleanupTest(t *testing.T) (*CleanupService, repository.BackupRepository, *sqlite.DB) {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	backupRepo := sqlite.NewBackupRepository(db)
	scheduleRepo := sqlite.NewScheduleRepository(db)

	svc := NewCleanupService(backupRepo, scheduleRepo, nil, "/var/lib/dbcalm/backups")
	return svc, backupRepo, db
}

func seedProcessRow(t *testing.T, db *sqlite.DB) int64 {
	t.Helper()
	res, err := db.Exec(`
		INSERT INTO process (command_id, command, status, start_time, type, args)
		VALUES ('cmd-seed', 'mariabackup --backup', 'success', ?, 'backup', '{}')
	`, time.Now().UTC())
	if err != nil {
		t.Fatalf("failed to seed process: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func seedScheduleRow(t *testing.T, db *sqlite.DB, id int64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO schedule (id, backup_type, frequency, hour, minute, enabled, created_at, updated_at)
		VALUES (?, 'full', 'daily', 3, 0, 1, ?, ?)
	`, id, time.Now().UTC(), time.Now().UTC())
	if err != nil {
		t.Fatalf("failed to seed schedule: %v", err)
	}
}

func seedBackupRow(t *testing.T, repo repository.BackupRepository, processID int64, id string, fromID *string, scheduleID int64, startTime time.Time) {
	t.Helper()
	end := startTime.Add(10 * time.Minute)
	err := repo.Create(context.Background(), &domain.Backup{
		ID:           id,
		FromBackupID: fromID,
		ScheduleID:   &scheduleID,
		StartTime:    startTime,
		EndTime:      &end,
		ProcessID:    processID,
	})
	if err != nil {
		t.Fatalf("failed to seed backup %s: %v", id, err)
	}
}

func retentionSchedule(scheduleID int64, value int, unit domain.RetentionUnit) *domain.Schedule {
	return &domain.Schedule{
		ID:             scheduleID,
		RetentionValue: &value,
		RetentionUnit:  &unit,
	}
}

func TestGetExpiredBackupsDeletesWholeChainsOnly(t *testing.T) {
	svc, backupRepo, db := setupCleanupTest(t)
	processID := seedProcessRow(t, db)

	now := time.Now().UTC()
	scheduleID := int64(1)
	seedScheduleRow(t, db, scheduleID)

	// Chain A: every member older than the 7 day cutoff.
	seedBackupRow(t, backupRepo, processID, "old-full", nil, scheduleID, now.AddDate(0, 0, -30))
	oldFull := "old-full"
	seedBackupRow(t, backupRepo, processID, "old-incr", &oldFull, scheduleID, now.AddDate(0, 0, -29))

	// Chain B: the full is expired but a recent incremental keeps it alive.
	seedBackupRow(t, backupRepo, processID, "mixed-full", nil, scheduleID, now.AddDate(0, 0, -10))
	mixedFull := "mixed-full"
	seedBackupRow(t, backupRepo, processID, "mixed-incr", &mixedFull, scheduleID, now.AddDate(0, 0, -2))

	// Chain C: entirely recent.
	seedBackupRow(t, backupRepo, processID, "new-full", nil, scheduleID, now.AddDate(0, 0, -1))

	expired, err := svc.GetExpiredBackups(context.Background(), retentionSchedule(scheduleID, 7, domain.RetentionUnitDays))
	if err != nil {
		t.Fatalf("GetExpiredBackups failed: %v", err)
	}

	got := make(map[string]bool)
	for _, b := range expired {
		got[b.ID] = true
	}

	if len(expired) != 2 || !got["old-full"] || !got["old-incr"] {
		t.Errorf("expected exactly old-full and old-incr expired, got %v", got)
	}
}

func TestGetExpiredBackupsNoRetentionPolicy(t *testing.T) {
	svc, _, _ := setupCleanupTest(t)

	expired, err := svc.GetExpiredBackups(context.Background(), &domain.Schedule{ID: 1})
	if err != nil {
		t.Fatalf("GetExpiredBackups failed: %v", err)
	}
	if expired != nil {
		t.Errorf("schedule without retention policy must expire nothing, got %v", expired)
	}
}

func TestGroupBackupsIntoChains(t *testing.T) {
	svc, _, _ := setupCleanupTest(t)

	base := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)
	fullA := "full-a"
	fullB := "full-b"

	// Deliberately unsorted input; grouping must order by start time first.
	backups := []*domain.Backup{
		{ID: "incr-b1", FromBackupID: &fullB, StartTime: base.AddDate(0, 0, 4)},
		{ID: "full-a", StartTime: base},
		{ID: "incr-a2", FromBackupID: &fullA, StartTime: base.AddDate(0, 0, 2)},
		{ID: "full-b", StartTime: base.AddDate(0, 0, 3)},
		{ID: "incr-a1", FromBackupID: &fullA, StartTime: base.AddDate(0, 0, 1)},
	}

	chains := svc.groupBackupsIntoChains(backups)

	if len(chains) != 2 {
		t.Fatalf("expected 2 chains, got %d", len(chains))
	}

	wantFirst := []string{"full-a", "incr-a1", "incr-a2"}
	wantSecond := []string{"full-b", "incr-b1"}

	for i, want := range wantFirst {
		if chains[0][i].ID != want {
			t.Errorf("chain[0][%d]: expected %s, got %s", i, want, chains[0][i].ID)
		}
	}
	for i, want := range wantSecond {
		if chains[1][i].ID != want {
			t.Errorf("chain[1][%d]: expected %s, got %s", i, want, chains[1][i].ID)
		}
	}
}

func TestGroupBackupsOrphanIncremental(t *testing.T) {
	svc, _, _ := setupCleanupTest(t)

	missing := "deleted-full"
	backups := []*domain.Backup{
		{ID: "orphan", FromBackupID: &missing, StartTime: time.Now().UTC()},
	}

	chains := svc.groupBackupsIntoChains(backups)
	if len(chains) != 1 || len(chains[0]) != 1 || chains[0][0].ID != "orphan" {
		t.Errorf("orphan incremental should form its own chain, got %v", chains)
	}
}

func TestCalculateCutoffDate(t *testing.T) {
	svc, _, _ := setupCleanupTest(t)

	tests := []struct {
		name     string
		value    int
		unit     domain.RetentionUnit
		wantDays int
	}{
		{"days", 7, domain.RetentionUnitDays, 7},
		{"weeks", 2, domain.RetentionUnitWeeks, 14},
		{"months", 1, domain.RetentionUnitMonths, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := time.Now().UTC().AddDate(0, 0, -tt.wantDays)
			got := svc.calculateCutoffDate(tt.value, tt.unit)
			after := time.Now().UTC().AddDate(0, 0, -tt.wantDays)

			if got.Before(before) || got.After(after) {
				t.Errorf("cutoff %v not within [%v, %v]", got, before, after)
			}
			if got.Location() != time.UTC {
				t.Errorf("cutoff must be UTC, got %v", got.Location())
			}
		})
	}
}

func TestCleanupByScheduleNotFound(t *testing.T) {
	svc, _, _ := setupCleanupTest(t)

	_, err := svc.CleanupBySchedule(context.Background(), 999)
	if err == nil {
		t.Fatal("expected error for missing schedule")
	}

	svcErr, ok := err.(*ServiceError)
	if !ok {
		t.Fatalf("expected ServiceError, got %T", err)
	}
	if svcErr.Code != 404 {
		t.Errorf("expected 404, got %d", svcErr.Code)
	}
}

func TestCleanupByScheduleNoRetentionPolicy(t *testing.T) {
	svc, _, db := setupCleanupTest(t)

	_, err := db.Exec(`
		INSERT INTO schedule (backup_type, frequency, hour, minute, enabled, created_at, updated_at)
		VALUES ('full', 'daily', 3, 0, 1, ?, ?)
	`, time.Now().UTC(), time.Now().UTC())
	if err != nil {
		t.Fatalf("failed to seed schedule: %v", err)
	}

	_, err = svc.CleanupBySchedule(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error for schedule without retention policy")
	}

	svcErr, ok := err.(*ServiceError)
	if !ok {
		t.Fatalf("expected ServiceError, got %T", err)
	}
	if svcErr.Code != 400 {
		t.Errorf("expected 400, got %d", svcErr.Code)
	}
}
