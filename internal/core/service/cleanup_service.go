package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/mschot/dbcalm-open-backend/internal/adapter/cmd"
	"github.com/mschot/dbcalm-open-backend/internal/core/domain"
	"github.com/mschot/dbcalm-open-backend/internal/core/repository"
)

type CleanupService struct {
	backupRepo   repository.BackupRepository
	scheduleRepo repository.ScheduleRepository
	cmdClient    *cmd.Client
	backupDir    string
}

func NewCleanupService(
	backupRepo repository.BackupRepository,
	scheduleRepo repository.ScheduleRepository,
	cmdClient *cmd.Client,
	backupDir string,
) *CleanupService {
	return &CleanupService{
		backupRepo:   backupRepo,
		scheduleRepo: scheduleRepo,
		cmdClient:    cmdClient,
		backupDir:    backupDir,
	}
}

// CleanupBySchedule runs retention for a single schedule.
func (s *CleanupService) CleanupBySchedule(ctx context.Context, scheduleID int64) (*domain.Process, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, NewServiceError(404, fmt.Sprintf("schedule %d not found", scheduleID))
	}

	if schedule.RetentionValue == nil || schedule.RetentionUnit == nil {
		return nil, NewServiceError(400, "schedule does not have a retention policy")
	}

	expiredBackups, err := s.GetExpiredBackups(ctx, schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired backups: %w", err)
	}

	return s.dispatchCleanup(ctx, expiredBackups)
}

// CleanupAll runs retention for every schedule that has a retention policy.
func (s *CleanupService) CleanupAll(ctx context.Context) (*domain.Process, error) {
	schedules, err := s.scheduleRepo.List(ctx, repository.ScheduleFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to get schedules: %w", err)
	}

	var allExpiredBackups []*domain.Backup
	for _, schedule := range schedules {
		if schedule.RetentionValue == nil || schedule.RetentionUnit == nil {
			continue
		}

		expiredBackups, err := s.GetExpiredBackups(ctx, schedule)
		if err != nil {
			continue
		}

		allExpiredBackups = append(allExpiredBackups, expiredBackups...)
	}

	return s.dispatchCleanup(ctx, allExpiredBackups)
}

// dispatchCleanup hands the delete-set to the system command service, which
// removes the folders and afterwards reconciles the backup records against
// what actually disappeared. The API never deletes records itself. An empty
// delete-set returns a nil process: nothing to do, nothing to poll.
func (s *CleanupService) dispatchCleanup(ctx context.Context, backups []*domain.Backup) (*domain.Process, error) {
	if len(backups) == 0 {
		return nil, nil
	}

	backupIDs := []string{}
	folders := []string{}
	for _, backup := range backups {
		backupIDs = append(backupIDs, backup.ID)
		folders = append(folders, filepath.Join(s.backupDir, backup.ID))
	}

	cleanupArgs := map[string]interface{}{
		"backup_ids": backupIDs,
		"folders":    folders,
	}
	response, err := s.cmdClient.SendCommand(ctx, "cleanup_backups", cleanupArgs)
	if err != nil {
		return nil, NewServiceError(503, fmt.Sprintf("failed to initiate cleanup: %v", err))
	}
	if response.Code != 202 {
		return nil, NewServiceError(response.Code, fmt.Sprintf("cleanup failed: %s", response.Status))
	}

	return &domain.Process{
		CommandID: response.ID,
		Status:    domain.ProcessStatusRunning,
	}, nil
}

// GetExpiredBackups returns every backup belonging to a fully expired chain
// of the given schedule.
func (s *CleanupService) GetExpiredBackups(ctx context.Context, schedule *domain.Schedule) ([]*domain.Backup, error) {
	if schedule.RetentionValue == nil || schedule.RetentionUnit == nil {
		return nil, nil
	}

	cutoffDate := s.calculateCutoffDate(*schedule.RetentionValue, *schedule.RetentionUnit)

	backups, err := s.backupRepo.FindBySchedule(ctx, schedule.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get backups: %w", err)
	}

	chains := s.groupBackupsIntoChains(backups)

	// A chain is only deleted whole: one recent member keeps every link,
	// because the incrementals are useless without their base.
	var expiredBackups []*domain.Backup
	for _, chain := range chains {
		allExpired := true
		for _, backup := range chain {
			if !backup.StartTime.Before(cutoffDate) {
				allExpired = false
				break
			}
		}

		if allExpired {
			expiredBackups = append(expiredBackups, chain...)
		}
	}

	return expiredBackups, nil
}

func (s *CleanupService) calculateCutoffDate(retentionValue int, retentionUnit domain.RetentionUnit) time.Time {
	now := time.Now().UTC()

	switch retentionUnit {
	case domain.RetentionUnitDays:
		return now.AddDate(0, 0, -retentionValue)
	case domain.RetentionUnitWeeks:
		return now.AddDate(0, 0, -retentionValue*7)
	case domain.RetentionUnitMonths:
		return now.AddDate(0, 0, -retentionValue*30)
	default:
		return now
	}
}

// groupBackupsIntoChains walks the schedule's backups in start_time order.
// A full backup opens a new chain and every following incremental belongs
// to the chain opened most recently.
func (s *CleanupService) groupBackupsIntoChains(backups []*domain.Backup) [][]*domain.Backup {
	sorted := make([]*domain.Backup, len(backups))
	copy(sorted, backups)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	var chains [][]*domain.Backup
	for _, backup := range sorted {
		if backup.FromBackupID == nil {
			chains = append(chains, []*domain.Backup{backup})
			continue
		}
		if len(chains) == 0 {
			// Orphan incremental with no preceding full; treat it as its
			// own chain so it can still age out.
			chains = append(chains, []*domain.Backup{backup})
			continue
		}
		last := len(chains) - 1
		chains[last] = append(chains[last], backup)
	}

	return chains
}
