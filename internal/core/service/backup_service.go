package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mschot/dbcalm-open-backend/internal/adapter/dbcmd"
	"github.com/mschot/dbcalm-open-backend/internal/core/domain"
	"github.com/mschot/dbcalm-open-backend/internal/core/repository"
)

// backupIDLayout mints human-sortable backup ids; they double as the folder
// name under backup_dir.
const backupIDLayout = "2006-01-02-15-04-05"

type BackupService struct {
	backupRepo repository.BackupRepository
	dbClient   *dbcmd.Client
}

func NewBackupService(
	backupRepo repository.BackupRepository,
	dbClient *dbcmd.Client,
) *BackupService {
	return &BackupService{
		backupRepo: backupRepo,
		dbClient:   dbClient,
	}
}

// CreateFullBackup asks the db-cmd service for a full backup. The service
// validates, spawns and records the process; we only pass arguments and
// relay the command id back to the caller.
func (s *BackupService) CreateFullBackup(ctx context.Context, backupID *string, scheduleID *int64) (*domain.Process, error) {
	if backupID == nil {
		id := time.Now().UTC().Format(backupIDLayout)
		backupID = &id
	}

	args := map[string]interface{}{
		"id": *backupID,
	}
	if scheduleID != nil {
		args["schedule_id"] = *scheduleID
	}

	response, err := s.dbClient.SendCommand(ctx, "full_backup", args)
	if err != nil {
		return nil, NewServiceError(503, fmt.Sprintf("failed to initiate backup: %v", err))
	}
	if response.Code != 202 {
		return nil, NewServiceError(response.Code, responseDetail(response))
	}

	return &domain.Process{
		CommandID: response.ID,
		Status:    domain.ProcessStatusRunning,
		Args:      args,
	}, nil
}

// CreateIncrementalBackup asks the db-cmd service for an incremental backup.
// When no base is given the most recent finished backup of the schedule is
// substituted; with no candidate at all the request is a 404.
func (s *BackupService) CreateIncrementalBackup(ctx context.Context, backupID *string, fromBackupID *string, scheduleID *int64) (*domain.Process, error) {
	if fromBackupID == nil {
		latestBackup, err := s.backupRepo.FindLatestByScheduleAndType(ctx, scheduleID, domain.BackupTypeFull)
		if err != nil {
			return nil, fmt.Errorf("failed to find base backup: %w", err)
		}
		if latestBackup == nil {
			return nil, NewServiceError(404, "no backup found to use as incremental base")
		}
		fromBackupID = &latestBackup.ID
	}

	if backupID == nil {
		id := time.Now().UTC().Format(backupIDLayout)
		backupID = &id
	}

	args := map[string]interface{}{
		"id":             *backupID,
		"from_backup_id": *fromBackupID,
	}
	if scheduleID != nil {
		args["schedule_id"] = *scheduleID
	}

	response, err := s.dbClient.SendCommand(ctx, "incremental_backup", args)
	if err != nil {
		return nil, NewServiceError(503, fmt.Sprintf("failed to initiate incremental backup: %v", err))
	}
	if response.Code != 202 {
		return nil, NewServiceError(response.Code, responseDetail(response))
	}

	return &domain.Process{
		CommandID: response.ID,
		Status:    domain.ProcessStatusRunning,
		Args:      args,
	}, nil
}

// GetBackup retrieves a backup by ID
func (s *BackupService) GetBackup(ctx context.Context, id string) (*domain.Backup, error) {
	return s.backupRepo.FindByID(ctx, id)
}

// ListBackups lists backups with filtering
func (s *BackupService) ListBackups(ctx context.Context, filter repository.BackupFilter) ([]*domain.Backup, error) {
	return s.backupRepo.List(ctx, filter)
}

// CountBackups counts backups with filtering
func (s *BackupService) CountBackups(ctx context.Context, filter repository.BackupFilter) (int, error) {
	return s.backupRepo.Count(ctx, filter)
}

// GetBackupChain retrieves the full chain for a backup (for incrementals)
func (s *BackupService) GetBackupChain(ctx context.Context, backupID string) ([]*domain.Backup, error) {
	return s.backupRepo.FindChain(ctx, backupID)
}

// responseDetail prefers the socket service's message over its bare status
// word when surfacing a rejection.
func responseDetail(response *dbcmd.CommandResponse) string {
	if response.Message != "" {
		return response.Message
	}
	return response.Status
}
