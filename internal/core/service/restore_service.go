package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mschot/dbcalm-open-backend/internal/adapter/dbcmd"
	"github.com/mschot/dbcalm-open-backend/internal/core/domain"
	"github.com/mschot/dbcalm-open-backend/internal/core/repository"
)

type RestoreService struct {
	restoreRepo repository.RestoreRepository
	backupRepo  repository.BackupRepository
	dbClient    *dbcmd.Client
}

func NewRestoreService(
	restoreRepo repository.RestoreRepository,
	backupRepo repository.BackupRepository,
	dbClient *dbcmd.Client,
) *RestoreService {
	return &RestoreService{
		restoreRepo: restoreRepo,
		backupRepo:  backupRepo,
		dbClient:    dbClient,
	}
}

// RestoreToDatabase restores a backup into the live data directory. The
// db-cmd service owns the heavy lifting (scratch dir, prepare steps,
// copy-back, restore record); this resolves the chain and dispatches.
func (s *RestoreService) RestoreToDatabase(ctx context.Context, backupID string) (*domain.Process, error) {
	return s.restore(ctx, backupID, "database")
}

// RestoreToFolder prepares a backup into a scratch folder for inspection.
func (s *RestoreService) RestoreToFolder(ctx context.Context, backupID string) (*domain.Process, error) {
	return s.restore(ctx, backupID, "folder")
}

func (s *RestoreService) restore(ctx context.Context, backupID string, target string) (*domain.Process, error) {
	// Resolve the chain from the base full backup up to the requested one.
	// A missing link anywhere in the walk is a 404 naming the absent id.
	chain, err := s.backupRepo.FindChain(ctx, backupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewServiceError(404, err.Error())
		}
		return nil, fmt.Errorf("failed to get backup chain: %w", err)
	}

	idList := make([]string, len(chain))
	for i, backup := range chain {
		idList[i] = backup.ID
	}

	restoreArgs := map[string]interface{}{
		"id_list": idList,
		"target":  target,
	}

	resp, err := s.dbClient.SendCommand(ctx, "restore_backup", restoreArgs)
	if err != nil {
		return nil, NewServiceError(503, fmt.Sprintf("failed to send restore command: %v", err))
	}
	if resp.Code != 202 {
		return nil, NewServiceError(resp.Code, responseDetail(resp))
	}

	return &domain.Process{
		CommandID: resp.ID,
		Status:    domain.ProcessStatusRunning,
	}, nil
}

// GetRestore retrieves a restore by ID
func (s *RestoreService) GetRestore(ctx context.Context, id int64) (*domain.Restore, error) {
	return s.restoreRepo.FindByID(ctx, id)
}

// ListRestores lists restores with filtering
func (s *RestoreService) ListRestores(ctx context.Context, filter repository.RestoreFilter) ([]*domain.Restore, error) {
	return s.restoreRepo.List(ctx, filter)
}

// CountRestores counts restores with filtering
func (s *RestoreService) CountRestores(ctx context.Context, filter repository.RestoreFilter) (int, error) {
	return s.restoreRepo.Count(ctx, filter)
}
