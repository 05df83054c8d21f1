package service

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/mschot/dbcalm-open-backend/internal/adapter/dbcmd"
	"github.com/mschot/dbcalm-open-backend/internal/core/domain"
	"github.com/mschot/dbcalm-open-backend/internal/core/repository"
	"github.com/mschot/dbcalm-open-backend/internal/infrastructure/sqlite"
	sharedSocket "github.com/mschot/dbcalm-open-backend/internal/shared/socket"
)

// stubProcessor plays the db-cmd daemon: it records the request and answers
// with a canned response.
type stubProcessor struct {
	response sharedSocket.CommandResponse
	requests []sharedSocket.CommandRequest
}

func (p *stubProcessor) ProcessRequest(data []byte) sharedSocket.CommandResponse {
	var req sharedSocket.CommandRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return sharedSocket.CommandResponse{Code: 400, Status: "Bad Request"}
	}
	p.requests = append(p.requests, req)
	return p.response
}

func startStubDaemon(t *testing.T, processor *stubProcessor) *dbcmd.Client {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "db-cmd.sock")
	server := sharedSocket.NewServer(socketPath, processor)
	go server.Start()

	client := dbcmd.NewClient(socketPath, 5*time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := client.SendCommand(context.Background(), "ping", nil); err == nil {
			processor.requests = nil
			return client
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("stub daemon did not start")
	return nil
}

func setupBackupService(t *testing.T, processor *stubProcessor) (*BackupService, repository.BackupRepository, *sqlite.DB) {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	backupRepo := sqlite.NewBackupRepository(db)
	client := startStubDaemon(t, processor)
	return NewBackupService(backupRepo, client), backupRepo, db
}

var backupIDPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{2}-\d{2}-\d{2}$`)

func TestCreateFullBackupMintsID(t *testing.T) {
	processor := &stubProcessor{response: sharedSocket.CommandResponse{Code: 202, Status: "Accepted", ID: "cmd-42"}}
	svc, _, _ := setupBackupService(t, processor)

	process, err := svc.CreateFullBackup(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("CreateFullBackup failed: %v", err)
	}

	if process.CommandID != "cmd-42" {
		t.Errorf("expected command id from daemon, got %s", process.CommandID)
	}
	if process.Status != domain.ProcessStatusRunning {
		t.Errorf("expected running status, got %s", process.Status)
	}

	id, ok := process.Args["id"].(string)
	if !ok {
		t.Fatalf("expected minted id in args, got %v", process.Args)
	}
	if !backupIDPattern.MatchString(id) {
		t.Errorf("minted id %q does not match timestamp layout", id)
	}

	if len(processor.requests) != 1 || processor.requests[0].Cmd != "full_backup" {
		t.Fatalf("expected one full_backup request, got %v", processor.requests)
	}
	if processor.requests[0].Args["id"] != id {
		t.Errorf("daemon saw id %v, handler returned %s", processor.requests[0].Args["id"], id)
	}
}

func TestCreateFullBackupExplicitID(t *testing.T) {
	processor := &stubProcessor{response: sharedSocket.CommandResponse{Code: 202, Status: "Accepted", ID: "cmd-43"}}
	svc, _, _ := setupBackupService(t, processor)

	id := "2025-11-01-10-00-00"
	scheduleID := int64(3)
	process, err := svc.CreateFullBackup(context.Background(), &id, &scheduleID)
	if err != nil {
		t.Fatalf("CreateFullBackup failed: %v", err)
	}

	if process.Args["id"] != id {
		t.Errorf("explicit id must pass through, got %v", process.Args["id"])
	}
	if processor.requests[0].Args["schedule_id"] == nil {
		t.Error("schedule_id missing from command args")
	}
}

func TestCreateFullBackupRejected(t *testing.T) {
	processor := &stubProcessor{response: sharedSocket.CommandResponse{
		Code: 409, Status: "Conflict", Message: "Backup with id '2025-11-01-10-00-00' already exists",
	}}
	svc, _, _ := setupBackupService(t, processor)

	id := "2025-11-01-10-00-00"
	_, err := svc.CreateFullBackup(context.Background(), &id, nil)
	if err == nil {
		t.Fatal("expected rejection to propagate")
	}

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %T", err)
	}
	if svcErr.Code != 409 {
		t.Errorf("expected 409, got %d", svcErr.Code)
	}
	if svcErr.Message != "Backup with id '2025-11-01-10-00-00' already exists" {
		t.Errorf("expected daemon message, got %q", svcErr.Message)
	}
}

func TestCreateFullBackupSocketDown(t *testing.T) {
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	client := dbcmd.NewClient(filepath.Join(t.TempDir(), "missing.sock"), 100*time.Millisecond)
	svc := NewBackupService(sqlite.NewBackupRepository(db), client)

	_, err = svc.CreateFullBackup(context.Background(), nil, nil)
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if svcErr.Code != 503 {
		t.Errorf("unreachable daemon must map to 503, got %d", svcErr.Code)
	}
}

func TestCreateIncrementalBackupNoBase(t *testing.T) {
	processor := &stubProcessor{response: sharedSocket.CommandResponse{Code: 202, Status: "Accepted", ID: "cmd-44"}}
	svc, _, _ := setupBackupService(t, processor)

	_, err := svc.CreateIncrementalBackup(context.Background(), nil, nil, nil)
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if svcErr.Code != 404 {
		t.Errorf("expected 404 with no base candidate, got %d", svcErr.Code)
	}
}

func TestCreateIncrementalBackupResolvesLatestBase(t *testing.T) {
	processor := &stubProcessor{response: sharedSocket.CommandResponse{Code: 202, Status: "Accepted", ID: "cmd-45"}}
	svc, backupRepo, db := setupBackupService(t, processor)

	processID := seedProcessRow(t, db)
	now := time.Now().UTC()

	// Two finished full backups without a schedule; the newer one is the base.
	seedUnscheduledBackup(t, backupRepo, processID, "2025-11-01-10-00-00", now.AddDate(0, 0, -2))
	seedUnscheduledBackup(t, backupRepo, processID, "2025-11-02-10-00-00", now.AddDate(0, 0, -1))

	process, err := svc.CreateIncrementalBackup(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatalf("CreateIncrementalBackup failed: %v", err)
	}

	if process.Args["from_backup_id"] != "2025-11-02-10-00-00" {
		t.Errorf("expected newest full backup as base, got %v", process.Args["from_backup_id"])
	}
	if processor.requests[0].Cmd != "incremental_backup" {
		t.Errorf("expected incremental_backup command, got %s", processor.requests[0].Cmd)
	}
}

func seedUnscheduledBackup(t *testing.T, repo repository.BackupRepository, processID int64, id string, startTime time.Time) {
	t.Helper()
	end := startTime.Add(10 * time.Minute)
	err := repo.Create(context.Background(), &domain.Backup{
		ID:        id,
		StartTime: startTime,
		EndTime:   &end,
		ProcessID: processID,
	})
	if err != nil {
		t.Fatalf("failed to seed backup %s: %v", id, err)
	}
}
