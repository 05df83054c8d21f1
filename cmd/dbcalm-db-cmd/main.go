package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/adapter"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/config"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/constants"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/handler"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/repository"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/socket"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/validator"
	"github.com/mschot/dbcalm-open-backend/internal/shared/database"
	sharedProcess "github.com/mschot/dbcalm-open-backend/internal/shared/process"
	sharedSocket "github.com/mschot/dbcalm-open-backend/internal/shared/socket"
)

func main() {
	logFile, err := setupLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to setup logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log.Println("Starting DBCalm Database Command Server")

	cfg, err := config.Load(constants.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Loaded configuration: db_type=%s, backup_dir=%s", cfg.DbType, cfg.BackupDir)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	writer, err := sharedProcess.NewWriter(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to create process writer: %v", err)
	}
	defer writer.Close()

	runner := sharedProcess.NewRunner(writer)

	backupRepo := repository.NewBackupRepository(db)
	restoreRepo := repository.NewRestoreRepository(db)

	adptr, err := adapter.NewAdapter(cfg, runner)
	if err != nil {
		log.Fatalf("Failed to create adapter: %v", err)
	}

	valid := validator.NewValidator(cfg, runner, backupRepo)
	queueHandler := handler.NewQueueHandler(cfg, backupRepo, restoreRepo)

	processor := socket.NewDbCommandProcessor(cfg, adptr, valid, queueHandler)
	server := sharedSocket.NewServer(constants.SocketPath, processor)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, shutting down", sig)
		os.Exit(0)
	}()

	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// setupLogging writes to both the log file and stderr so startup failures
// surface in the systemd journal as well.
func setupLogging() (*os.File, error) {
	if err := os.MkdirAll(constants.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", constants.LogDir, err)
	}

	logFile, err := os.OpenFile(constants.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", constants.LogFile, err)
	}

	log.SetOutput(io.MultiWriter(logFile, os.Stderr))
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetPrefix("[db-cmd] ")

	return logFile, nil
}
