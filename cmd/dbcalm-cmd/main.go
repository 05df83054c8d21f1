package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mschot/dbcalm-open-backend/internal/shared/database"
	sharedProcess "github.com/mschot/dbcalm-open-backend/internal/shared/process"
	sharedSocket "github.com/mschot/dbcalm-open-backend/internal/shared/socket"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/adapter"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/config"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/constants"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/handler"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/repository"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/socket"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/validator"
)

func main() {
	logFile, err := setupLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to setup logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log.Println("Starting DBCalm System Command Server")

	cfg, err := config.Load(constants.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

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

	adptr := adapter.NewAdapter(cfg, runner)
	valid := validator.NewValidator()
	queueHandler := handler.NewQueueHandler(repository.NewBackupRepository(db))

	processor := socket.NewCmdCommandProcessor(cfg, adptr, valid, queueHandler)
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
	log.SetPrefix("[cmd] ")

	return logFile, nil
}
