package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var backupScheduleID int64

const backupWaitTimeout = 60 * time.Minute

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create backups",
	Long:  "Create full or incremental backups through the API (typically used by cron)",
}

var backupFullCmd = &cobra.Command{
	Use:   "full",
	Short: "Create a full backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackup(cmd, "full")
	},
}

var backupIncrementalCmd = &cobra.Command{
	Use:   "incremental",
	Short: "Create an incremental backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackup(cmd, "incremental")
	},
}

// runBackup drives a backup through the API the same way any other client
// would: a fresh temporary client authenticates, posts the backup, and polls
// the status endpoint until the job reaches a terminal state.
func runBackup(cmd *cobra.Command, backupType string) error {
	ctx := cmd.Context()

	services, err := initServices(ctx)
	if err != nil {
		return err
	}
	defer services.Close()

	clientID, clientSecret, err := ensureTempClient(ctx, services)
	if err != nil {
		return err
	}
	defer deleteTempClient(ctx, services, clientID)

	baseURL := apiBaseURL(cfg)
	httpClient := newAPIClient(cfg)

	token, err := fetchToken(httpClient, baseURL, clientID, clientSecret)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{"type": backupType}
	if backupScheduleID > 0 {
		payload["schedule_id"] = backupScheduleID
	}

	resp, err := postJSON(httpClient, baseURL, "/backups", token, payload)
	if err != nil {
		return fmt.Errorf("backup request failed: %w", err)
	}

	if resp.PID == nil {
		return fmt.Errorf("backup request failed: no command id in response")
	}

	if resp.ResourceID != nil {
		fmt.Printf("%s backup accepted: %s\n", backupType, *resp.ResourceID)
	}

	status, err := waitForProcessCompletion(httpClient, baseURL, token, *resp.PID, backupWaitTimeout)
	if err != nil {
		return err
	}

	fmt.Printf("Backup finished with status: %s\n", status.Status)
	return nil
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupFullCmd)
	backupCmd.AddCommand(backupIncrementalCmd)

	backupFullCmd.Flags().Int64Var(&backupScheduleID, "schedule-id", 0, "Schedule ID that triggered this backup")
	backupIncrementalCmd.Flags().Int64Var(&backupScheduleID, "schedule-id", 0, "Schedule ID that triggered this backup")
}
