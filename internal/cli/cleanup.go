package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cleanupScheduleID int64

const cleanupWaitTimeout = 10 * time.Minute

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Run backup cleanup",
	Long:  "Delete expired backups based on schedule retention policies (typically used by cron)",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		payload := map[string]interface{}{}
		if cleanupScheduleID > 0 {
			payload["schedule_id"] = cleanupScheduleID
			fmt.Printf("Cleanup started for schedule %d\n", cleanupScheduleID)
		} else {
			fmt.Println("Cleanup started for all schedules")
		}

		resp, err := postJSON(httpClient, baseURL, "/cleanup", token, payload)
		if err != nil {
			return fmt.Errorf("cleanup request failed: %w", err)
		}

		// No command id means nothing was expired.
		if resp.PID == nil {
			fmt.Println("Nothing to clean up")
			return nil
		}

		fmt.Println("Waiting for cleanup to complete...")
		status, err := waitForProcessCompletion(httpClient, baseURL, token, *resp.PID, cleanupWaitTimeout)
		if err != nil {
			return err
		}

		if status.Output != nil && *status.Output != "" {
			fmt.Printf("Success: %s\n", *status.Output)
		} else {
			fmt.Println("Success")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().Int64Var(&cleanupScheduleID, "schedule-id", 0, "Specific schedule ID to clean up (all schedules if omitted)")
}
