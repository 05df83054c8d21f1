package validator

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/config"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/constants"
	dbcmdProcess "github.com/mschot/dbcalm-open-backend/internal/dbcmd/process"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/repository"
	sharedProcess "github.com/mschot/dbcalm-open-backend/internal/shared/process"
	"github.com/mschot/dbcalm-open-backend/internal/shared/types"
)

// Validator gates every command before the adapter runs it: required args,
// id uniqueness against the backup table, credentials file sanity, and the
// server-alive / server-dead / data-dir-empty preconditions.
type Validator struct {
	config     *config.Config
	runner     *sharedProcess.Runner
	backupRepo *repository.BackupRepository
}

func NewValidator(cfg *config.Config, runner *sharedProcess.Runner, backupRepo *repository.BackupRepository) *Validator {
	return &Validator{
		config:     cfg,
		runner:     runner,
		backupRepo: backupRepo,
	}
}

func (v *Validator) Validate(cmd string, args map[string]interface{}) types.ValidationResult {
	switch cmd {
	case "full_backup":
		return v.validateFullBackup(args)
	case "incremental_backup":
		return v.validateIncrementalBackup(args)
	case "restore_backup":
		return v.validateRestoreBackup(args)
	default:
		return types.ValidationResult{Code: types.StatusBadRequest, Message: fmt.Sprintf("Unknown command: %s", cmd)}
	}
}

func (v *Validator) validateFullBackup(args map[string]interface{}) types.ValidationResult {
	id, ok := args["id"].(string)
	if !ok || id == "" {
		return types.ValidationResult{Code: types.StatusBadRequest, Message: "Missing required argument: id"}
	}

	if v.backupExists(id) {
		return types.ValidationResult{Code: types.StatusConflict, Message: fmt.Sprintf("Backup with id '%s' already exists", id)}
	}

	if !v.credentialsFileValid() {
		return types.ValidationResult{Code: types.StatusServiceUnavailable, Message: "credentials file not found or missing [client-dbcalm] section"}
	}

	if !v.serverAlive() {
		return types.ValidationResult{Code: types.StatusServiceUnavailable, Message: "cannot create backup, MySQL/MariaDB server is not running"}
	}

	return types.ValidationResult{Code: types.StatusOK}
}

func (v *Validator) validateIncrementalBackup(args map[string]interface{}) types.ValidationResult {
	id, ok := args["id"].(string)
	if !ok || id == "" {
		return types.ValidationResult{Code: types.StatusBadRequest, Message: "Missing required argument: id"}
	}

	fromBackupID, ok := args["from_backup_id"].(string)
	if !ok || fromBackupID == "" {
		return types.ValidationResult{Code: types.StatusBadRequest, Message: "Missing required argument: from_backup_id"}
	}

	if v.backupExists(id) {
		return types.ValidationResult{Code: types.StatusConflict, Message: fmt.Sprintf("Backup with id '%s' already exists", id)}
	}

	if !v.backupExists(fromBackupID) {
		return types.ValidationResult{Code: types.StatusNotFound, Message: fmt.Sprintf("Base backup with id '%s' not found", fromBackupID)}
	}

	if !v.credentialsFileValid() {
		return types.ValidationResult{Code: types.StatusServiceUnavailable, Message: "credentials file not found or missing [client-dbcalm] section"}
	}

	if !v.serverAlive() {
		return types.ValidationResult{Code: types.StatusServiceUnavailable, Message: "cannot create backup, MySQL/MariaDB server is not running"}
	}

	return types.ValidationResult{Code: types.StatusOK}
}

func (v *Validator) validateRestoreBackup(args map[string]interface{}) types.ValidationResult {
	idListRaw, ok := args["id_list"]
	if !ok {
		return types.ValidationResult{Code: types.StatusBadRequest, Message: "Missing required argument: id_list"}
	}

	var idList []string
	switch list := idListRaw.(type) {
	case []interface{}:
		for _, item := range list {
			if str, ok := item.(string); ok {
				idList = append(idList, str)
			}
		}
	case []string:
		idList = list
	default:
		return types.ValidationResult{Code: types.StatusBadRequest, Message: "id_list must be an array of strings"}
	}

	if len(idList) == 0 {
		return types.ValidationResult{Code: types.StatusBadRequest, Message: "id_list cannot be empty"}
	}

	target, ok := args["target"].(string)
	if !ok || target == "" {
		return types.ValidationResult{Code: types.StatusBadRequest, Message: "Missing required argument: target"}
	}

	if target != "database" && target != "folder" {
		return types.ValidationResult{Code: types.StatusBadRequest, Message: "target must be 'database' or 'folder'"}
	}

	for _, id := range idList {
		if !v.backupExists(id) {
			return types.ValidationResult{Code: types.StatusNotFound, Message: fmt.Sprintf("Backup with id '%s' not found", id)}
		}
	}

	if target == "database" {
		if v.serverAlive() {
			return types.ValidationResult{Code: types.StatusServiceUnavailable, Message: "cannot restore to database, MySQL/MariaDB server is not stopped"}
		}

		if !v.dataDirEmpty() {
			return types.ValidationResult{Code: types.StatusServiceUnavailable, Message: "cannot restore to database, mysql/mariadb data directory is not empty (usually /var/lib/mysql)"}
		}
	}

	return types.ValidationResult{Code: types.StatusOK}
}

func (v *Validator) credentialsFileValid() bool {
	file, err := os.Open(v.config.BackupCredentialsFile)
	if err != nil {
		return false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "[client-dbcalm]" {
			return true
		}
	}

	return false
}

// serverAlive pings the server through the runner so the probe lands in the
// process audit trail like every other external execution.
func (v *Validator) serverAlive() bool {
	adminBin := constants.MariaDBAdminBin
	if v.config.DbType == "mysql" {
		adminBin = constants.MySQLAdminBin
	}

	command := []string{
		adminBin,
		fmt.Sprintf("--defaults-file=%s", v.config.BackupCredentialsFile),
		"--defaults-group-suffix=-dbcalm",
		"ping",
	}

	_, procChan := v.runner.Execute(command, dbcmdProcess.TypePingCheck, nil, nil)
	proc := <-procChan
	return proc.ReturnCode != nil && *proc.ReturnCode == 0
}

// dataDirEmpty treats an unreadable directory as occupied; restoring over
// data we cannot inspect is never safe.
func (v *Validator) dataDirEmpty() bool {
	entries, err := os.ReadDir(v.config.DataDir)
	if err != nil {
		return false
	}

	allowedFiles := map[string]bool{
		"ib_buffer_pool": true,
		"ibdata1":        true,
	}

	for _, entry := range entries {
		name := entry.Name()

		if allowedFiles[name] {
			continue
		}

		if strings.HasPrefix(name, "ib_logfile") ||
			strings.HasSuffix(name, ".sock") ||
			strings.HasSuffix(name, ".pid") ||
			strings.HasSuffix(name, ".err") ||
			strings.HasSuffix(name, ".cnf") ||
			strings.HasSuffix(name, ".flag") {
			continue
		}

		return false
	}

	return true
}

func (v *Validator) backupExists(id string) bool {
	backup, err := v.backupRepo.Get(id)
	if err != nil {
		return false
	}
	return backup != nil
}
