package builder

import (
	"fmt"
	"os/exec"

	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/config"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/constants"
)

// MysqlBuilder is the xtrabackup variant. It differs from MariaDB only in
// the default binary and in always passing --datadir on copy-back, since
// xtrabackup does not read it from the server defaults.
type MysqlBuilder struct {
	*MariadbBuilder
}

func NewMysqlBuilder(cfg *config.Config, version Version) *MysqlBuilder {
	inner := NewMariadbBuilder(cfg, version)
	if cfg.BackupBin == "" {
		inner.bin = "/usr/bin/xtrabackup"
	}
	return &MysqlBuilder{MariadbBuilder: inner}
}

func (b *MysqlBuilder) BuildRestoreCmds(tmpDir string, idList []string, target string) [][]string {
	commands := b.MariadbBuilder.BuildRestoreCmds(tmpDir, idList, target)

	if target == string(RestoreTargetDatabase) && len(commands) > 0 {
		lastCmd := commands[len(commands)-1]
		if len(lastCmd) > 1 && lastCmd[1] == "--copy-back" {
			commands[len(commands)-1] = append(lastCmd, fmt.Sprintf("--datadir=%s", b.config.DataDir))
		}
	}

	return commands
}

func DetectMySQLVersion(credentialsFile string) (Version, error) {
	cmd := exec.Command(constants.MySQLAdminBin,
		fmt.Sprintf("--defaults-file=%s", credentialsFile),
		"--defaults-group-suffix=-dbcalm",
		"--version")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return Version{}, fmt.Errorf("failed to detect MySQL version: %w", err)
	}

	return parseVersion(string(output))
}
