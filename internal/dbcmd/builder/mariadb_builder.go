package builder

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/config"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/constants"
)

type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) LessThan(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

// MariadbBuilder produces mariabackup argument vectors. The binary path is
// fixed at construction so the MySQL variant can substitute xtrabackup
// without re-deriving any of the shared command shapes.
type MariadbBuilder struct {
	config  *config.Config
	version Version
	bin     string
}

func NewMariadbBuilder(cfg *config.Config, version Version) *MariadbBuilder {
	bin := cfg.BackupBin
	if bin == "" {
		bin = "/usr/bin/mariabackup"
	}
	return &MariadbBuilder{
		config:  cfg,
		version: version,
		bin:     bin,
	}
}

func (b *MariadbBuilder) BuildFullBackupCmd(id string) []string {
	return b.buildBackupCmd(id, "")
}

func (b *MariadbBuilder) BuildIncrementalBackupCmd(id, fromBackupID string) []string {
	return b.buildBackupCmd(id, fromBackupID)
}

func (b *MariadbBuilder) buildBackupCmd(id, fromBackupID string) []string {
	cmd := []string{
		b.bin,
		fmt.Sprintf("--defaults-file=%s", b.config.BackupCredentialsFile),
		"--defaults-group-suffix=-dbcalm",
		"--backup",
	}

	if b.config.Stream {
		cmd = append(cmd, "--stream=xbstream")
	} else {
		cmd = append(cmd, fmt.Sprintf("--target-dir=%s", filepath.Join(b.config.BackupDir, id)))
	}

	cmd = append(cmd, fmt.Sprintf("--host=%s", b.config.Host))

	if fromBackupID != "" {
		basedir := filepath.Join(b.config.BackupDir, fromBackupID)
		cmd = append(cmd, fmt.Sprintf("--incremental-basedir=%s", basedir))
	}

	if !b.config.Stream {
		return cmd
	}

	// Streaming needs a shell: the xbstream output runs through a
	// compressor and ends in either a file redirect or a forward command.
	compression := b.config.Compression
	if compression == "" {
		compression = "gzip"
	}

	outputFile := filepath.Join(b.config.BackupDir, fmt.Sprintf("backup-%s.xbstream", id))

	cmdStr := strings.Join(cmd, " ")
	switch compression {
	case "gzip":
		cmdStr += " | gzip"
		outputFile += ".gz"
	case "zstd":
		cmdStr += " | zstd - -c -T0"
		outputFile += ".zst"
	}

	if b.config.Forward != "" {
		cmdStr += " | " + b.config.Forward
	} else {
		cmdStr += " > " + outputFile
	}

	return []string{"sh", "-c", cmdStr}
}

// BuildRestoreCmds returns the ordered restore chain: copy the full backup
// into a scratch dir, prepare it, apply each incremental in order, and for a
// database target copy the result back into the data directory.
func (b *MariadbBuilder) BuildRestoreCmds(tmpDir string, idList []string, target string) [][]string {
	var commands [][]string

	fullBackupID := idList[0]
	fullBackupPath := filepath.Join(b.config.BackupDir, fullBackupID)
	tmpFullBackupPath := filepath.Join(tmpDir, fullBackupID)

	commands = append(commands, []string{
		"cp", "-r", fullBackupPath, tmpDir,
	})

	prepareCmd := []string{
		b.bin,
		"--prepare",
		fmt.Sprintf("--target-dir=%s", tmpFullBackupPath),
	}
	if len(idList) > 1 && b.useApplyLogOnly() {
		prepareCmd = append(prepareCmd, "--apply-log-only")
	}
	commands = append(commands, prepareCmd)

	for i := 1; i < len(idList); i++ {
		incrPath := filepath.Join(b.config.BackupDir, idList[i])

		applyCmd := []string{
			b.bin,
			"--prepare",
			fmt.Sprintf("--target-dir=%s", tmpFullBackupPath),
			fmt.Sprintf("--incremental-dir=%s", incrPath),
		}
		// The last incremental gets the full prepare.
		if i < len(idList)-1 && b.useApplyLogOnly() {
			applyCmd = append(applyCmd, "--apply-log-only")
		}
		commands = append(commands, applyCmd)
	}

	if target == string(RestoreTargetDatabase) {
		commands = append(commands, b.copyBackCmd(tmpFullBackupPath))
	}

	return commands
}

// copyBackCmd relies on the server defaults for the data directory; the
// MySQL variant overrides this to pass --datadir explicitly.
func (b *MariadbBuilder) copyBackCmd(tmpFullBackupPath string) []string {
	return []string{
		b.bin,
		"--copy-back",
		fmt.Sprintf("--target-dir=%s", tmpFullBackupPath),
	}
}

func (b *MariadbBuilder) useApplyLogOnly() bool {
	// MariaDB dropped --apply-log-only in 10.2.
	return b.version.LessThan(Version{Major: 10, Minor: 2, Patch: 0})
}

func DetectMariaDBVersion(credentialsFile string) (Version, error) {
	cmd := exec.Command(constants.MariaDBAdminBin,
		fmt.Sprintf("--defaults-file=%s", credentialsFile),
		"--defaults-group-suffix=-dbcalm",
		"--version")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return Version{}, fmt.Errorf("failed to detect MariaDB version: %w", err)
	}

	return parseVersion(string(output))
}

func parseVersion(versionStr string) (Version, error) {
	// Example: "mariadb-admin  Ver 10.5.23-MariaDB for Linux on x86_64"
	re := regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)
	matches := re.FindStringSubmatch(versionStr)
	if len(matches) < 4 {
		return Version{}, fmt.Errorf("could not parse version from: %s", versionStr)
	}

	major, _ := strconv.Atoi(matches[1])
	minor, _ := strconv.Atoi(matches[2])
	patch, _ := strconv.Atoi(matches[3])

	return Version{Major: major, Minor: minor, Patch: patch}, nil
}
