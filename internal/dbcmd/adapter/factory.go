package adapter

import (
	"fmt"

	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/builder"
	"github.com/mschot/dbcalm-open-backend/internal/dbcmd/config"
	sharedProcess "github.com/mschot/dbcalm-open-backend/internal/shared/process"
)

func NewAdapter(cfg *config.Config, runner *sharedProcess.Runner) (Adapter, error) {
	// Create builder
	bldr, err := builder.NewBuilder(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create builder: %w", err)
	}

	// Both MariaDB and MySQL use the same adapter implementation
	// The difference is in the builder (MariabackupBuilder vs XtrabackupBuilder)
	return NewDatabaseAdapter(cfg, bldr, runner), nil
}
