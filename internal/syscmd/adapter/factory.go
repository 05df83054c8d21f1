package adapter

import (
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/builder"
	"github.com/mschot/dbcalm-open-backend/internal/syscmd/config"
	sharedProcess "github.com/mschot/dbcalm-open-backend/internal/shared/process"
)

func NewAdapter(cfg *config.Config, runner *sharedProcess.Runner) Adapter {
	cronBuilder := builder.NewCronFileBuilder(cfg.ProjectName)
	return NewSystemCommands(runner, cronBuilder)
}
