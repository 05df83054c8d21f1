package repository

import (
	"context"

	"github.com/mschot/dbcalm-open-backend/internal/api/util"
	"github.com/mschot/dbcalm-open-backend/internal/core/domain"
)

// ProcessFilter embeds ListFilter for generic query/order/pagination
type ProcessFilter struct {
	util.ListFilter
}

// ProcessRepository reads the audit stream the command services write.
// Create exists so tooling and tests can seed rows; the API itself never
// mutates Process rows.
type ProcessRepository interface {
	Create(ctx context.Context, process *domain.Process) error
	FindByID(ctx context.Context, id int64) (*domain.Process, error)
	FindByCommandID(ctx context.Context, commandID string) (*domain.Process, error)
	List(ctx context.Context, filter ProcessFilter) ([]*domain.Process, error)
	Count(ctx context.Context, filter ProcessFilter) (int, error)
}
