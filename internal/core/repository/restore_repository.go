package repository

import (
	"context"

	"github.com/mschot/dbcalm-open-backend/internal/api/util"
	"github.com/mschot/dbcalm-open-backend/internal/core/domain"
)

// RestoreFilter embeds ListFilter for generic query/order/pagination
type RestoreFilter struct {
	util.ListFilter
}

// RestoreRepository reads restore rows; the db-cmd service materializes
// them when a restore chain finishes. Create exists for seeding in tests.
type RestoreRepository interface {
	Create(ctx context.Context, restore *domain.Restore) error
	FindByID(ctx context.Context, id int64) (*domain.Restore, error)
	List(ctx context.Context, filter RestoreFilter) ([]*domain.Restore, error)
	Count(ctx context.Context, filter RestoreFilter) (int, error)
}
