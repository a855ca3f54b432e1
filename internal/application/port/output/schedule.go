package output

import (
	"context"

	"schedule-agent/internal/domain/entity"
)

// ScheduleStorePort executes read-only SQL against the hosted
// schedule database.
type ScheduleStorePort interface {
	ExecuteSQL(ctx context.Context, sqlText string) (*entity.ResultSet, error)
}
