package input

import (
	"context"

	"schedule-agent/internal/domain/entity"
)

type ExecuteResult struct {
	FinalAnswer string
	Steps       int
	Incomplete  bool
	Summary     []string
	Transcript  entity.Transcript
}

type QueryExecutor interface {
	Execute(ctx context.Context, query string) (*ExecuteResult, error)
}
