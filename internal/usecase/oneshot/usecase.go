package oneshot

import (
	"context"
	"fmt"
	"time"

	"schedule-agent/internal/application/port/input"
	"schedule-agent/internal/application/port/output"
	"schedule-agent/internal/application/service"
	"schedule-agent/internal/domain/entity"
	"schedule-agent/internal/infrastructure/prompts"
)

var _ input.QueryExecutor = (*UseCase)(nil)

// UseCase is the single-pass flow: translate the question to one SQL
// statement, execute it, summarize the rows. Any failure is an error;
// there is no recovery loop in this mode.
type UseCase struct {
	llm    output.LLMPort
	store  output.ScheduleStorePort
	logger output.LoggerPort
	ui     output.UserInteractionPort
}

func New(
	llm output.LLMPort,
	store output.ScheduleStorePort,
	logger output.LoggerPort,
	ui output.UserInteractionPort,
) *UseCase {
	return &UseCase{
		llm:    llm,
		store:  store,
		logger: logger,
		ui:     ui,
	}
}

func (uc *UseCase) Execute(ctx context.Context, query string) (*input.ExecuteResult, error) {
	prompt, err := prompts.GenerateTranslatorPrompt(query, time.Now())
	if err != nil {
		return nil, fmt.Errorf("build translator prompt: %w", err)
	}

	uc.logger.Info("Translating query", "query", query)

	resp, err := uc.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleUser, Content: prompt},
		},
		Temperature: 0.0,
	})
	if err != nil {
		return nil, fmt.Errorf("translate query: %w", err)
	}

	sqlText := service.StripSQLFences(resp.Message.Content)
	if sqlText == "" {
		return nil, fmt.Errorf("model returned empty SQL")
	}
	if !service.IsReadOnlyQuery(sqlText) {
		return nil, fmt.Errorf("generated statement is not a read-only query: %s", sqlText)
	}

	uc.ui.ShowSQL(ctx, sqlText)

	set, err := uc.store.ExecuteSQL(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}

	uc.logger.Info("Query executed", "rows", set.RowCount)

	return &input.ExecuteResult{
		FinalAnswer: fmt.Sprintf("Found %d matching games.", set.RowCount),
		Summary:     service.BuildGameSummary([]*entity.ResultSet{set}),
	}, nil
}
