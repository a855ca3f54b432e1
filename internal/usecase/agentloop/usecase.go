package agentloop

import (
	"context"
	"fmt"
	"time"

	"schedule-agent/internal/adapter/tool"
	"schedule-agent/internal/application/port/input"
	"schedule-agent/internal/application/port/output"
	"schedule-agent/internal/application/service"
	"schedule-agent/internal/domain/entity"
	"schedule-agent/internal/infrastructure/prompts"
)

var _ input.QueryExecutor = (*UseCase)(nil)

const (
	DefaultMaxSteps   = 10
	maxObservationLen = 8000
)

// UseCase runs the bounded think-act-observe loop: each step asks the
// model for one tool decision, dispatches it, and feeds the observation
// back. Tool failures are recorded and survived; the loop ends on a
// completed answer_question call or when the step budget runs out.
type UseCase struct {
	llm       output.LLMPort
	tools     output.ToolRegistry
	collector *service.ResultCollector
	logger    output.LoggerPort
	ui        output.UserInteractionPort
	maxSteps  int
}

func New(
	llm output.LLMPort,
	tools output.ToolRegistry,
	collector *service.ResultCollector,
	logger output.LoggerPort,
	ui output.UserInteractionPort,
	maxSteps int,
) *UseCase {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &UseCase{
		llm:       llm,
		tools:     tools,
		collector: collector,
		logger:    logger,
		ui:        ui,
		maxSteps:  maxSteps,
	}
}

func (uc *UseCase) Execute(ctx context.Context, query string) (*input.ExecuteResult, error) {
	systemPrompt, err := prompts.GenerateAgentSystemPrompt(time.Now())
	if err != nil {
		return nil, fmt.Errorf("build system prompt: %w", err)
	}

	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: systemPrompt},
		{Role: entity.RoleUser, Content: query},
	}

	toolDefs := uc.tools.Definitions()
	transcript := entity.Transcript{Query: query}

	stepIndex := 1
	for stepIndex <= uc.maxSteps {
		uc.ui.ShowIteration(ctx, stepIndex, uc.maxSteps)
		uc.logger.Debug("Starting step", "step", stepIndex)

		resp, err := uc.llm.Chat(ctx, output.ChatRequest{
			Messages:    messages,
			Tools:       toolDefs,
			Temperature: 0.0,
		})
		if err != nil {
			return nil, fmt.Errorf("llm request failed: %w", err)
		}

		if resp.Message.Content != "" {
			uc.ui.ShowThinking(ctx, resp.Message.Content)
		}

		messages = append(messages, resp.Message)

		if len(resp.Message.ToolCalls) == 0 {
			// The model answered in plain text; treat it as the final answer.
			uc.logger.Info("Model answered without a tool call", "steps", len(transcript.Steps))
			transcript.FinalAnswer = resp.Message.Content
			return uc.buildResult(transcript, false), nil
		}

		rationale := resp.Message.Content
		for _, tc := range resp.Message.ToolCalls {
			if stepIndex > uc.maxSteps {
				break
			}

			uc.ui.ShowToolStart(ctx, tc.Name, tc.Arguments)
			observation, failed := uc.executeTool(ctx, tc)
			uc.ui.ShowToolResult(ctx, tc.Name, observation, failed)

			transcript.Append(entity.Step{
				Index:     stepIndex,
				Rationale: rationale,
				Tool:      entity.ToolName(tc.Name),
				Arguments: tc.Arguments,
				Result:    observation,
				Failed:    failed,
			})
			rationale = ""
			stepIndex++

			messages = append(messages, entity.Message{
				Role:       entity.RoleTool,
				ToolCallID: tc.ID,
				Name:       tc.Name,
				Content:    observation,
			})

			if entity.ToolName(tc.Name) == entity.ToolAnswerQuestion && !failed {
				decision, err := tool.ParseAnswerArguments(tc.Arguments)
				if err == nil && !decision.Complete() {
					uc.logger.Debug("Answer recorded as draft, continuing")
					continue
				}
				uc.logger.Info("Task completed", "steps", len(transcript.Steps))
				transcript.FinalAnswer = observation
				return uc.buildResult(transcript, false), nil
			}
		}
	}

	uc.logger.Warn("Step budget exhausted", "maxSteps", uc.maxSteps)
	return uc.buildResult(transcript, true), nil
}

func (uc *UseCase) executeTool(ctx context.Context, tc entity.ToolCall) (string, bool) {
	t, ok := uc.tools.Get(entity.ToolName(tc.Name))
	if !ok {
		uc.logger.Warn("Unknown tool called", "name", tc.Name)
		return fmt.Sprintf("Error: unknown tool '%s'", tc.Name), true
	}

	uc.logger.Info("Executing tool", "name", tc.Name, "args", tc.Arguments)

	result, err := t.Execute(ctx, tc.Arguments)
	if err != nil {
		uc.logger.Error("Tool execution failed", "name", tc.Name, "error", err)
		return "Error: " + err.Error(), true
	}

	if len(result) > maxObservationLen {
		result = result[:maxObservationLen] + "\n... (truncated)"
	}

	uc.logger.Debug("Tool completed", "name", tc.Name, "resultLen", len(result))
	return result, false
}

func (uc *UseCase) buildResult(transcript entity.Transcript, incomplete bool) *input.ExecuteResult {
	result := &input.ExecuteResult{
		FinalAnswer: transcript.FinalAnswer,
		Steps:       len(transcript.Steps),
		Incomplete:  incomplete,
		Transcript:  transcript,
	}
	if uc.collector.HasResults() {
		result.Summary = service.BuildGameSummary(uc.collector.All())
	}
	return result
}
