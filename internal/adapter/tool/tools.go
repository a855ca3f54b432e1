package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"schedule-agent/internal/application/port/output"
	"schedule-agent/internal/application/service"
	"schedule-agent/internal/domain/entity"
	"schedule-agent/internal/infrastructure/prompts"
)

const maxPreviewRows = 20

// AnalyzeTool asks the model to break a question down into schema
// filters and a literal date range before SQL is written.
type AnalyzeTool struct {
	llm    output.LLMPort
	logger output.LoggerPort
}

func NewAnalyzeTool(llm output.LLMPort, logger output.LoggerPort) *AnalyzeTool {
	return &AnalyzeTool{llm: llm, logger: logger}
}

func (t *AnalyzeTool) Name() entity.ToolName { return entity.ToolAnalyzeQuestion }

func (t *AnalyzeTool) Description() string {
	return "Analyzes the user's question against the schedule table schema: relevant columns, filter values, and the literal date range. Call this before writing SQL for anything non-trivial."
}

func (t *AnalyzeTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"question": map[string]interface{}{
				"type":        "string",
				"description": "The question to analyze, in the user's own words",
			},
		},
		"required": []string{"question"},
	}
}

func (t *AnalyzeTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Question string `json:"question"`
	}
	if err := json.Unmarshal([]byte(args), &input); err != nil {
		return "", fmt.Errorf("invalid analyze_question arguments: %w", err)
	}
	if strings.TrimSpace(input.Question) == "" {
		return "", fmt.Errorf("question is required")
	}

	systemPrompt, err := prompts.GenerateAnalysisPrompt(time.Now())
	if err != nil {
		return "", fmt.Errorf("build analysis prompt: %w", err)
	}

	resp, err := t.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: systemPrompt},
			{Role: entity.RoleUser, Content: input.Question},
		},
		Temperature: 0.0,
	})
	if err != nil {
		return "", fmt.Errorf("analysis request failed: %w", err)
	}

	return resp.Message.Content, nil
}

// ExecuteSQLTool runs one read-only query against the schedule store
// and records the result set for the final game summary.
type ExecuteSQLTool struct {
	store     output.ScheduleStorePort
	collector *service.ResultCollector
	logger    output.LoggerPort
}

func NewExecuteSQLTool(store output.ScheduleStorePort, collector *service.ResultCollector, logger output.LoggerPort) *ExecuteSQLTool {
	return &ExecuteSQLTool{store: store, collector: collector, logger: logger}
}

func (t *ExecuteSQLTool) Name() entity.ToolName { return entity.ToolExecuteSQL }

func (t *ExecuteSQLTool) Description() string {
	return "Executes a single read-only SQL query (SELECT or WITH) against the combined-schedule table and returns the row count with a preview of the rows."
}

func (t *ExecuteSQLTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"sql": map[string]interface{}{
				"type":        "string",
				"description": "The SQL query to execute, with absolute YYYY-MM-DD dates",
			},
		},
		"required": []string{"sql"},
	}
}

func (t *ExecuteSQLTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		SQL string `json:"sql"`
	}
	if err := json.Unmarshal([]byte(args), &input); err != nil {
		return "", fmt.Errorf("invalid execute_sql arguments: %w", err)
	}

	sqlText := service.StripSQLFences(input.SQL)
	if sqlText == "" {
		return "", fmt.Errorf("sql is required")
	}
	if !service.IsReadOnlyQuery(sqlText) {
		return "", fmt.Errorf("only read-only SELECT/WITH queries are allowed")
	}

	set, err := t.store.ExecuteSQL(ctx, sqlText)
	if err != nil {
		return "", err
	}

	t.collector.Add(set)
	return formatResultSet(set), nil
}

func formatResultSet(set *entity.ResultSet) string {
	if set.RowCount == 0 {
		return "Query returned 0 rows."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Query returned %d rows.\n", set.RowCount)
	if len(set.Columns) > 0 {
		b.WriteString(strings.Join(set.Columns, " | "))
		b.WriteByte('\n')
	}

	preview := set.Rows
	if len(preview) > maxPreviewRows {
		preview = preview[:maxPreviewRows]
	}
	for _, row := range preview {
		values := make([]string, 0, len(set.Columns))
		if len(set.Columns) > 0 {
			for _, col := range set.Columns {
				values = append(values, row[col])
			}
		} else {
			keys := make([]string, 0, len(row))
			for k := range row {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				values = append(values, row[k])
			}
		}
		b.WriteString(strings.Join(values, " | "))
		b.WriteByte('\n')
	}
	if len(set.Rows) > maxPreviewRows {
		fmt.Fprintf(&b, "... (%d more rows)\n", len(set.Rows)-maxPreviewRows)
	}
	return b.String()
}

// AnswerTool carries the model's final (or draft) answer. The loop
// inspects its arguments to decide whether the run is complete.
type AnswerTool struct {
	logger output.LoggerPort
}

func NewAnswerTool(logger output.LoggerPort) *AnswerTool {
	return &AnswerTool{logger: logger}
}

func (t *AnswerTool) Name() entity.ToolName { return entity.ToolAnswerQuestion }

func (t *AnswerTool) Description() string {
	return "Delivers the answer to the user's question. Set done to false only if more steps are still needed after recording this draft."
}

func (t *AnswerTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"answer": map[string]interface{}{
				"type":        "string",
				"description": "The answer text, grounded in the query results",
			},
			"done": map[string]interface{}{
				"type":        "boolean",
				"description": "Whether the task is complete (defaults to true)",
			},
		},
		"required": []string{"answer"},
	}
}

func (t *AnswerTool) Execute(ctx context.Context, args string) (string, error) {
	decision, err := ParseAnswerArguments(args)
	if err != nil {
		return "", err
	}
	return decision.Answer, nil
}

// AnswerDecision is the parsed payload of an answer_question call.
type AnswerDecision struct {
	Answer string `json:"answer"`
	Done   *bool  `json:"done"`
}

// Complete reports whether the model signalled completion. Absent
// means done.
func (d AnswerDecision) Complete() bool {
	return d.Done == nil || *d.Done
}

func ParseAnswerArguments(args string) (AnswerDecision, error) {
	var decision AnswerDecision
	if err := json.Unmarshal([]byte(args), &decision); err != nil {
		return AnswerDecision{}, fmt.Errorf("invalid answer_question arguments: %w", err)
	}
	if strings.TrimSpace(decision.Answer) == "" {
		return AnswerDecision{}, fmt.Errorf("answer is required")
	}
	return decision, nil
}
