package agentloop

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedule-agent/internal/adapter/tool"
	"schedule-agent/internal/application/port/output"
	"schedule-agent/internal/application/service"
	"schedule-agent/internal/domain/entity"
	"schedule-agent/internal/infrastructure/logger"
)

// scriptedLLM plays back a fixed sequence of assistant messages.
type scriptedLLM struct {
	index     int
	responses []entity.Message
}

func (s *scriptedLLM) Chat(_ context.Context, _ output.ChatRequest) (*output.ChatResponse, error) {
	if s.index >= len(s.responses) {
		return nil, fmt.Errorf("script exhausted at call %d", s.index+1)
	}
	msg := s.responses[s.index]
	s.index++
	if msg.Role == "" {
		msg.Role = entity.RoleAssistant
	}
	return &output.ChatResponse{Message: msg}, nil
}

type fakeStore struct {
	set      *entity.ResultSet
	err      error
	executed []string
}

func (f *fakeStore) ExecuteSQL(_ context.Context, sqlText string) (*entity.ResultSet, error) {
	f.executed = append(f.executed, sqlText)
	if f.err != nil {
		return nil, f.err
	}
	return f.set, nil
}

type nopUI struct{}

func (nopUI) ShowIteration(context.Context, int, int)              {}
func (nopUI) ShowToolStart(context.Context, string, string)        {}
func (nopUI) ShowToolResult(context.Context, string, string, bool) {}
func (nopUI) ShowThinking(context.Context, string)                 {}
func (nopUI) ShowSQL(context.Context, string)                      {}
func (nopUI) ShowSummary(context.Context, []string)                {}

func toolCallMsg(rationale string, name entity.ToolName, args string) entity.Message {
	return entity.Message{
		Role:    entity.RoleAssistant,
		Content: rationale,
		ToolCalls: []entity.ToolCall{
			{ID: "call_1", Name: name.String(), Arguments: args},
		},
	}
}

func newLoopUseCase(llm output.LLMPort, store output.ScheduleStorePort, maxSteps int) *UseCase {
	log := logger.NewNop()
	collector := service.NewResultCollector()

	tools := service.NewToolRegistry()
	tools.Register(tool.NewAnalyzeTool(llm, log))
	tools.Register(tool.NewExecuteSQLTool(store, collector, log))
	tools.Register(tool.NewAnswerTool(log))

	return New(llm, tools, collector, log, nopUI{}, maxSteps)
}

func TestExecute_AnswerEndsLoop(t *testing.T) {
	store := &fakeStore{
		set: &entity.ResultSet{
			Columns: []string{"date", "day", "time", "road_team", "home_team"},
			Rows: []map[string]string{
				{"date": "2025-09-19", "day": "Friday", "time": "7:05 PM", "road_team": "Yankees", "home_team": "Tigers"},
			},
			RowCount: 1,
		},
	}
	llm := &scriptedLLM{responses: []entity.Message{
		toolCallMsg("Let me query the schedule.", entity.ToolExecuteSQL, "{\"sql\":\"SELECT * FROM `combined-schedule`\"}"),
		toolCallMsg("", entity.ToolAnswerQuestion, `{"answer":"There is one game on Friday."}`),
	}}

	uc := newLoopUseCase(llm, store, 5)
	result, err := uc.Execute(context.Background(), "any games friday?")

	require.NoError(t, err)
	assert.False(t, result.Incomplete)
	assert.Equal(t, "There is one game on Friday.", result.FinalAnswer)
	assert.Equal(t, 2, result.Steps)
	assert.Equal(t, []string{"Friday 2025-09-19 Yankees @ Tigers"}, result.Summary)
	assert.Len(t, store.executed, 1)
}

func TestExecute_StepIndicesStrictlyIncreasing(t *testing.T) {
	store := &fakeStore{set: &entity.ResultSet{RowCount: 0}}
	llm := &scriptedLLM{responses: []entity.Message{
		toolCallMsg("", entity.ToolExecuteSQL, `{"sql":"SELECT 1"}`),
		toolCallMsg("", entity.ToolExecuteSQL, `{"sql":"SELECT 2"}`),
		toolCallMsg("", entity.ToolAnswerQuestion, `{"answer":"Nothing scheduled."}`),
	}}

	uc := newLoopUseCase(llm, store, 5)
	result, err := uc.Execute(context.Background(), "q")

	require.NoError(t, err)
	require.Len(t, result.Transcript.Steps, 3)
	for i, step := range result.Transcript.Steps {
		assert.Equal(t, i+1, step.Index)
	}
}

func TestExecute_ToolFailureDoesNotEndLoop(t *testing.T) {
	store := &fakeStore{err: fmt.Errorf("sql error: table not found")}
	llm := &scriptedLLM{responses: []entity.Message{
		toolCallMsg("", entity.ToolExecuteSQL, `{"sql":"SELECT * FROM nowhere"}`),
		toolCallMsg("", entity.ToolAnswerQuestion, `{"answer":"I could not find that table."}`),
	}}

	uc := newLoopUseCase(llm, store, 5)
	result, err := uc.Execute(context.Background(), "q")

	require.NoError(t, err)
	require.Len(t, result.Transcript.Steps, 2)
	assert.True(t, result.Transcript.Steps[0].Failed)
	assert.Contains(t, result.Transcript.Steps[0].Result, "Error: ")
	assert.False(t, result.Incomplete)
	assert.Equal(t, "I could not find that table.", result.FinalAnswer)
}

func TestExecute_UnknownToolRecordedAsFailure(t *testing.T) {
	llm := &scriptedLLM{responses: []entity.Message{
		{
			Role:      entity.RoleAssistant,
			ToolCalls: []entity.ToolCall{{ID: "call_1", Name: "fetch_weather", Arguments: `{}`}},
		},
		toolCallMsg("", entity.ToolAnswerQuestion, `{"answer":"Done."}`),
	}}

	uc := newLoopUseCase(llm, &fakeStore{}, 5)
	result, err := uc.Execute(context.Background(), "q")

	require.NoError(t, err)
	require.Len(t, result.Transcript.Steps, 2)
	assert.True(t, result.Transcript.Steps[0].Failed)
	assert.Contains(t, result.Transcript.Steps[0].Result, "unknown tool")
}

func multiCallMsg() entity.Message {
	return entity.Message{
		Role: entity.RoleAssistant,
		ToolCalls: []entity.ToolCall{
			{ID: "call_1", Name: entity.ToolExecuteSQL.String(), Arguments: `{"sql":"SELECT 1"}`},
			{ID: "call_2", Name: entity.ToolExecuteSQL.String(), Arguments: `{"sql":"SELECT 2"}`},
			{ID: "call_3", Name: entity.ToolAnswerQuestion.String(), Arguments: `{"answer":"Nothing scheduled."}`},
		},
	}
}

func TestExecute_MultipleToolCallsInOneReply(t *testing.T) {
	store := &fakeStore{set: &entity.ResultSet{RowCount: 0}}
	llm := &scriptedLLM{responses: []entity.Message{multiCallMsg()}}

	uc := newLoopUseCase(llm, store, 5)
	result, err := uc.Execute(context.Background(), "q")

	require.NoError(t, err)
	require.Len(t, result.Transcript.Steps, 3)
	for i, step := range result.Transcript.Steps {
		assert.Equal(t, i+1, step.Index)
	}
	assert.False(t, result.Incomplete)
	assert.Equal(t, "Nothing scheduled.", result.FinalAnswer)
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, store.executed)
}

func TestExecute_MultipleToolCallsCappedByBudget(t *testing.T) {
	store := &fakeStore{set: &entity.ResultSet{RowCount: 0}}
	llm := &scriptedLLM{responses: []entity.Message{multiCallMsg()}}

	uc := newLoopUseCase(llm, store, 2)
	result, err := uc.Execute(context.Background(), "q")

	require.NoError(t, err)
	assert.True(t, result.Incomplete)
	assert.Equal(t, 2, result.Steps)
	// The third call never runs, so no answer is recorded.
	assert.Empty(t, result.FinalAnswer)
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, store.executed)
}

func TestExecute_LongObservationIsTruncated(t *testing.T) {
	store := &fakeStore{set: &entity.ResultSet{
		Columns:  []string{"location"},
		Rows:     []map[string]string{{"location": strings.Repeat("x", maxObservationLen+100)}},
		RowCount: 1,
	}}
	llm := &scriptedLLM{responses: []entity.Message{
		toolCallMsg("", entity.ToolExecuteSQL, `{"sql":"SELECT 1"}`),
		toolCallMsg("", entity.ToolAnswerQuestion, `{"answer":"Done."}`),
	}}

	uc := newLoopUseCase(llm, store, 5)
	result, err := uc.Execute(context.Background(), "q")

	require.NoError(t, err)
	obs := result.Transcript.Steps[0].Result
	assert.True(t, strings.HasSuffix(obs, "... (truncated)"))
	assert.LessOrEqual(t, len(obs), maxObservationLen+len("\n... (truncated)"))
}

func TestExecute_StepBudgetExhausted(t *testing.T) {
	store := &fakeStore{set: &entity.ResultSet{RowCount: 0}}
	llm := &scriptedLLM{responses: []entity.Message{
		toolCallMsg("", entity.ToolExecuteSQL, `{"sql":"SELECT 1"}`),
		toolCallMsg("", entity.ToolExecuteSQL, `{"sql":"SELECT 2"}`),
		toolCallMsg("", entity.ToolExecuteSQL, `{"sql":"SELECT 3"}`),
	}}

	uc := newLoopUseCase(llm, store, 2)
	result, err := uc.Execute(context.Background(), "q")

	require.NoError(t, err)
	assert.True(t, result.Incomplete)
	assert.Equal(t, 2, result.Steps)
	assert.Empty(t, result.FinalAnswer)
	// SQL ran and returned nothing, so the summary still reports that.
	assert.Equal(t, []string{service.NoMatchingGames}, result.Summary)
}

func TestExecute_PlainTextReplyIsFinalAnswer(t *testing.T) {
	llm := &scriptedLLM{responses: []entity.Message{
		{Role: entity.RoleAssistant, Content: "There are no games in that window."},
	}}

	uc := newLoopUseCase(llm, &fakeStore{}, 5)
	result, err := uc.Execute(context.Background(), "q")

	require.NoError(t, err)
	assert.False(t, result.Incomplete)
	assert.Equal(t, "There are no games in that window.", result.FinalAnswer)
	assert.Empty(t, result.Transcript.Steps)
	assert.Empty(t, result.Summary)
}

func TestExecute_DraftAnswerContinues(t *testing.T) {
	llm := &scriptedLLM{responses: []entity.Message{
		toolCallMsg("", entity.ToolAnswerQuestion, `{"answer":"Draft answer.","done":false}`),
		toolCallMsg("", entity.ToolAnswerQuestion, `{"answer":"Final answer.","done":true}`),
	}}

	uc := newLoopUseCase(llm, &fakeStore{}, 5)
	result, err := uc.Execute(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "Final answer.", result.FinalAnswer)
	assert.Equal(t, 2, result.Steps)
}

func TestExecute_LLMErrorIsFatal(t *testing.T) {
	llm := &scriptedLLM{} // empty script errors on first call

	uc := newLoopUseCase(llm, &fakeStore{}, 5)
	result, err := uc.Execute(context.Background(), "q")

	require.Error(t, err)
	assert.Nil(t, result)
}
