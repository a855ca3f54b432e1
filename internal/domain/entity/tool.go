package entity

type ToolName string

const (
	ToolAnalyzeQuestion ToolName = "analyze_question"
	ToolExecuteSQL      ToolName = "execute_sql"
	ToolAnswerQuestion  ToolName = "answer_question"
)

func (t ToolName) String() string {
	return string(t)
}
