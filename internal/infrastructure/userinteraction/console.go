package userinteraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"schedule-agent/internal/application/port/output"
	"schedule-agent/internal/domain/entity"
)

var _ output.UserInteractionPort = (*ConsoleUserInteraction)(nil)

type ConsoleUserInteraction struct{}

func NewConsoleUserInteraction() *ConsoleUserInteraction {
	return &ConsoleUserInteraction{}
}

func (u *ConsoleUserInteraction) ShowIteration(ctx context.Context, iteration, maxIterations int) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Printf("\n━━━ Step %d/%d ━━━\n", iteration, maxIterations)
}

func (u *ConsoleUserInteraction) ShowThinking(ctx context.Context, content string) {
	if content == "" {
		return
	}

	blue := color.New(color.FgBlue)
	blue.Print("\n💭 Thinking: ")

	dim := color.New(color.Faint)
	dim.Println(truncate(content, 500))
}

func (u *ConsoleUserInteraction) ShowToolStart(ctx context.Context, toolName, arguments string) {
	icon, name := getToolDisplay(toolName)

	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Printf("\n%s %s\n", icon, name)

	summary := formatToolArguments(toolName, arguments)
	if summary != "" {
		dim := color.New(color.Faint)
		dim.Printf("   %s\n", summary)
	}
}

func (u *ConsoleUserInteraction) ShowToolResult(ctx context.Context, toolName, result string, isError bool) {
	if isError {
		red := color.New(color.FgRed)
		red.Print("❌ Error: ")

		dim := color.New(color.Faint)
		dim.Println(truncate(result, 300))
		return
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ %s\n", formatToolResult(toolName, result))
}

func (u *ConsoleUserInteraction) ShowSQL(ctx context.Context, sqlText string) {
	yellow := color.New(color.FgYellow)
	yellow.Println("\nGenerated SQL query:")
	fmt.Println(sqlText)
	fmt.Println(strings.Repeat("-", 50))
}

func (u *ConsoleUserInteraction) ShowSummary(ctx context.Context, lines []string) {
	if len(lines) == 0 {
		return
	}

	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Println("\nMatching games:")
	for _, line := range lines {
		fmt.Printf("  - %s\n", line)
	}
}

func getToolDisplay(toolName string) (string, string) {
	displays := map[string][2]string{
		entity.ToolAnalyzeQuestion.String(): {"🔍", "Analyzing question"},
		entity.ToolExecuteSQL.String():      {"🗄️", "Executing SQL"},
		entity.ToolAnswerQuestion.String():  {"💬", "Answering"},
	}

	if display, ok := displays[toolName]; ok {
		return display[0], display[1]
	}
	return "🔧", toolName
}

func formatToolArguments(toolName, arguments string) string {
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ""
	}

	switch toolName {
	case entity.ToolAnalyzeQuestion.String():
		if question, ok := args["question"].(string); ok {
			return fmt.Sprintf("Question: %s", truncate(question, 80))
		}

	case entity.ToolExecuteSQL.String():
		if sqlText, ok := args["sql"].(string); ok {
			return fmt.Sprintf("SQL: %s", truncate(normalizeWhitespace(sqlText), 120))
		}

	case entity.ToolAnswerQuestion.String():
		if answer, ok := args["answer"].(string); ok {
			return truncate(answer, 80)
		}
	}

	return ""
}

func formatToolResult(toolName, result string) string {
	switch toolName {
	case entity.ToolExecuteSQL.String():
		// Keep the row count line, drop the row preview.
		if idx := strings.IndexByte(result, '\n'); idx > 0 {
			return result[:idx]
		}
		return truncate(result, 120)
	case entity.ToolAnswerQuestion.String():
		return "Answer recorded"
	}
	return truncate(normalizeWhitespace(result), 120)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
