package prompts

import (
	"bytes"
	"text/template"
	"time"
)

const exampleQuery = "SELECT league, `date`, day, `time`, home_team, road_team, location\n" +
	"FROM `combined-schedule`\n" +
	"WHERE LOWER(home_state) IN (LOWER('NY'), LOWER('NJ'))\n" +
	"AND `date` >= '2024-12-19' AND `date` <= '2024-12-26'\n" +
	"ORDER BY `date`, `time` ASC"

type promptData struct {
	Schema       string
	CurrentDate  string
	ExampleQuery string
	Question     string
}

// CurrentEasternDate formats the given instant as a calendar date in US
// Eastern time. The schedule data is published against Eastern dates,
// so relative phrases in questions resolve against this.
func CurrentEasternDate(now time.Time) string {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("EST", -5*60*60)
	}
	return now.In(loc).Format("2006-01-02")
}

// GenerateTranslatorPrompt builds the single-shot NL-to-SQL prompt.
func GenerateTranslatorPrompt(question string, now time.Time) (string, error) {
	return render("translator", translatorTemplate, promptData{
		Schema:       scheduleSchema,
		CurrentDate:  CurrentEasternDate(now),
		ExampleQuery: exampleQuery,
		Question:     question,
	})
}

// GenerateAgentSystemPrompt builds the system prompt for agent mode.
func GenerateAgentSystemPrompt(now time.Time) (string, error) {
	return render("agent_system", agentSystemTemplate, promptData{
		Schema:      scheduleSchema,
		CurrentDate: CurrentEasternDate(now),
	})
}

// GenerateAnalysisPrompt builds the system prompt for the
// analyze_question tool.
func GenerateAnalysisPrompt(now time.Time) (string, error) {
	return render("analysis", analysisTemplate, promptData{
		Schema:      scheduleSchema,
		CurrentDate: CurrentEasternDate(now),
	})
}

func render(name, tmplText string, data promptData) (string, error) {
	tmpl, err := template.New(name).Parse(tmplText)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
