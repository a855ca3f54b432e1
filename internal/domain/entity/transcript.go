package entity

// Step is one think-act-observe iteration of the agent loop.
// Steps are appended in order and never mutated afterwards.
type Step struct {
	Index     int
	Rationale string
	Tool      ToolName
	Arguments string
	Result    string
	Failed    bool
}

// Transcript is the ordered record of all steps taken while answering
// one query. It lives for a single invocation.
type Transcript struct {
	Query       string
	Steps       []Step
	FinalAnswer string
}

func (t *Transcript) Append(step Step) {
	t.Steps = append(t.Steps, step)
}
