package prompts

import (
	_ "embed"
)

//go:embed schema.txt
var scheduleSchema string

//go:embed translator.txt
var translatorTemplate string

//go:embed agent_system.txt
var agentSystemTemplate string

//go:embed analysis.txt
var analysisTemplate string
