package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"schedule-agent/internal/di"
	"schedule-agent/internal/infrastructure/env"
)

const defaultModel = "anthropic/claude-sonnet-4"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [--agent] "<natural language query>"

Asks a natural language question about sports schedules, translates it
to SQL, runs it against the hosted schedule database, and summarizes
the matching games.

Flags:
  --agent    run the multi-step planning loop instead of a single
             translate-execute-summarize pass

Environment:
  LLM_API_KEY      API key for the model provider (required)
  LLM_MODEL        model name (default %s)
  LLM_BASE_URL     OpenAI-compatible base URL (default OpenRouter)
  DOLTHUB_OWNER    schedule repository owner (default gmichnikov)
  DOLTHUB_REPO     schedule repository name (default sports-schedules)
  DOLTHUB_BRANCH   schedule repository branch (default main)
  AGENT_MAX_STEPS  agent step budget (default 10)
`, os.Args[0], defaultModel)
}

func main() {
	envService := env.NewEnvService()

	agentMode := flag.Bool("agent", false, "run the multi-step planning loop")
	flag.Usage = usage
	flag.Parse()

	query := strings.TrimSpace(flag.Arg(0))
	if query == "" {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	container, err := di.NewContainer(di.Config{
		Query:         query,
		AgentMode:     *agentMode,
		LLMAPIKey:     envService.MustGet("LLM_API_KEY"),
		LLMModel:      envService.GetDefault("LLM_MODEL", defaultModel),
		LLMBaseURL:    envService.Get("LLM_BASE_URL"),
		DoltHubOwner:  envService.Get("DOLTHUB_OWNER"),
		DoltHubRepo:   envService.Get("DOLTHUB_REPO"),
		DoltHubBranch: envService.Get("DOLTHUB_BRANCH"),
		MaxSteps:      envService.GetInt("AGENT_MAX_STEPS", 10),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer container.Close()

	container.Logger.Info("Query started", "query", query, "agentMode", *agentMode)
	fmt.Printf("Natural language query: %s\n", query)

	result, err := container.QueryExecutor.Execute(ctx, query)
	if err != nil {
		container.Logger.Error("Query failed", "error", err)
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}

	if result.Incomplete {
		container.Logger.Warn("Query incomplete", "steps", result.Steps)
		fmt.Println("\nTask incomplete: step budget exhausted before the agent produced an answer.")
	} else if result.FinalAnswer != "" {
		container.Logger.Info("Query completed", "steps", result.Steps)
		fmt.Println("\nFINAL ANSWER:")
		fmt.Println(result.FinalAnswer)
	}

	container.UI.ShowSummary(ctx, result.Summary)
}
