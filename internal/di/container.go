package di

import (
	"fmt"
	"time"

	"schedule-agent/internal/adapter/tool"
	"schedule-agent/internal/application/port/input"
	"schedule-agent/internal/application/port/output"
	"schedule-agent/internal/application/service"
	"schedule-agent/internal/infrastructure/db/dolthub"
	"schedule-agent/internal/infrastructure/llm/openaicompat"
	"schedule-agent/internal/infrastructure/logger"
	"schedule-agent/internal/infrastructure/userinteraction"
	"schedule-agent/internal/usecase/agentloop"
	"schedule-agent/internal/usecase/oneshot"
)

type Container struct {
	LLM           output.LLMPort
	Store         output.ScheduleStorePort
	Logger        output.LoggerPort
	Tools         output.ToolRegistry
	UI            output.UserInteractionPort
	QueryExecutor input.QueryExecutor
}

type Config struct {
	Query          string
	AgentMode      bool
	LLMAPIKey      string
	LLMModel       string
	LLMBaseURL     string
	DoltHubOwner   string
	DoltHubRepo    string
	DoltHubBranch  string
	RequestTimeout time.Duration
	MaxSteps       int
}

func NewContainer(cfg Config) (*Container, error) {
	log, err := logger.NewZapAdapter(cfg.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	llmCfg := openaicompat.DefaultConfig(cfg.LLMAPIKey, cfg.LLMModel)
	if cfg.LLMBaseURL != "" {
		llmCfg.BaseURL = cfg.LLMBaseURL
	}
	llmCfg.Logger = log
	llm := openaicompat.NewAdapter(llmCfg)

	storeCfg := dolthub.DefaultConfig()
	if cfg.DoltHubOwner != "" {
		storeCfg.Owner = cfg.DoltHubOwner
	}
	if cfg.DoltHubRepo != "" {
		storeCfg.Repo = cfg.DoltHubRepo
	}
	if cfg.DoltHubBranch != "" {
		storeCfg.Branch = cfg.DoltHubBranch
	}
	if cfg.RequestTimeout > 0 {
		storeCfg.Timeout = cfg.RequestTimeout
	}
	storeCfg.Logger = log
	store := dolthub.NewClient(storeCfg)

	ui := userinteraction.NewConsoleUserInteraction()
	collector := service.NewResultCollector()

	var executor input.QueryExecutor
	if cfg.AgentMode {
		tools := service.NewToolRegistry()
		tools.Register(tool.NewAnalyzeTool(llm, log))
		tools.Register(tool.NewExecuteSQLTool(store, collector, log))
		tools.Register(tool.NewAnswerTool(log))

		executor = agentloop.New(llm, tools, collector, log, ui, cfg.MaxSteps)

		return &Container{
			LLM:           llm,
			Store:         store,
			Logger:        log,
			Tools:         tools,
			UI:            ui,
			QueryExecutor: executor,
		}, nil
	}

	executor = oneshot.New(llm, store, log, ui)

	return &Container{
		LLM:           llm,
		Store:         store,
		Logger:        log,
		UI:            ui,
		QueryExecutor: executor,
	}, nil
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}
