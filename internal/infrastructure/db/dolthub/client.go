package dolthub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"schedule-agent/internal/application/port/output"
	"schedule-agent/internal/domain/entity"
)

var _ output.ScheduleStorePort = (*Client)(nil)

const maxErrorBodyLen = 500

// Client runs SQL against the DoltHub SQL API. Queries go out as GET
// requests with the statement in the q parameter; results come back as
// JSON rows keyed by column name.
type Client struct {
	baseURL    string
	owner      string
	repo       string
	branch     string
	httpClient *http.Client
	logger     output.LoggerPort
}

type Config struct {
	BaseURL string
	Owner   string
	Repo    string
	Branch  string
	Timeout time.Duration
	Logger  output.LoggerPort
}

func DefaultConfig() Config {
	return Config{
		BaseURL: "https://www.dolthub.com",
		Owner:   "gmichnikov",
		Repo:    "sports-schedules",
		Branch:  "main",
		Timeout: 30 * time.Second,
	}
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		branch:     cfg.Branch,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}
}

type queryResponse struct {
	QueryExecutionStatus  string              `json:"query_execution_status"`
	QueryExecutionMessage string              `json:"query_execution_message"`
	Columns               []string            `json:"columns"`
	Rows                  []map[string]string `json:"rows"`
}

func (c *Client) ExecuteSQL(ctx context.Context, sqlText string) (*entity.ResultSet, error) {
	endpoint := fmt.Sprintf("%s/api/v1alpha1/%s/%s/%s", c.baseURL, c.owner, c.repo, c.branch)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build dolthub request: %w", err)
	}
	params := url.Values{}
	params.Set("q", sqlText)
	req.URL.RawQuery = params.Encode()

	if c.logger != nil {
		c.logger.Info("Executing SQL", "repo", c.owner+"/"+c.repo, "sql", sqlText)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dolthub request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read dolthub response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dolthub returned HTTP %d: %s", resp.StatusCode, truncate(string(body), maxErrorBodyLen))
	}

	var payload queryResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode dolthub response: %w", err)
	}

	if payload.QueryExecutionStatus == "Error" {
		msg := payload.QueryExecutionMessage
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("sql error: %s", msg)
	}

	return &entity.ResultSet{
		Columns:  payload.Columns,
		Rows:     payload.Rows,
		RowCount: len(payload.Rows),
	}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
