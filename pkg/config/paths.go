package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Paths is the table of gateway files the dashboard reads and writes.
type Paths struct {
	JobsFile        string
	OpenclawConfig  string
	GatewayLog      string
	GatewayErrLog   string
	SessionsMain    string
	SessionsShared  string
	CronRunsDir     string
	GatewayLogDir   string
	FeedwatcherDir  string
	ArticlesFile    string
	KindleSentFile  string
	LinkedinMapFile string
	FeedsFile       string
	SeenFile        string
	FeedWatcherLog  string
	LinkedinDrafts  string
	DecisionsFile   string
	WatchedChats    string
	WatchdogState   string
	WatchdogLog     string
}

// Paths derives the file table from the configured roots.
func (c *Config) Paths() Paths {
	feedDir := c.BlogWatcher.FeedwatcherDir
	if feedDir == "" {
		feedDir = filepath.Join(c.OpenclawDir, ".feedwatcher")
	}
	return Paths{
		JobsFile:        filepath.Join(c.OpenclawDir, "cron", "jobs.json"),
		OpenclawConfig:  filepath.Join(c.OpenclawDir, "openclaw.json"),
		GatewayLog:      filepath.Join(c.OpenclawDir, "logs", "gateway.log"),
		GatewayErrLog:   filepath.Join(c.OpenclawDir, "logs", "gateway.err.log"),
		SessionsMain:    filepath.Join(c.OpenclawDir, "agents", "main", "sessions"),
		SessionsShared:  filepath.Join(c.OpenclawDir, "agents", "shared", "sessions"),
		CronRunsDir:     filepath.Join(c.OpenclawDir, "cron", "runs"),
		GatewayLogDir:   c.GatewayLogDir,
		FeedwatcherDir:  feedDir,
		ArticlesFile:    filepath.Join(feedDir, "articles.json"),
		KindleSentFile:  filepath.Join(feedDir, "kindle-sent.json"),
		LinkedinMapFile: filepath.Join(feedDir, "linkedin-drafts.json"),
		FeedsFile:       filepath.Join(feedDir, "feeds.json"),
		SeenFile:        filepath.Join(feedDir, "seen.json"),
		FeedWatcherLog:  filepath.Join(feedDir, "feed-watcher.log"),
		LinkedinDrafts:  filepath.Join(c.ClawdDir, "linkedin", "drafts"),
		DecisionsFile:   filepath.Join(c.OpenclawDir, "text-processor-decisions.json"),
		WatchedChats:    filepath.Join(c.ClawdDir, "memory", "watched-chats.json"),
		WatchdogState:   filepath.Join(c.ClawdDir, "memory", "watchdog-state.json"),
		WatchdogLog:     filepath.Join(c.ClawdDir, "logs", "message-watchdog.log"),
	}
}

// AgentPaths are the per-agent workspace directories.
type AgentPaths struct {
	Workspace string
	Friends   string
	Skills    string
	Memory    string
	Stories   string
}

type agentEntry struct {
	ID        string `json:"id"`
	Workspace string `json:"workspace"`
}

// AgentWorkspaces reads agents.list from openclaw.json. When the file is
// unreadable the main agent maps to clawd_dir.
func (c *Config) AgentWorkspaces() map[string]string {
	fallback := map[string]string{"main": c.ClawdDir}

	data, err := os.ReadFile(c.Paths().OpenclawConfig)
	if err != nil {
		return fallback
	}
	var doc struct {
		Agents struct {
			List []agentEntry `json:"list"`
		} `json:"agents"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fallback
	}
	m := make(map[string]string, len(doc.Agents.List))
	for _, a := range doc.Agents.List {
		if a.ID != "" && a.Workspace != "" {
			m[a.ID] = ExpandPath(a.Workspace)
		}
	}
	return m
}

// AgentPaths resolves the workspace for agent, falling back to main and then
// to clawd_dir. Contacts live in memory/friends when that directory exists,
// otherwise directly under memory/.
func (c *Config) AgentPaths(agent string) AgentPaths {
	if agent == "" {
		agent = "main"
	}
	m := c.AgentWorkspaces()
	workspace := m[agent]
	if workspace == "" {
		workspace = m["main"]
	}
	if workspace == "" {
		workspace = c.ClawdDir
	}

	memoryDir := filepath.Join(workspace, "memory")
	friends := filepath.Join(memoryDir, "friends")
	if info, err := os.Stat(friends); err != nil || !info.IsDir() {
		friends = memoryDir
	}
	return AgentPaths{
		Workspace: workspace,
		Friends:   friends,
		Skills:    filepath.Join(workspace, "skills"),
		Memory:    memoryDir,
		Stories:   filepath.Join(memoryDir, "stories"),
	}
}
