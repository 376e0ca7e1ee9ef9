package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type FeaturesConfig struct {
	TextProcessor  bool `mapstructure:"text_processor" json:"text_processor"`
	BlogWatcher    bool `mapstructure:"blog_watcher" json:"blog_watcher"`
	ActiveChats    bool `mapstructure:"active_chats" json:"active_chats"`
	Friends        bool `mapstructure:"friends" json:"friends"`
	Stories        bool `mapstructure:"stories" json:"stories"`
	LinkedinDrafts bool `mapstructure:"linkedin_drafts" json:"linkedin_drafts"`
	Watchdog       bool `mapstructure:"watchdog" json:"watchdog"`
}

type TextProcessorConfig struct {
	ChatDB       string `mapstructure:"chat_db"`
	ContactsFile string `mapstructure:"contacts_file"`
}

type BlogWatcherConfig struct {
	FeedwatcherDir string `mapstructure:"feedwatcher_dir"`
}

type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	StaticDir   string   `mapstructure:"static_dir"`
	AuthToken   string   `mapstructure:"auth_token"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Dir    string `mapstructure:"dir"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is built once at startup and handed to every component that needs
// paths or feature flags.
type Config struct {
	OpenclawDir   string              `mapstructure:"openclaw_dir"`
	BinDir        string              `mapstructure:"bin_dir"`
	ClawdDir      string              `mapstructure:"clawd_dir"`
	UserName      string              `mapstructure:"user_name"`
	DMContext     string              `mapstructure:"dm_context"`
	AppTitle      string              `mapstructure:"app_title"`
	Features      FeaturesConfig      `mapstructure:"features"`
	TextProcessor TextProcessorConfig `mapstructure:"text_processor"`
	BlogWatcher   BlogWatcherConfig   `mapstructure:"blog_watcher"`
	Services      []string            `mapstructure:"services"`
	GatewayLogDir string              `mapstructure:"gateway_log_dir"`
	OpenclawBin   string              `mapstructure:"openclaw_bin"`
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		OpenclawDir: "~/.openclaw",
		BinDir:      "~/bin",
		ClawdDir:    "~/clawd",
		UserName:    "User",
		DMContext:   "Main DM",
		AppTitle:    "OpenClaw Admin",
		Features: FeaturesConfig{
			Friends: true,
			Stories: true,
		},
		Services:      []string{"ai.openclaw.gateway"},
		GatewayLogDir: "/tmp/openclaw",
		OpenclawBin:   "openclaw",
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        3001,
			StaticDir:   "./dist",
			CORSOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath is ~/.config/admin-ui/config.json.
func DefaultPath() string {
	return ExpandPath("~/.config/admin-ui/config.json")
}

// Load reads the JSON config at path over the defaults. A missing file is
// not an error. ADMINUI_* environment variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("ADMINUI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.expand()
	return cfg, nil
}

// setDefaults registers every leaf so AutomaticEnv can see it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("openclaw_dir", d.OpenclawDir)
	v.SetDefault("bin_dir", d.BinDir)
	v.SetDefault("clawd_dir", d.ClawdDir)
	v.SetDefault("user_name", d.UserName)
	v.SetDefault("dm_context", d.DMContext)
	v.SetDefault("app_title", d.AppTitle)
	v.SetDefault("features.text_processor", d.Features.TextProcessor)
	v.SetDefault("features.blog_watcher", d.Features.BlogWatcher)
	v.SetDefault("features.active_chats", d.Features.ActiveChats)
	v.SetDefault("features.friends", d.Features.Friends)
	v.SetDefault("features.stories", d.Features.Stories)
	v.SetDefault("features.linkedin_drafts", d.Features.LinkedinDrafts)
	v.SetDefault("features.watchdog", d.Features.Watchdog)
	v.SetDefault("text_processor.chat_db", "")
	v.SetDefault("text_processor.contacts_file", "")
	v.SetDefault("blog_watcher.feedwatcher_dir", "")
	v.SetDefault("services", d.Services)
	v.SetDefault("gateway_log_dir", d.GatewayLogDir)
	v.SetDefault("openclaw_bin", d.OpenclawBin)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.static_dir", d.Server.StaticDir)
	v.SetDefault("server.auth_token", d.Server.AuthToken)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("log.dir", d.Log.Dir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func (c *Config) expand() {
	c.OpenclawDir = ExpandPath(c.OpenclawDir)
	c.BinDir = ExpandPath(c.BinDir)
	c.ClawdDir = ExpandPath(c.ClawdDir)
	c.TextProcessor.ChatDB = ExpandPath(c.TextProcessor.ChatDB)
	c.TextProcessor.ContactsFile = ExpandPath(c.TextProcessor.ContactsFile)
	c.BlogWatcher.FeedwatcherDir = ExpandPath(c.BlogWatcher.FeedwatcherDir)
	c.GatewayLogDir = ExpandPath(c.GatewayLogDir)
	c.Server.StaticDir = ExpandPath(c.Server.StaticDir)
	c.Log.Dir = ExpandPath(c.Log.Dir)
}

// ExpandPath replaces a leading ~/ with the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// Addr is host:port for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
