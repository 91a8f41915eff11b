package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/channel-watch/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// DefaultConfigFiles are probed in order when no explicit path is given.
var DefaultConfigFiles = []string{
	"config.yaml",
	"config.yml",
	"config.json",
	"config.toml",
}

type Config struct {
	APIID          int        `koanf:"api_id"`
	APIHash        string     `koanf:"api_hash"`
	SessionFile    string     `koanf:"session_file"`
	SessionString  string     `koanf:"session_string"`
	AuthMethod     AuthMethod `koanf:"auth_method"`
	NotifyMode     NotifyMode `koanf:"notify_mode"`
	BotToken       string     `koanf:"bot_token"`
	Recipients     []string   `koanf:"-"`
	Channels       []string   `koanf:"-"`
	Keywords       []string   `koanf:"-"`
	StatusInterval int        `koanf:"status_interval"`
	AlbumLookback  int        `koanf:"album_lookback"`
	HTTPPort       string     `koanf:"http_port"`
	LogLevel       string     `koanf:"log_level"`
	AppEnv         AppEnv     `koanf:"app_env"`
}

// Load reads the config file at path (or the first default file found in
// the working directory) and lets environment variables override it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	configFile, found := path, path != ""
	if !found {
		// Use lo.Find to find the first existing config file
		configFile, found = lo.Find(DefaultConfigFiles, func(file string) bool {
			_, err := os.Stat(file)
			return err == nil
		})
	}

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values.
	// API_HASH -> api_hash
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	// Set defaults
	if !k.Exists("session_file") {
		k.Set("session_file", "./session.txt")
	}
	if !k.Exists("auth_method") {
		k.Set("auth_method", "qr")
	}
	if !k.Exists("notify_mode") {
		k.Set("notify_mode", "bot")
	}
	if !k.Exists("status_interval") {
		// CHECK_INTERVAL_MS is the legacy millisecond spelling.
		if ms := k.Int("check_interval_ms"); ms > 0 {
			k.Set("status_interval", max(ms/1000, 1))
		} else {
			k.Set("status_interval", 60)
		}
	}
	if !k.Exists("album_lookback") {
		k.Set("album_lookback", 10)
	}
	if !k.Exists("log_level") {
		k.Set("log_level", "info")
	}
	if !k.Exists("app_env") {
		k.Set("app_env", "production")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	// koanf returns lists as a string from env vars or as a slice from config files
	cfg.Recipients = ParseList(k.Get("telegram_user_ids"))
	cfg.Channels = ParseList(k.Get("channels_to_watch"))
	cfg.Keywords = ParseList(k.Get("keywords"))

	authMethod, err := ParseAuthMethod(k.String("auth_method"))
	if err != nil {
		return nil, oops.With("auth_method", k.String("auth_method")).Wrap(err)
	}
	cfg.AuthMethod = authMethod

	notifyMode, err := ParseNotifyMode(k.String("notify_mode"))
	if err != nil {
		return nil, oops.With("notify_mode", k.String("notify_mode")).Wrap(err)
	}
	cfg.NotifyMode = notifyMode

	if appEnv, err := ParseAppEnv(k.String("app_env")); err == nil {
		cfg.AppEnv = appEnv
	} else {
		cfg.AppEnv = AppEnvProduction
	}

	return &cfg, nil
}

// Validate reports the first missing required setting. It must pass before
// any network activity starts.
func (c *Config) Validate() error {
	if c.APIID == 0 || c.APIHash == "" {
		return errors.ErrMissingAPICredentials
	}
	if len(c.Channels) == 0 {
		return errors.ErrMissingChannels
	}
	if len(c.Keywords) == 0 {
		return errors.ErrMissingKeywords
	}
	if c.NotifyMode == NotifyModeBot && c.BotToken == "" {
		return errors.ErrMissingBotToken
	}
	if len(c.Recipients) == 0 {
		return errors.ErrMissingRecipients
	}
	return nil
}

// StatusEvery is the periodic status report interval.
func (c *Config) StatusEvery() time.Duration {
	return time.Duration(c.StatusInterval) * time.Second
}

// MaskedAPIHash shows only the first characters of the API hash for logs.
func (c *Config) MaskedAPIHash() string {
	if c.APIHash == "" {
		return "NOT SET"
	}
	return fmt.Sprintf("%s... (set)", c.APIHash[:min(4, len(c.APIHash))])
}

// ParseList turns a comma-separated string or a config-file array into a
// list of trimmed, non-empty strings.
func ParseList(v any) []string {
	var parts []string
	switch val := v.(type) {
	case nil:
		return []string{}
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []interface{}:
		parts = lo.Map(val, func(item interface{}, _ int) string {
			return fmt.Sprint(item)
		})
	default:
		parts = []string{fmt.Sprint(val)}
	}

	return lo.FilterMap(parts, func(part string, _ int) (string, bool) {
		part = strings.TrimSpace(part)
		return part, part != ""
	})
}
