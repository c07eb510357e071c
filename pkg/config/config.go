package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ErrMissingSetting is returned by Validate when a required value is empty.
var ErrMissingSetting = errors.New("missing required setting")

const (
	StateDriverFile  = "file"
	StateDriverRedis = "redis"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123 (Telegram user ids).
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Channels ChannelsConfig `json:"channels"`
	Gateway  GatewayConfig  `json:"gateway"`
	State    StateConfig    `json:"state"`
	Bridge   BridgeConfig   `json:"bridge"`
	Log      LogConfig      `json:"log"`
}

type ChannelsConfig struct {
	LINE     LINEConfig     `json:"line"`
	Telegram TelegramConfig `json:"telegram"`
}

type LINEConfig struct {
	ChannelSecret      string              `env:"PICOBRIDGE_CHANNELS_LINE_CHANNEL_SECRET"       json:"channel_secret"`
	ChannelAccessToken string              `env:"PICOBRIDGE_CHANNELS_LINE_CHANNEL_ACCESS_TOKEN" json:"channel_access_token"`
	APIEndpoint        string              `env:"PICOBRIDGE_CHANNELS_LINE_API_ENDPOINT"         json:"api_endpoint,omitempty"`
	DefaultDestination string              `env:"PICOBRIDGE_CHANNELS_LINE_DEFAULT_DESTINATION"  json:"default_destination,omitempty"` // seeded when no binding exists
	AllowFrom          FlexibleStringSlice `env:"PICOBRIDGE_CHANNELS_LINE_ALLOW_FROM"           json:"allow_from"`
}

type TelegramConfig struct {
	Token     string              `env:"PICOBRIDGE_CHANNELS_TELEGRAM_TOKEN"      json:"token"`
	ChatID    string              `env:"PICOBRIDGE_CHANNELS_TELEGRAM_CHAT_ID"    json:"chat_id"`
	APIServer string              `env:"PICOBRIDGE_CHANNELS_TELEGRAM_API_SERVER" json:"api_server,omitempty"`
	Proxy     string              `env:"PICOBRIDGE_CHANNELS_TELEGRAM_PROXY"      json:"proxy,omitempty"`
	AllowFrom FlexibleStringSlice `env:"PICOBRIDGE_CHANNELS_TELEGRAM_ALLOW_FROM" json:"allow_from"`
}

type GatewayConfig struct {
	Host               string `env:"PICOBRIDGE_GATEWAY_HOST"                 json:"host"`
	Port               int    `env:"PICOBRIDGE_GATEWAY_PORT"                 json:"port"`
	LINEPath           string `env:"PICOBRIDGE_GATEWAY_LINE_PATH"            json:"line_path"`
	TelegramPath       string `env:"PICOBRIDGE_GATEWAY_TELEGRAM_PATH"        json:"telegram_path"`
	SendTimeoutSeconds int    `env:"PICOBRIDGE_GATEWAY_SEND_TIMEOUT_SECONDS" json:"send_timeout_seconds"`
}

type StateConfig struct {
	Driver        string `env:"PICOBRIDGE_STATE_DRIVER"         json:"driver"` // "file" or "redis"
	Path          string `env:"PICOBRIDGE_STATE_PATH"           json:"path"`
	RedisAddr     string `env:"PICOBRIDGE_STATE_REDIS_ADDR"     json:"redis_addr,omitempty"`
	RedisPassword string `env:"PICOBRIDGE_STATE_REDIS_PASSWORD" json:"redis_password,omitempty"`
	RedisDB       int    `env:"PICOBRIDGE_STATE_REDIS_DB"       json:"redis_db,omitempty"`
	RedisKey      string `env:"PICOBRIDGE_STATE_REDIS_KEY"      json:"redis_key,omitempty"`
}

// BindingPath returns the expanded binding file location for the file driver.
func (s StateConfig) BindingPath() string {
	return expandHome(s.Path)
}

type BridgeConfig struct {
	LINETag       string `env:"PICOBRIDGE_BRIDGE_LINE_TAG"       json:"line_tag"`
	TelegramTag   string `env:"PICOBRIDGE_BRIDGE_TELEGRAM_TAG"   json:"telegram_tag"`
	UnknownSender string `env:"PICOBRIDGE_BRIDGE_UNKNOWN_SENDER" json:"unknown_sender"`
	JoinReply     string `env:"PICOBRIDGE_BRIDGE_JOIN_REPLY"     json:"join_reply"`
}

type LogConfig struct {
	Level  string `env:"PICOBRIDGE_LOG_LEVEL"  json:"level"`
	Format string `env:"PICOBRIDGE_LOG_FORMAT" json:"format"` // "json" or "console"
}

func DefaultConfig() *Config {
	return &Config{
		Channels: ChannelsConfig{
			LINE:     LINEConfig{AllowFrom: FlexibleStringSlice{}},
			Telegram: TelegramConfig{AllowFrom: FlexibleStringSlice{}},
		},
		Gateway: GatewayConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			LINEPath:           "/callback",
			TelegramPath:       "/telegram",
			SendTimeoutSeconds: 10,
		},
		State: StateConfig{
			Driver: StateDriverFile,
			Path:   "~/.picobridge/state/binding.json",
		},
		Bridge: BridgeConfig{
			LINETag:       "LINE",
			TelegramTag:   "Telegram",
			UnknownSender: "Unknown",
			JoinReply:     "This chat is now connected to the Telegram bridge.",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig reads the JSON config at path (a missing file yields defaults)
// and then applies PICOBRIDGE_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks the settings the gateway cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.Channels.LINE.ChannelSecret == "" {
		missing = append(missing, "channels.line.channel_secret")
	}
	if c.Channels.LINE.ChannelAccessToken == "" {
		missing = append(missing, "channels.line.channel_access_token")
	}
	if c.Channels.Telegram.Token == "" {
		missing = append(missing, "channels.telegram.token")
	}
	if c.Channels.Telegram.ChatID == "" {
		missing = append(missing, "channels.telegram.chat_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}
	return c.State.Validate()
}

// Validate checks the state section on its own; the binding CLI needs only this.
func (s StateConfig) Validate() error {
	switch s.Driver {
	case "", StateDriverFile:
		if s.Path == "" {
			return fmt.Errorf("%w: state.path", ErrMissingSetting)
		}
	case StateDriverRedis:
		if s.RedisAddr == "" {
			return fmt.Errorf("%w: state.redis_addr", ErrMissingSetting)
		}
	default:
		return fmt.Errorf("unknown state driver %q", s.Driver)
	}
	return nil
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
