package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/adrg/xdg"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"

	"ManuscriptTracker/internal/domain"
)

const (
	// AppName names the xdg config directory.
	AppName = "manuscripttracker"

	configPathEnv     = "MANUSCRIPT_TRACKER_CONFIG"
	accountsJSONEnv   = "ACCOUNTS_JSON"
	serverChanKeyEnv  = "SERVERCHAN_SENDKEY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"

	defaultConfigName = "config.yaml"
)

var (
	// ErrNoAccounts means neither the file nor the environment listed an account.
	ErrNoAccounts = errors.New("no accounts configured")
	// ErrInvalidAccount means an account lacks one of its required keys.
	ErrInvalidAccount = errors.New("invalid account")
)

// Config holds high-level settings required across the application.
type Config struct {
	Accounts      []domain.Account   `yaml:"accounts"`
	Portal        PortalConfig       `yaml:"portal"`
	Notifications NotificationConfig `yaml:"notifications"`
	Schedule      ScheduleConfig     `yaml:"schedule"`
	Logging       LoggingConfig      `yaml:"logging"`
	Telemetry     TelemetryConfig    `yaml:"telemetry"`
}

// PortalConfig tunes the Editorial Manager client.
type PortalConfig struct {
	BaseURL           string            `yaml:"baseUrl"`
	Timeout           time.Duration     `yaml:"timeout"`
	Retry             RetryConfig       `yaml:"retry"`
	Headers           map[string]string `yaml:"headers"`
	SuccessMarker     string            `yaml:"successMarker"`
	PageSize          int               `yaml:"pageSize"`
	RequestsPerSecond float64           `yaml:"requestsPerSecond"`
	CloudflareBypass  bool              `yaml:"cloudflareBypass"`
}

// RetryConfig bounds login attempts.
type RetryConfig struct {
	Attempts int           `yaml:"attempts"`
	Delay    time.Duration `yaml:"delay"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Channels   []string         `yaml:"channels"`
	ServerChan ServerChanConfig `yaml:"serverchan"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Email      EmailConfig      `yaml:"email"`
}

// ServerChanConfig is the WeChat push gateway.
type ServerChanConfig struct {
	SendKey  string `yaml:"sendKey"`
	Endpoint string `yaml:"endpoint"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIBase  string `yaml:"apiBase"`
}

// EmailConfig describes the SMTP relay.
type EmailConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// ScheduleConfig controls watch mode. Cron, when set, takes precedence over
// Interval and accepts standard five-field expressions or descriptors.
type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval"`
	Cron     string        `yaml:"cron"`
}

// LoggingConfig selects verbosity and the log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// TelemetryConfig enables trace export when the endpoint is set.
type TelemetryConfig struct {
	OTLPEndpoint string            `yaml:"otlpEndpoint"`
	Headers      map[string]string `yaml:"headers"`
	ServiceName  string            `yaml:"serviceName"`
}

// Load resolves the config file, merges its local override and applies
// environment overrides. An explicit path that does not exist is an error;
// with no path at all the defaults and the environment are used.
func Load(explicitPath string) (Config, string, error) {
	cfg := defaultConfig()

	path, err := resolvePath(explicitPath)
	if err != nil {
		return Config{}, "", err
	}

	if path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			return Config{}, "", err
		}
		if err := mergo.Merge(&cfg, fileCfg, mergo.WithOverride); err != nil {
			return Config{}, "", fmt.Errorf("merge config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, "", err
	}

	return cfg, path, nil
}

func resolvePath(explicit string) (string, error) {
	if explicit == "" {
		explicit = os.Getenv(configPathEnv)
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if _, err := os.Stat(defaultConfigName); err == nil {
		return defaultConfigName, nil
	}
	if found, err := xdg.SearchConfigFile(filepath.Join(AppName, defaultConfigName)); err == nil {
		return found, nil
	}
	return "", nil
}

// readFile decodes <name>.<ext> and merges <name>.local.<ext> over it.
func readFile(path string) (Config, error) {
	var cfg Config
	if err := decodeYAML(path, &cfg); err != nil {
		return Config{}, err
	}

	local := LocalPath(path)
	if _, err := os.Stat(local); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config %s: %w", local, err)
	}

	var override Config
	if err := decodeYAML(local, &override); err != nil {
		return Config{}, err
	}
	if err := mergo.Merge(&cfg, override, mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("merge config %s: %w", local, err)
	}
	return cfg, nil
}

func decodeYAML(path string, out *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// LocalPath maps dir/config.yaml to dir/config.local.yaml.
func LocalPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(accountsJSONEnv); v != "" {
		var accounts []domain.Account
		if err := json5.Unmarshal([]byte(v), &accounts); err != nil {
			return fmt.Errorf("parse %s: %w", accountsJSONEnv, err)
		}
		c.Accounts = accounts
	}

	if v := os.Getenv(serverChanKeyEnv); v != "" {
		c.Notifications.ServerChan.SendKey = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate checks the account list. Placeholder accounts are valid; they are
// skipped at run time.
func (c Config) Validate() error {
	if len(c.Accounts) == 0 {
		return ErrNoAccounts
	}

	var errs []error
	for i, a := range c.Accounts {
		var missing []string
		if strings.TrimSpace(a.ShortName) == "" {
			missing = append(missing, "journal_short_name")
		}
		if strings.TrimSpace(a.FullName) == "" {
			missing = append(missing, "journal_full_name")
		}
		if a.Username == "" {
			missing = append(missing, "username")
		}
		if a.Password == "" {
			missing = append(missing, "password")
		}
		if len(missing) > 0 {
			errs = append(errs, fmt.Errorf("%w: account %d missing %s", ErrInvalidAccount, i, strings.Join(missing, ", ")))
		}
	}
	return errors.Join(errs...)
}

func defaultConfig() Config {
	return Config{
		Portal: PortalConfig{
			BaseURL:       "https://www.editorialmanager.com",
			Timeout:       20 * time.Second,
			Retry:         RetryConfig{Attempts: 3, Delay: 5 * time.Second},
			SuccessMarker: "Default.aspx?pg=AuthorMainMenu.aspx",
			PageSize:      500,
		},
		Notifications: NotificationConfig{
			Channels:   []string{"serverchan"},
			ServerChan: ServerChanConfig{Endpoint: "https://sctapi.ftqq.com"},
		},
		Schedule:  ScheduleConfig{Interval: 24 * time.Hour},
		Logging:   LoggingConfig{Level: "info", File: "em_tracker.log"},
		Telemetry: TelemetryConfig{ServiceName: AppName},
	}
}
