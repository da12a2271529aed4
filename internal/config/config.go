package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Transport  TransportConfig  `yaml:"transport"`
	Storage    StorageConfig    `yaml:"storage"`
	Projects   ProjectsConfig   `yaml:"projects"`
	QuickTasks QuickTasksConfig `yaml:"quick_tasks"`
	Clients    ClientsConfig    `yaml:"clients"`
	Views      ViewsConfig      `yaml:"views"`
	Contact    ContactConfig    `yaml:"contact"`
	Export     ExportConfig     `yaml:"export"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// AuthToken is the bearer token required in http mode. Empty disables auth.
	AuthToken string `yaml:"auth_token"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "stdio" or "http"
}

type StorageConfig struct {
	Path       string `yaml:"path"`
	QuotaBytes int64  `yaml:"quota_bytes"`
}

type ProjectsConfig struct {
	Key              string        `yaml:"key"`
	SaveDebounce     time.Duration `yaml:"save_debounce"`
	MaxDocumentBytes int           `yaml:"max_document_bytes"`
	Currencies       []string      `yaml:"currencies"`
}

type QuickTasksConfig struct {
	Key           string        `yaml:"key"`
	SaveDebounce  time.Duration `yaml:"save_debounce"`
	MaxItems      int           `yaml:"max_items"`
	KeepCompleted int           `yaml:"keep_completed"`
}

type ClientsConfig struct {
	Key          string        `yaml:"key"`
	SaveDebounce time.Duration `yaml:"save_debounce"`
	// Language orders client suggestions, as a BCP 47 tag.
	Language string `yaml:"language"`
}

type ViewsConfig struct {
	PageSize int           `yaml:"page_size"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type ContactConfig struct {
	CountryCode string `yaml:"country_code"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
	// Timezone for dates in exports; "Local" or an IANA name.
	Timezone string `yaml:"timezone"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		Storage: StorageConfig{
			Path:       "taskdesk.db",
			QuotaBytes: 10 * 1024 * 1024,
		},
		Projects: ProjectsConfig{
			Key:              "task_management_data",
			SaveDebounce:     500 * time.Millisecond,
			MaxDocumentBytes: 5 * 1024 * 1024,
			Currencies:       []string{"USD", "EUR", "GBP", "CAD", "AUD", "ILS"},
		},
		QuickTasks: QuickTasksConfig{
			Key:           "quick-tasks",
			SaveDebounce:  300 * time.Millisecond,
			MaxItems:      100,
			KeepCompleted: 20,
		},
		Clients: ClientsConfig{
			Key:      "task_management_clients",
			Language: "he",
		},
		Views: ViewsConfig{
			PageSize: 20,
			CacheTTL: 5 * time.Minute,
		},
		Contact: ContactConfig{
			CountryCode: "972",
		},
		Export: ExportConfig{
			Dir:      "exports",
			Timezone: "Local",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("TASKDESK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("TASKDESK_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("TASKDESK_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid TASKDESK_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if token := os.Getenv("TASKDESK_AUTH_TOKEN"); token != "" {
		cfg.Server.AuthToken = token
	}
	if mode := os.Getenv("TASKDESK_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dbPath := os.Getenv("TASKDESK_DB_PATH"); dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if quota := os.Getenv("TASKDESK_STORAGE_QUOTA_BYTES"); quota != "" {
		n, err := strconv.ParseInt(quota, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TASKDESK_STORAGE_QUOTA_BYTES: %w", err)
		}
		cfg.Storage.QuotaBytes = n
	}
	if size := os.Getenv("TASKDESK_PAGE_SIZE"); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			return fmt.Errorf("invalid TASKDESK_PAGE_SIZE: %w", err)
		}
		cfg.Views.PageSize = n
	}
	if code := os.Getenv("TASKDESK_COUNTRY_CODE"); code != "" {
		cfg.Contact.CountryCode = code
	}
	if lang := os.Getenv("TASKDESK_LANGUAGE"); lang != "" {
		cfg.Clients.Language = lang
	}
	if dir := os.Getenv("TASKDESK_EXPORT_DIR"); dir != "" {
		cfg.Export.Dir = dir
	}
	if tz := os.Getenv("TASKDESK_TIMEZONE"); tz != "" {
		cfg.Export.Timezone = tz
	}
	if level := os.Getenv("TASKDESK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if path := os.Getenv("TASKDESK_LOG_PATH"); path != "" {
		cfg.Log.Path = path
	}
	return nil
}

var pageSizes = []int{10, 20, 50, 100}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Transport.Mode {
	case "stdio":
	case "http":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
		}
	default:
		errs = append(errs, fmt.Errorf("transport.mode %q must be stdio or http", c.Transport.Mode))
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}
	if c.Storage.QuotaBytes < 0 {
		errs = append(errs, errors.New("storage.quota_bytes must not be negative"))
	}
	if c.Projects.SaveDebounce < 0 || c.QuickTasks.SaveDebounce < 0 || c.Clients.SaveDebounce < 0 {
		errs = append(errs, errors.New("save_debounce must not be negative"))
	}
	if len(c.Projects.Currencies) == 0 {
		errs = append(errs, errors.New("projects.currencies must not be empty"))
	}
	if c.QuickTasks.MaxItems <= 0 {
		errs = append(errs, errors.New("quick_tasks.max_items must be positive"))
	}
	if c.QuickTasks.KeepCompleted > c.QuickTasks.MaxItems {
		errs = append(errs, errors.New("quick_tasks.keep_completed must not exceed max_items"))
	}
	if !slices.Contains(pageSizes, c.Views.PageSize) {
		errs = append(errs, fmt.Errorf("views.page_size %d must be one of %v", c.Views.PageSize, pageSizes))
	}
	if _, err := c.Clients.Tag(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Export.Location(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Tag parses the collation language.
func (c ClientsConfig) Tag() (language.Tag, error) {
	if c.Language == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.Und, fmt.Errorf("clients.language %q: %w", c.Language, err)
	}
	return tag, nil
}

// Location resolves the export timezone.
func (c ExportConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("export.timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
