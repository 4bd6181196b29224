package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ETFSheet/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Sheet struct {
		InstrumentsFile string        `yaml:"instruments_file"`
		Timezone        string        `yaml:"timezone"`      // exchange session timezone
		RiskFreeRate    float64       `yaml:"risk_free_rate"` // percentage units
		Workers         int           `yaml:"workers"`
		LookbackDays    int           `yaml:"lookback_days"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
	} `yaml:"sheet"`
	Yahoo struct {
		BaseURL   string        `yaml:"base_url"`
		UserAgent string        `yaml:"user_agent"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"yahoo"`
	Backend struct {
		Type string `yaml:"type"` // clickhouse, kafka, or none
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Cache struct {
		Enabled  bool          `yaml:"enabled"`
		Host     string        `yaml:"host"`
		Port     int           `yaml:"port"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix"`
		SheetTTL time.Duration `yaml:"sheet_ttl"`
	} `yaml:"cache"`
	GitHub struct {
		Enabled   bool   `yaml:"enabled"`
		APIBase   string `yaml:"api_base"`
		Token     string `yaml:"token"`
		RepoOwner string `yaml:"repo_owner"`
		RepoName  string `yaml:"repo_name"`
		FilePath  string `yaml:"file_path"`
	} `yaml:"github"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("INSTRUMENTS_FILE"); v != "" {
		c.Sheet.InstrumentsFile = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("SHEET_WORKERS"); v != "" {
		c.Sheet.Workers = util.ParseIntDefault(v, c.Sheet.Workers)
	}
	if v := os.Getenv("RISK_FREE_RATE"); v != "" {
		c.Sheet.RiskFreeRate = util.ParseFloatDefault(v, c.Sheet.RiskFreeRate)
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Backend.Type {
	case "clickhouse", "kafka", "none":
	case "":
		return fmt.Errorf("backend.type is required")
	default:
		return fmt.Errorf("backend.type must be 'clickhouse', 'kafka' or 'none', got '%s'", c.Backend.Type)
	}
	if c.Sheet.InstrumentsFile == "" {
		return fmt.Errorf("sheet.instruments_file is required")
	}
	if c.Backend.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty with the kafka backend")
	}
	if c.GitHub.Enabled && (c.GitHub.RepoOwner == "" || c.GitHub.RepoName == "") {
		return fmt.Errorf("github.repo_owner and github.repo_name are required when github.enabled")
	}
	return nil
}

// Defaults applied after load for optional knobs.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Sheet.Timezone == "" {
		c.Sheet.Timezone = "America/New_York"
	}
	if c.Sheet.RiskFreeRate == 0 {
		c.Sheet.RiskFreeRate = 5
	}
	if c.Sheet.Workers <= 0 {
		c.Sheet.Workers = 4
	}
	if c.Sheet.LookbackDays <= 0 {
		c.Sheet.LookbackDays = 400
	}
	if c.Yahoo.BaseURL == "" {
		c.Yahoo.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.Yahoo.UserAgent == "" {
		c.Yahoo.UserAgent = "curl/8"
	}
	if c.Yahoo.Timeout <= 0 {
		c.Yahoo.Timeout = 30 * time.Second
	}
	if c.GitHub.APIBase == "" {
		c.GitHub.APIBase = "https://api.github.com"
	}
	if c.GitHub.FilePath == "" {
		c.GitHub.FilePath = "etf_data_with_returns.csv"
	}
	if c.Cache.SheetTTL <= 0 {
		c.Cache.SheetTTL = 15 * time.Minute
	}
}
