package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "SKILLFLOW"

// ConfigFileName is the file name searched for in config directories.
const ConfigFileName = "skillflow.yaml"

// Loader handles Viper-based configuration loading.
//
// Create instances with [NewLoader]. A Loader is not safe for concurrent use.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new [Loader] with defaults and environment bindings applied.
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short aliases for the settings people override most.
	_ = v.BindEnv("terminal.shell", EnvPrefix+"_SHELL", EnvPrefix+"_TERMINAL_SHELL")
	_ = v.BindEnv("execution.continue_on_error", EnvPrefix+"_CONTINUE_ON_ERROR", EnvPrefix+"_EXECUTION_CONTINUE_ON_ERROR")
	_ = v.BindEnv("log.level", EnvPrefix+"_LOG_LEVEL")

	return &Loader{v: v}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("execution.continue_on_error", d.Execution.ContinueOnError)
	v.SetDefault("execution.poll_interval", d.Execution.PollInterval)

	v.SetDefault("terminal.shell", d.Terminal.Shell)
	v.SetDefault("terminal.dir", d.Terminal.Dir)
	v.SetDefault("terminal.session", d.Terminal.Session)
	v.SetDefault("terminal.tail_lines", d.Terminal.TailLines)

	v.SetDefault("http.timeout", d.HTTP.Timeout)

	v.SetDefault("db.default", d.DB.Default)

	v.SetDefault("files.download_dir", d.Files.DownloadDir)
	v.SetDefault("files.upload_url", d.Files.UploadURL)

	v.SetDefault("skills.dir", d.Skills.Dir)
	v.SetDefault("runs.dir", d.Runs.Dir)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("output.truncate_lines", d.Output.TruncateLines)
	v.SetDefault("output.truncate_length", d.Output.TruncateLength)
}

// Load reads configuration following the documented priority order.
//
// A missing config file is not an error; defaults and environment overrides
// still apply.
func (l *Loader) Load() (*Config, error) {
	if path := os.Getenv(EnvPrefix + "_CONFIG_PATH"); path != "" {
		return l.LoadFromFile(path)
	}

	l.v.SetConfigName(strings.TrimSuffix(ConfigFileName, filepath.Ext(ConfigFileName)))
	l.v.SetConfigType("yaml")
	if dir, err := ConfigDir(); err == nil {
		l.v.AddConfigPath(dir)
	}
	l.v.AddConfigPath(".")

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return l.unmarshal()
}

// LoadFromFile reads configuration from an explicit file path.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.HTTP.Headers == nil {
		cfg.HTTP.Headers = map[string]string{}
	}
	if cfg.DB.Connections == nil {
		cfg.DB.Connections = map[string]ConnectionConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigDir returns the platform-standard skillflow configuration directory.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(dir, "skillflow"), nil
}

// DefaultConfigPath returns the path of the config file in [ConfigDir].
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// MustLoad loads configuration and panics on error.
func MustLoad() *Config {
	cfg, err := NewLoader().Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// SupportedDrivers lists the database drivers DB steps can use.
var SupportedDrivers = []string{"sqlite", "postgres"}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	for name, conn := range c.DB.Connections {
		if !isSupportedDriver(conn.Driver) {
			return fmt.Errorf("db connection %q: unsupported driver %q (want one of %s)",
				name, conn.Driver, strings.Join(SupportedDrivers, ", "))
		}
		if conn.DSN == "" {
			return fmt.Errorf("db connection %q: dsn is required", name)
		}
	}

	if c.DB.Default != "" {
		if _, ok := c.Connection(c.DB.Default); !ok {
			return fmt.Errorf("db default %q does not name a configured connection", c.DB.Default)
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}

	if c.Execution.PollInterval <= 0 {
		return fmt.Errorf("execution.poll_interval must be positive")
	}

	return nil
}

// Connection looks up a database connection by name, ignoring case.
//
// Viper lower-cases map keys, so qualifiers such as "DB:Reporting" must match
// "reporting" in the config file.
func (c *Config) Connection(name string) (ConnectionConfig, bool) {
	if conn, ok := c.DB.Connections[name]; ok {
		return conn, true
	}
	for k, conn := range c.DB.Connections {
		if strings.EqualFold(k, name) {
			return conn, true
		}
	}
	return ConnectionConfig{}, false
}

func isSupportedDriver(driver string) bool {
	for _, d := range SupportedDrivers {
		if d == driver {
			return true
		}
	}
	return false
}
