// Package config provides configuration loading and management for skillflow.
//
// Configuration is loaded using Viper, supporting YAML config files and environment
// variable overrides. The package provides sensible defaults that work out of the
// box, with the ability to declare database connections, terminal settings and
// output formatting.
//
// Key types:
//   - [Config] is the root configuration container with all settings
//   - [Loader] handles Viper-based configuration loading
//   - [ConnectionConfig] declares one named database connection for DB steps
//
// Configuration priority (highest to lowest):
//  1. Environment variables (SKILLFLOW_ prefix)
//  2. Config file specified by SKILLFLOW_CONFIG_PATH
//  3. User config directory (platform-standard):
//     - Linux: ~/.config/skillflow/skillflow.yaml
//     - macOS: ~/Library/Application Support/skillflow/skillflow.yaml
//     - Windows: %APPDATA%\skillflow\skillflow.yaml
//  4. ./skillflow.yaml
//  5. [DefaultConfig] defaults
package config

import "time"

// Config represents the root configuration structure.
type Config struct {
	Execution ExecutionConfig `mapstructure:"execution"`
	Terminal  TerminalConfig  `mapstructure:"terminal"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	DB        DBConfig        `mapstructure:"db"`
	Files     FilesConfig     `mapstructure:"files"`
	Skills    SkillsConfig    `mapstructure:"skills"`
	Runs      RunsConfig      `mapstructure:"runs"`
	Log       LogConfig       `mapstructure:"log"`
	Output    OutputConfig    `mapstructure:"output"`
}

// ExecutionConfig controls the workflow executor.
type ExecutionConfig struct {
	// ContinueOnError keeps running later steps after a failure.
	// Wait timeouts always stop the run. Default: false
	ContinueOnError bool `mapstructure:"continue_on_error"`

	// PollInterval is how often wait conditions are re-checked.
	// Default: 1s
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// TerminalConfig controls how terminal steps are run.
type TerminalConfig struct {
	// Shell is the shell used to run commands, e.g. "bash" or "pwsh".
	// Empty selects sh on Unix and cmd on Windows.
	Shell string `mapstructure:"shell"`

	// Dir is the working directory for commands. Empty means the current directory.
	Dir string `mapstructure:"dir"`

	// Session names the terminal session whose output wait log_contains
	// steps search. Default: "default"
	Session string `mapstructure:"session"`

	// TailLines is how many trailing output lines are kept per command result.
	// Default: 20
	TailLines int `mapstructure:"tail_lines"`
}

// HTTPConfig controls API steps and HTTP-based wait conditions.
type HTTPConfig struct {
	// Timeout bounds each request. Default: 30s
	Timeout time.Duration `mapstructure:"timeout"`

	// Headers are added to every request.
	Headers map[string]string `mapstructure:"headers"`
}

// DBConfig declares the database connections DB steps may use.
type DBConfig struct {
	// Default is the connection used by plain [DB] steps.
	Default string `mapstructure:"default"`

	// Connections maps connection names to their settings.
	Connections map[string]ConnectionConfig `mapstructure:"connections"`
}

// ConnectionConfig describes one database connection.
type ConnectionConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`

	// DSN is the driver-specific data source name.
	DSN string `mapstructure:"dsn"`
}

// FilesConfig controls file steps.
type FilesConfig struct {
	// DownloadDir receives files fetched by download steps. Default: "."
	DownloadDir string `mapstructure:"download_dir"`

	// UploadURL is the endpoint upload steps POST files to.
	UploadURL string `mapstructure:"upload_url"`
}

// SkillsConfig locates skill documents.
type SkillsConfig struct {
	// Dir is searched for *.md skill documents. Default: "skills"
	Dir string `mapstructure:"dir"`
}

// RunsConfig controls run report persistence.
type RunsConfig struct {
	// Dir receives one YAML report per run. Default: ".skillflow/runs"
	Dir string `mapstructure:"dir"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is debug, info, warn or error. Default: "info"
	Level string `mapstructure:"level"`

	// Format is "console" or "json". Default: "console"
	Format string `mapstructure:"format"`
}

// OutputConfig contains terminal output formatting configuration.
type OutputConfig struct {
	// TruncateLines is the maximum number of output lines shown per step.
	// Default: 20
	TruncateLines int `mapstructure:"truncate_lines"`

	// TruncateLength is the maximum length of each output line.
	// Default: 80
	TruncateLength int `mapstructure:"truncate_length"`
}

// DefaultConfig returns a new [Config] with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Execution: ExecutionConfig{
			ContinueOnError: false,
			PollInterval:    time.Second,
		},
		Terminal: TerminalConfig{
			Session:   "default",
			TailLines: 20,
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
			Headers: map[string]string{},
		},
		DB: DBConfig{
			Connections: map[string]ConnectionConfig{},
		},
		Files: FilesConfig{
			DownloadDir: ".",
		},
		Skills: SkillsConfig{
			Dir: "skills",
		},
		Runs: RunsConfig{
			Dir: ".skillflow/runs",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			TruncateLines:  20,
			TruncateLength: 80,
		},
	}
}
