package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort           = 8080
	DefaultHost           = "127.0.0.1"
	DefaultLogLevel       = "info"
	DefaultMaxFileSize    = 50 * 1024 * 1024 // 50MB
	DefaultDatabaseFile   = "contracts.db"
	DefaultHighlightLimit = 2

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the contract analyzer
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Analysis configuration
	ContractsDirectory string
	DatabasePath       string // empty disables persistence
	MaxFileSize        int64  // Maximum PDF file size in bytes
	HighlightLimit     int    // Clauses per category in highlight views

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:               ModeStdio, // Default to stdio mode for MCP compatibility
		Host:               DefaultHost,
		Port:               DefaultPort,
		ContractsDirectory: currentDir,
		DatabasePath:       filepath.Join(currentDir, DefaultDatabaseFile),
		MaxFileSize:        DefaultMaxFileSize,
		HighlightLimit:     DefaultHighlightLimit,
		Version:            "1.0.0",
		ServerName:         "contract-analyzer",
		LogLevel:           DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.ContractsDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.ContractsDirectory); err == nil {
			cfg.ContractsDirectory = expandedPath
		}
	}
	if cfg.DatabasePath != "" {
		if expandedPath, err := filepath.Abs(cfg.DatabasePath); err == nil {
			cfg.DatabasePath = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("CONTRACT")
	viper.AutomaticEnv()

	// Define flags with Viper
	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.ContractsDirectory)
	viper.SetDefault("db", cfg.DatabasePath)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("highlights", cfg.HighlightLimit)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.ContractsDirectory, "Directory containing contract PDF files")
	pflag.String("db", cfg.DatabasePath, "Path to the analysis database (empty disables persistence)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Int("highlights", cfg.HighlightLimit, "Maximum clauses per category in highlight views")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("db", pflag.Lookup("db"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("highlights", pflag.Lookup("highlights"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nContract Analyzer - extracts and classifies legal clauses from PDF contracts\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/contracts                "+
			"# stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --db=/var/lib/contracts.db              # custom database location\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081 # server on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  CONTRACT_MODE        Server mode\n")
		fmt.Fprintf(os.Stderr, "  CONTRACT_HOST        Server host\n")
		fmt.Fprintf(os.Stderr, "  CONTRACT_PORT        Server port\n")
		fmt.Fprintf(os.Stderr, "  CONTRACT_DIR         Contracts directory\n")
		fmt.Fprintf(os.Stderr, "  CONTRACT_DB          Database path\n")
		fmt.Fprintf(os.Stderr, "  CONTRACT_LOGLEVEL    Log level\n")
		fmt.Fprintf(os.Stderr, "  CONTRACT_MAXFILESIZE Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  CONTRACT_HIGHLIGHTS  Highlight limit\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.ContractsDirectory = viper.GetString("dir")
	cfg.DatabasePath = viper.GetString("db")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.HighlightLimit = viper.GetInt("highlights")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate contracts directory
	if c.ContractsDirectory == "" {
		return errors.New("contracts directory cannot be empty")
	}

	// Check if contracts directory exists, create if it doesn't
	if _, err := os.Stat(c.ContractsDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.ContractsDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create contracts directory %s: %w", c.ContractsDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access contracts directory %s: %w", c.ContractsDirectory, err)
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate highlight limit
	if c.HighlightLimit <= 0 {
		return errors.New("highlight limit must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, ContractsDirectory: %s, DatabasePath: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.ContractsDirectory, c.DatabasePath, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true if the analyzer is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the analyzer is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
