package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Training TrainingConfig `mapstructure:"training"`
	Codec    CodecConfig    `mapstructure:"codec"`
	Store    StoreConfig    `mapstructure:"store"`
	History  HistoryConfig  `mapstructure:"history"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	UI       UIConfig       `mapstructure:"ui"`
}

type TrainingConfig struct {
	MaxVocabSize int    `mapstructure:"max_vocab_size"`
	DataLimit    int    `mapstructure:"data_limit"`
	Normalize    string `mapstructure:"normalize"`
}

type CodecConfig struct {
	UnknownPolicy string `mapstructure:"unknown_policy"`
	// PolicySet is true when unknown_policy came from the config file or
	// the environment rather than the default
	PolicySet bool `mapstructure:"-"`
}

type StoreConfig struct {
	Dir       string `mapstructure:"dir"`
	Format    string `mapstructure:"format"`
	CacheSize int    `mapstructure:"cache_size"`
	MaxModels int    `mapstructure:"max_models"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type UIConfig struct {
	Color    bool `mapstructure:"color"`
	Progress bool `mapstructure:"progress"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	subwordDir := filepath.Join(home, ".subword")

	return &Config{
		Training: TrainingConfig{
			MaxVocabSize: 55,
			DataLimit:    1000,
			Normalize:    "none",
		},
		Codec: CodecConfig{
			UnknownPolicy: "error",
		},
		Store: StoreConfig{
			Dir:       filepath.Join(subwordDir, "models"),
			Format:    "json",
			CacheSize: 8,
			MaxModels: 0,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(subwordDir, "history.db"),
		},
		Logging: LoggingConfig{
			Level:   "info",
			File:    "",
			Console: true,
		},
		UI: UIConfig{
			Color:    true,
			Progress: false,
		},
	}
}

// Load loads configuration from file, environment, and defaults
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".subword"))
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SUBWORD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is okay, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	_, envPolicy := os.LookupEnv("SUBWORD_CODEC_UNKNOWN_POLICY")
	cfg.Codec.PolicySet = v.InConfig("codec.unknown_policy") || envPolicy

	cfg.ExpandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Training.MaxVocabSize < 0 {
		return errors.New("training.max_vocab_size must not be negative")
	}

	validNormalizers := []string{"none", "nfc", "nfkc"}
	if !contains(validNormalizers, c.Training.Normalize) {
		return fmt.Errorf("training.normalize must be one of: %v", validNormalizers)
	}

	validPolicies := []string{"error", "skip"}
	if !contains(validPolicies, c.Codec.UnknownPolicy) {
		return fmt.Errorf("codec.unknown_policy must be one of: %v", validPolicies)
	}

	validFormats := []string{"json", "yaml"}
	if !contains(validFormats, c.Store.Format) {
		return fmt.Errorf("store.format must be one of: %v", validFormats)
	}

	if c.Store.CacheSize < 1 {
		return errors.New("store.cache_size must be at least 1")
	}

	if c.Store.MaxModels < 0 {
		return errors.New("store.max_models must not be negative")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	return nil
}

// ExpandPaths expands ~ and environment variables in paths
func (c *Config) ExpandPaths() {
	c.Store.Dir = expandPath(c.Store.Dir)
	c.History.Path = expandPath(c.History.Path)
	c.Logging.File = expandPath(c.Logging.File)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("training.max_vocab_size", cfg.Training.MaxVocabSize)
	v.SetDefault("training.data_limit", cfg.Training.DataLimit)
	v.SetDefault("training.normalize", cfg.Training.Normalize)

	v.SetDefault("codec.unknown_policy", cfg.Codec.UnknownPolicy)

	v.SetDefault("store.dir", cfg.Store.Dir)
	v.SetDefault("store.format", cfg.Store.Format)
	v.SetDefault("store.cache_size", cfg.Store.CacheSize)
	v.SetDefault("store.max_models", cfg.Store.MaxModels)

	v.SetDefault("history.enabled", cfg.History.Enabled)
	v.SetDefault("history.path", cfg.History.Path)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.console", cfg.Logging.Console)

	v.SetDefault("ui.color", cfg.UI.Color)
	v.SetDefault("ui.progress", cfg.UI.Progress)
}
