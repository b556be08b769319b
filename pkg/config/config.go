// Package config loads skills-mcp settings from viper: flags, SKILLS_MCP_*
// environment variables, an optional config.yaml and a local .env file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skills-mcp/pkg/skills"
	"github.com/jingkaihe/skills-mcp/pkg/telemetry"
)

// EnvPrefix is the prefix of environment variables read by viper
const EnvPrefix = "SKILLS_MCP"

const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"

	LocaleEnglish = "en"
	LocaleChinese = "zh"
)

// HTTPConfig holds the HTTP transport settings
type HTTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Config is the complete runtime configuration
type Config struct {
	SkillsDir   string           `mapstructure:"skills_dir"`
	Exclude     []string         `mapstructure:"exclude"`
	Locale      string           `mapstructure:"locale"`
	Minimal     bool             `mapstructure:"minimal"`
	TopN        int              `mapstructure:"top_n"`
	KeywordTool bool             `mapstructure:"keyword_tool"`
	LogLevel    string           `mapstructure:"log_level"`
	LogFormat   string           `mapstructure:"log_format"`
	Transport   string           `mapstructure:"transport"`
	HTTP        HTTPConfig       `mapstructure:"http"`
	Tracing     telemetry.Config `mapstructure:"tracing"`
}

// SetDefaults registers default values for every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("skills_dir", skills.DefaultSkillsDir)
	v.SetDefault("exclude", []string{})
	v.SetDefault("locale", LocaleEnglish)
	v.SetDefault("minimal", false)
	v.SetDefault("top_n", skills.DefaultTopN)
	v.SetDefault("keyword_tool", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "fmt")
	v.SetDefault("transport", TransportStdio)
	v.SetDefault("http.host", "localhost")
	v.SetDefault("http.port", 8765)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "skills-mcp")
	v.SetDefault("tracing.sampler", "ratio")
	v.SetDefault("tracing.ratio", 1.0)
}

// Init prepares the global viper instance: .env loading, environment
// variables, defaults and the optional config file
func Init() error {
	LoadDotEnv(".env")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults(viper.GetViper())

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".skills-mcp"))
	}
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "failed to read config file")
		}
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files when they exist.
// Variables already present in the environment are left untouched.
func LoadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}

// GetConfigFromViper unmarshals and validates the global viper configuration
func GetConfigFromViper() (Config, error) {
	return FromViper(viper.GetViper())
}

// FromViper unmarshals and validates the configuration held by v
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if cfg.SkillsDir == "" {
		cfg.SkillsDir = skills.DefaultSkillsDir
	}
	if cfg.TopN == 0 {
		cfg.TopN = skills.DefaultTopN
	}
	cfg.Locale = strings.ToLower(cfg.Locale)
	if cfg.Locale == "" {
		cfg.Locale = LocaleEnglish
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values
func (c Config) Validate() error {
	switch c.Locale {
	case LocaleEnglish, LocaleChinese:
	default:
		return errors.Errorf("unsupported locale %q, must be one of: %s, %s", c.Locale, LocaleEnglish, LocaleChinese)
	}

	switch c.Transport {
	case TransportStdio, TransportSSE:
	default:
		return errors.Errorf("unsupported transport %q, must be one of: %s, %s", c.Transport, TransportStdio, TransportSSE)
	}

	if c.TopN < 0 {
		return errors.Errorf("top_n cannot be negative: %d", c.TopN)
	}

	if c.Transport == TransportSSE {
		if c.HTTP.Host == "" {
			return errors.New("http.host cannot be empty")
		}
		if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
			return errors.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
		}
	}

	return c.Tracing.Validate()
}

// LoaderOptions returns the skills loader options described by the configuration
func (c Config) LoaderOptions() []skills.Option {
	opts := []skills.Option{skills.WithRoot(c.SkillsDir)}
	if len(c.Exclude) > 0 {
		opts = append(opts, skills.WithExclude(c.Exclude...))
	}
	return opts
}
