// Package config resolves repocat settings from flags, environment, an
// optional YAML file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DefaultOutput is the combined document written when no output is given.
const DefaultOutput = "combined_output.txt"

// Config is the fully resolved run configuration.
type Config struct {
	Branch            string          `mapstructure:"branch"`
	Path              string          `mapstructure:"path"`
	Output            string          `mapstructure:"output"`
	Manifest          string          `mapstructure:"manifest"`
	ExcludeExtensions []string        `mapstructure:"exclude_extensions"`
	GitHub            GitHubConfig    `mapstructure:"github"`
	Log               LogConfig       `mapstructure:"log"`
	Telemetry         TelemetryConfig `mapstructure:"telemetry"`
}

// GitHubConfig selects the API endpoint and credentials.
type GitHubConfig struct {
	Token             string `mapstructure:"token"`
	APIURL            string `mapstructure:"api_url"`
	RawURL            string `mapstructure:"raw_url"`
	AppID             int64  `mapstructure:"app_id"`
	AppInstallationID int64  `mapstructure:"app_installation_id"`
	AppPrivateKeyPath string `mapstructure:"app_private_key_path"`
}

// LogConfig mirrors pkg/logging options.
type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

// TelemetryConfig toggles OTLP export.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SetDefaults registers every key with its default and wires environment
// lookups: REPOCAT_<KEY> for all keys, plus the conventional GITHUB_TOKEN,
// GITHUB_API_URL, LOG_FORMAT and LOG_LEVEL.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("branch", "")
	v.SetDefault("path", "")
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("manifest", "")
	v.SetDefault("exclude_extensions", []string{})
	v.SetDefault("github.token", "")
	v.SetDefault("github.api_url", "")
	v.SetDefault("github.raw_url", "")
	v.SetDefault("github.app_id", 0)
	v.SetDefault("github.app_installation_id", 0)
	v.SetDefault("github.app_private_key_path", "")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("telemetry.enabled", false)

	v.SetEnvPrefix("REPOCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("github.token", "REPOCAT_GITHUB_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv("github.api_url", "REPOCAT_GITHUB_API_URL", "GITHUB_API_URL")
	_ = v.BindEnv("log.format", "REPOCAT_LOG_FORMAT", "LOG_FORMAT")
	_ = v.BindEnv("log.level", "REPOCAT_LOG_LEVEL", "LOG_LEVEL")
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate reports configuration that cannot produce a run.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Output) == "" {
		errs = append(errs, errors.New("output must not be empty"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	g := c.GitHub
	set := 0
	for _, ok := range []bool{g.AppID != 0, g.AppInstallationID != 0, g.AppPrivateKeyPath != ""} {
		if ok {
			set++
		}
	}
	if set != 0 && set != 3 {
		errs = append(errs, errors.New("github app auth needs app_id, app_installation_id and app_private_key_path together"))
	}
	return errors.Join(errs...)
}
