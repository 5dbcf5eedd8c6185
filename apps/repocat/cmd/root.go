package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	githubadapter "github.com/tilsley/repocat/apps/repocat/internal/adapters/github"
	"github.com/tilsley/repocat/apps/repocat/internal/combine"
	"github.com/tilsley/repocat/apps/repocat/internal/config"
	platformgithub "github.com/tilsley/repocat/apps/repocat/internal/platform/github"
	"github.com/tilsley/repocat/apps/repocat/internal/platform/telemetry"
	"github.com/tilsley/repocat/apps/repocat/internal/repo"
	"github.com/tilsley/repocat/apps/repocat/internal/walk"
	"github.com/tilsley/repocat/pkg/logging"
)

// NewRootCmd builds the repocat command with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "repocat <owner> <repo> | repocat <owner/repo>",
		Short: "Concatenate every text file of a GitHub repository into one document",
		Long: `repocat walks a repository through the GitHub contents API and writes
every text file into a single document, each preceded by a banner naming
its path. Files with binary extensions (images, archives, media,
executables) are skipped.

When --branch is omitted the repository's default branch is used. An
explicit "main" that does not exist is retried once as "master".`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, name, err := parseRepoArgs(args)
			if err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cmd, cfg, owner, name)
		},
	}

	f := cmd.Flags()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/repocat/config.yaml)")
	f.StringP("branch", "b", "", "branch to read (default: the repository's default branch)")
	f.StringP("path", "p", "", "start at this repository path instead of the root")
	f.StringP("output", "o", config.DefaultOutput, "combined output file")
	f.String("manifest", "", "also write a YAML run manifest to this file")
	f.StringSlice("exclude-ext", nil, "additional extensions to skip, e.g. svg,ico")
	f.String("token", "", "GitHub token (default $GITHUB_TOKEN)")
	f.String("api-url", "", "GitHub API base URL (default $GITHUB_API_URL or https://api.github.com)")
	f.String("raw-url", "", "raw content base URL (default https://raw.githubusercontent.com)")
	f.String("log-format", "text", "log format: text or json")
	f.String("log-level", "info", "log level: debug, info, warn, error")
	f.Bool("otel", false, "export traces and metrics over OTLP")

	config.SetDefaults(v)
	for key, flag := range map[string]string{
		"branch":             "branch",
		"path":               "path",
		"output":             "output",
		"manifest":           "manifest",
		"exclude_extensions": "exclude-ext",
		"github.token":       "token",
		"github.api_url":     "api-url",
		"github.raw_url":     "raw-url",
		"log.format":         "log-format",
		"log.level":          "log-level",
		"telemetry.enabled":  "otel",
	} {
		_ = v.BindPFlag(key, f.Lookup(flag))
	}

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil //nolint:nilerr // no home directory means no default config file
	}
	v.AddConfigPath(filepath.Join(home, ".config", "repocat"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func parseRepoArgs(args []string) (string, string, error) {
	if len(args) == 2 {
		return args[0], args[1], nil
	}
	owner, name, ok := strings.Cut(args[0], "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("expected <owner> <repo> or <owner/repo>, got %q", args[0])
	}
	return owner, name, nil
}

func run(cmd *cobra.Command, cfg config.Config, owner, name string) error {
	ctx := cmd.Context()
	log := logging.NewWith(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Level)

	tel, err := telemetry.New(ctx, cfg.Telemetry.Enabled)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	gh, err := platformgithub.NewClient(platformgithub.Auth{
		Token:          cfg.GitHub.Token,
		AppID:          cfg.GitHub.AppID,
		InstallationID: cfg.GitHub.AppInstallationID,
		PrivateKeyPath: cfg.GitHub.AppPrivateKeyPath,
	}, cfg.GitHub.APIURL)
	if err != nil {
		return err
	}

	_, err = combine.Run(ctx, githubadapter.New(gh), combine.Options{
		Ref:      repo.Ref{Owner: owner, Repo: name, Branch: cfg.Branch},
		Path:     cfg.Path,
		Output:   cfg.Output,
		Manifest: cfg.Manifest,
		RawBase:  cfg.GitHub.RawURL,
		Exclude:  walk.NewExcludeSet(cfg.ExcludeExtensions...),
	}, log)
	return err
}
