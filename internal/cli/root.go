package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/normalia/internal/logging"
	"github.com/ppiankov/normalia/internal/model"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "normalia",
	Short: "Normalia - token correction overlay for historical text normalization",
	Long: `Normalia shows a tokenized document with reviewer corrections overlaid
on contiguous token ranges, and edits those corrections on the remote store.

The remote store is the source of truth. Every edit is sent, then the
document is refetched and re-rendered; positions that changed are reported.

Normalia never decides what a correction should be. Candidates come from
the document itself or from an optional external suggestion service.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		level := logging.ParseLevel(cfg.Logging.Level)
		if verbose {
			level = logging.ParseLevel("debug")
		}
		logging.Init(level, logging.ParseFormat(cfg.Logging.Format), os.Stderr)
		return nil
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context so in-flight gateway calls stop.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Normalia.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "normalia %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.normalia/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().String("gateway", "", "gateway base URL (overrides gateway.base_url)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("gateway.base_url", rootCmd.PersistentFlags().Lookup("gateway"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".normalia"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// NORMALIA_GATEWAY_BASE_URL -> gateway.base_url
	viper.SetEnvPrefix("NORMALIA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("suggest.api_key", "NORMALIA_SUGGEST_API_KEY", "OPENAI_API_KEY")

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env overrides reach Unmarshal
func setDefaults(v *viper.Viper, cfg *model.Config) {
	v.SetDefault("gateway.base_url", cfg.Gateway.BaseURL)
	v.SetDefault("gateway.token", cfg.Gateway.Token)
	v.SetDefault("gateway.timeout", cfg.Gateway.Timeout)
	v.SetDefault("gateway.requests_per_second", cfg.Gateway.RequestsPerSecond)
	v.SetDefault("gateway.burst", cfg.Gateway.Burst)
	v.SetDefault("gateway.user_agent", cfg.Gateway.UserAgent)
	v.SetDefault("gateway.http_proxy", cfg.Gateway.HTTPProxy)
	v.SetDefault("gateway.https_proxy", cfg.Gateway.HTTPSProxy)
	v.SetDefault("gateway.no_proxy", cfg.Gateway.NoProxy)

	v.SetDefault("animation.highlight_window", cfg.Animation.HighlightWindow)
	v.SetDefault("animation.sweep_interval", cfg.Animation.SweepInterval)

	v.SetDefault("export.concurrency", cfg.Export.Concurrency)
	v.SetDefault("export.use_tags", cfg.Export.UseTags)
	v.SetDefault("export.output_dir", cfg.Export.OutputDir)

	v.SetDefault("suggest.provider", cfg.Suggest.Provider)
	v.SetDefault("suggest.model", cfg.Suggest.Model)
	v.SetDefault("suggest.api_key", cfg.Suggest.APIKey)
	v.SetDefault("suggest.base_url", cfg.Suggest.BaseURL)
	v.SetDefault("suggest.max_tokens", cfg.Suggest.MaxTokens)
	v.SetDefault("suggest.cache_ttl", cfg.Suggest.CacheTTL)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}

// loadConfig merges defaults, config file, env and flags
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
