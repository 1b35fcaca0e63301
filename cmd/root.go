package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/TRIBE-INC/tribe-api/analytics"
	"github.com/TRIBE-INC/tribe-api/auth"
	"github.com/TRIBE-INC/tribe-api/config"
	"github.com/TRIBE-INC/tribe-api/filter"
	"github.com/TRIBE-INC/tribe-api/telemetry"
)

var (
	cfgFile         string
	cfg             *config.Config
	logger          zerolog.Logger
	apiClient       analytics.API
	telemetryClient *telemetry.Client
	authManager     *auth.Manager
	formatter       *analytics.ConsoleFormatter
	filterManager   *filter.Manager

	appVersion   = "dev"
	appBuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tribe",
	Short: "Productivity analytics for the Tribe platform",
	Long: `tribe is a CLI for the Tribe analytics platform. It lists productivity
insights and usage events, tracks new events, searches the knowledge base,
and spools telemetry for batched ingestion.`,
	PersistentPreRunE: initializeApp,
}

// SetVersion records the version stamped into the binary at build time
func SetVersion(version, buildTime string) {
	appVersion = version
	appBuildTime = buildTime
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tribe/config.yaml)")
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Token manager for browser login sessions
	tokenPath, err := auth.DefaultTokenPath()
	if err != nil {
		return err
	}
	authManager = auth.NewManager(auth.Endpoints{
		TokenURL:     cfg.Auth.TokenURL,
		AuthorizeURL: cfg.Auth.AuthorizeURL,
		ClientID:     cfg.Auth.ClientID,
		RedirectPort: cfg.Auth.RedirectPort,
	}, auth.NewStore(tokenPath), logger)

	apiKey := resolveAPIKey(cmd.Context())

	clientOpts := []analytics.Option{
		analytics.WithTimeout(time.Duration(cfg.API.Timeout) * time.Second),
		analytics.WithUserAgent("tribe-cli/" + appVersion),
	}

	// Create analytics client
	apiClient, err = analytics.NewClient(cfg.API.BaseURL, apiKey, logger, clientOpts...)
	if err != nil {
		return fmt.Errorf("failed to create analytics client: %w", err)
	}

	// Create telemetry client
	telemetryClient, err = telemetry.NewClient(cfg.Telemetry.BaseURL, apiKey, logger, clientOpts...)
	if err != nil {
		return fmt.Errorf("failed to create telemetry client: %w", err)
	}

	formatter = analytics.NewConsoleFormatter()

	// Saved filters from config become available as presets
	filterManager = filter.NewManager()
	if len(cfg.Filter.Presets) > 0 {
		presets := make(map[string]string, len(cfg.Filter.Presets))
		for name, preset := range cfg.Filter.Presets {
			presets[name] = preset.Expression
		}
		if err := filterManager.RegisterFilters(presets); err != nil {
			return fmt.Errorf("invalid filter preset: %w", err)
		}
	}

	return nil
}

// resolveAPIKey picks the bearer credential for API calls. An explicit key
// wins, then a stored OAuth session, then the placeholder, which the server
// rejects with 401.
func resolveAPIKey(ctx context.Context) string {
	if cfg.API.Key != "" && cfg.API.Key != analytics.PlaceholderAPIKey {
		return cfg.API.Key
	}

	if token, err := authManager.AccessToken(ctx); err == nil {
		return token
	}

	return analytics.PlaceholderAPIKey
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, color only when stderr is a terminal
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
