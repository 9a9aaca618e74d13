package cmd

import (
	"context"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/decide-fyi/refund-notary/internal/adapter/inbound/http"
	"github.com/decide-fyi/refund-notary/internal/adapter/inbound/mcp"
	auditstore "github.com/decide-fyi/refund-notary/internal/adapter/outbound/audit"
	"github.com/decide-fyi/refund-notary/internal/adapter/outbound/gemini"
	"github.com/decide-fyi/refund-notary/internal/adapter/outbound/rules"
	"github.com/decide-fyi/refund-notary/internal/config"
	"github.com/decide-fyi/refund-notary/internal/domain/refund"
	"github.com/decide-fyi/refund-notary/internal/service"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the notary server",
	Long: `Start the refund notary server.

The server exposes three surfaces on a single HTTP listener:

  /refund/eligibility   JSON eligibility API (also /api/v1/refund/eligibility)
  /mcp                  MCP tool endpoint for agent clients
  /api/decide           Yes/no decision oracle (when oracle.enabled is set)

Examples:
  # Start with config file settings
  refund-notary start

  # Start with a specific config file
  refund-notary --config /path/to/refund-notary.yaml start

  # Start with a custom policy table
  REFUND_NOTARY_RULES_FILE=./policies.yaml refund-notary start`,
	RunE: runStart,
}

var devMode bool

func init() {
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable development mode (verbose logging)")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override dev mode from CLI flag
	if devMode {
		cfg.DevMode = true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Create signal context for graceful shutdown.
	// stop() restores default signal handling so a second Ctrl+C does a hard kill.
	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	go func() {
		<-ctx.Done()
		stop() // Restore default: next Ctrl+C = immediate exit.
	}()

	// Setup logger to stderr (stdout is reserved for the audit stream when
	// audit.output is "stdout").
	// Priority: DevMode=true -> debug, otherwise use configured log_level
	logLevel := parseLogLevel(cfg.Server.LogLevel)
	if cfg.DevMode {
		logLevel = slog.LevelDebug // DevMode always forces debug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	logger.Debug("log level configured", "level", cfg.Server.LogLevel, "effective", logLevel.String())

	// Log config file used if any
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	// Write PID file so "refund-notary stop" can find us.
	pidPath := pidFilePath()
	if err := writePIDFile(pidPath); err != nil {
		logger.Warn("failed to write PID file", "path", pidPath, "error", err)
	} else {
		defer os.Remove(pidPath)
	}

	if err := run(ctx, cfg, logger); err != nil {
		return err
	}

	logger.Info("refund-notary stopped")
	return nil
}

// run wires the policy table, stores, services, and transport together and
// blocks until the context is cancelled or the listener fails.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Tracing: stdout exporter behind a config switch. When disabled the
	// services fall back to the global no-op tracer.
	if cfg.Tracing.Enabled {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		otel.SetTracerProvider(tp)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("trace provider shutdown failed", "error", err)
			}
		}()
		logger.Info("tracing enabled", "exporter", "stdout")
	}

	// Load the policy table: embedded default or rules.file override.
	table, err := rules.Load(cfg.Rules.File)
	if err != nil {
		return fmt.Errorf("failed to load policy table: %w", err)
	}
	logger.Info("policy table loaded",
		"rules_version", table.RulesVersion,
		"vendors", len(table.Vendors),
		"source", rulesSource(cfg.Rules.File),
	)

	// Create the audit store for decision records.
	audits, err := auditstore.NewStore(cfg.Audit.Output, logger)
	if err != nil {
		return fmt.Errorf("failed to create audit store: %w", err)
	}
	defer func() { _ = audits.Close() }()

	engine := refund.NewEngine(table, refund.Strictness(cfg.Validation.Strictness))
	eligibilitySvc := service.NewEligibilityService(engine, audits, logger)

	// Oracle service: only built when enabled. A missing API key keeps the
	// route mounted but unservable, matching the hosted deployment.
	var oracleSvc *service.OracleService
	oracleReady := false
	if cfg.Oracle.Enabled {
		if apiKey := cfg.OracleAPIKey(); apiKey != "" {
			timeout, parseErr := time.ParseDuration(cfg.Oracle.Timeout)
			if parseErr != nil {
				timeout = 8 * time.Second
				logger.Warn("invalid oracle.timeout, using default",
					"value", cfg.Oracle.Timeout, "default", "8s")
			}
			clientOpts := []gemini.Option{
				gemini.WithModel(cfg.Oracle.Model),
				gemini.WithTimeout(timeout),
			}
			if cfg.Oracle.Endpoint != "" {
				clientOpts = append(clientOpts, gemini.WithEndpoint(cfg.Oracle.Endpoint))
			}
			client := gemini.NewClient(apiKey, clientOpts...)
			oracleSvc = service.NewOracleService(client, audits, logger)
			oracleReady = true
			logger.Info("oracle enabled", "model", cfg.Oracle.Model)
		} else {
			logger.Warn("oracle enabled but API key is not set, /api/decide will fail",
				"env", cfg.Oracle.APIKeyEnv)
		}
	}

	healthChecker := http.NewHealthChecker(
		table.RulesVersion,
		len(table.Vendors),
		oracleReady,
		cfg.Audit.Output,
		Version,
	)

	shutdownTimeout, err := time.ParseDuration(cfg.Server.ShutdownTimeout)
	if err != nil {
		shutdownTimeout = 10 * time.Second
		logger.Warn("invalid server.shutdown_timeout, using default",
			"value", cfg.Server.ShutdownTimeout, "default", "10s")
	}

	transportOpts := []http.Option{
		http.WithAddr(cfg.Server.HTTPAddr),
		http.WithAllowedOrigins(cfg.Server.AllowedOrigins),
		http.WithLogger(logger),
		http.WithHealthChecker(healthChecker),
		http.WithShutdownTimeout(shutdownTimeout),
		http.WithMCPHandler(func(m *http.Metrics) stdhttp.Handler {
			return mcp.NewHandler(eligibilitySvc, logger,
				mcp.WithVerdictRecorder(m),
				mcp.WithServerVersion(Version),
			)
		}),
	}
	if cfg.Oracle.Enabled {
		transportOpts = append(transportOpts, http.WithOracle(oracleSvc))
	}

	logger.Info("refund-notary starting",
		"version", Version,
		"dev_mode", cfg.DevMode,
		"http_addr", cfg.Server.HTTPAddr,
		"rules_version", table.RulesVersion,
		"vendors", len(table.Vendors),
		"strictness", cfg.Validation.Strictness,
		"oracle", oracleReady,
		"audit_output", cfg.Audit.Output,
	)

	printBanner(Version, cfg.Server.HTTPAddr, cfg.DevMode, table.RulesVersion, len(table.Vendors), oracleReady)

	transport := http.NewTransport(eligibilitySvc, transportOpts...)
	return transport.Start(ctx)
}

// rulesSource names where the policy table came from, for the startup log.
func rulesSource(file string) string {
	if file == "" {
		return "embedded"
	}
	return file
}

// parseLogLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// printBanner prints a formatted startup banner to stderr with version,
// endpoints, mode, and the active rules version.
func printBanner(version, httpAddr string, devMode bool, rulesVersion string, vendorCount int, oracleReady bool) {
	const (
		reset  = "\033[0m"
		bold   = "\033[1m"
		cyan   = "\033[36m"
		green  = "\033[32m"
		yellow = "\033[33m"
		dim    = "\033[2m"
	)

	host := "http://localhost" + httpAddr
	if !strings.HasPrefix(httpAddr, ":") {
		host = "http://" + httpAddr
	}

	modeStr := green + "production" + reset
	if devMode {
		modeStr = yellow + "development" + reset
	}

	oracleStr := dim + "disabled" + reset
	if oracleReady {
		oracleStr = green + "ready" + reset
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  %s%s Refund Notary %s%s\n", bold, cyan, version, reset)
	fmt.Fprintf(os.Stderr, "  %s─────────────────────────────────────%s\n", dim, reset)
	fmt.Fprintf(os.Stderr, "  %-14s %s/refund/eligibility\n", "Eligibility:", host)
	fmt.Fprintf(os.Stderr, "  %-14s %s/mcp\n", "MCP:", host)
	fmt.Fprintf(os.Stderr, "  %-14s %s\n", "Oracle:", oracleStr)
	fmt.Fprintf(os.Stderr, "  %-14s %s\n", "Mode:", modeStr)
	fmt.Fprintf(os.Stderr, "  %-14s %s\n", "Rules:", rulesVersion)
	fmt.Fprintf(os.Stderr, "  %-14s %d configured\n", "Vendors:", vendorCount)
	fmt.Fprintf(os.Stderr, "  %s─────────────────────────────────────%s\n", dim, reset)
	fmt.Fprintf(os.Stderr, "\n")
}

// pidFilePath returns the standard location for the refund-notary PID file.
func pidFilePath() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".refund-notary", "server.pid")
	}
	return filepath.Join(os.TempDir(), "refund-notary-server.pid")
}

// writePIDFile writes the current process PID to the given path, creating
// parent directories as needed.
func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644)
}
