package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skiffworks/skiff/internal/api"
	"github.com/skiffworks/skiff/internal/auth"
	"github.com/skiffworks/skiff/internal/backend"
	"github.com/skiffworks/skiff/internal/load"
	"github.com/skiffworks/skiff/internal/logger"
	"github.com/skiffworks/skiff/internal/session"
	"github.com/skiffworks/skiff/internal/state"
	"github.com/skiffworks/skiff/internal/telemetry"
	"github.com/skiffworks/skiff/pkg/config"
	"github.com/skiffworks/skiff/pkg/metrics"
	promMetrics "github.com/skiffworks/skiff/pkg/metrics/prometheus"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the skiffd daemon",
	Long: `Start the skiffd daemon with the specified configuration.

By default, the daemon runs in the background. Use --foreground to run in
the foreground for debugging or when managed by a process supervisor.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/skiff/config.toml.

Examples:
  # Start in background (default)
  skiffd start

  # Start in foreground
  skiffd start --foreground

  # Start with custom config file
  skiffd start --config /etc/skiff/config.toml

  # Start with environment variable overrides
  SKIFF_LOGGING_LEVEL=DEBUG skiffd start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/skiff/skiffd.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/skiff/skiffd.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry (if enabled)
	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "skiffd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	// Initialize Pyroscope profiling (if enabled)
	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "skiffd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("Starting skiffd", "version", Version)
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))

	// Metrics registry must exist before any component that records metrics.
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("Metrics enabled", "path", "/metrics")
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Token authority. A missing secret gets an ephemeral one; tokens then
	// stop verifying across restarts.
	secret, err := cfg.Auth.SecretBytes()
	if err != nil {
		return err
	}
	if secret == nil {
		secret, err = auth.GenerateSecret()
		if err != nil {
			return fmt.Errorf("failed to generate token secret: %w", err)
		}
		logger.Info("No token secret configured; generated an ephemeral one. " +
			"Tokens will not survive a restart. Set auth.token_secret to persist them.")
	}

	tokens, err := auth.NewService(auth.Config{
		Secret:          secret,
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Credential verifier. A configured auth.users table gets bcrypt checks;
	// without one, any non-empty pair is accepted.
	verifier := auth.VerifierForUsers(cfg.Auth.Users)
	if len(cfg.Auth.Users) == 0 {
		logger.Info("No auth.users table configured; accepting any non-empty credentials")
	} else {
		logger.Info("Credential verification enabled", "users", len(cfg.Auth.Users))
	}

	// Backend gateway
	gateway := backend.NewWithTimeout(cfg.Backend.URL, cfg.Backend.Timeout)
	switch {
	case cfg.Backend.Token != "":
		gateway.SetToken(cfg.Backend.Token)
	case cfg.Backend.Username != "":
		if err := gateway.Login(ctx, cfg.Backend.Username, cfg.Backend.Password); err != nil {
			return fmt.Errorf("backend login failed: %w", err)
		}
		logger.Info("Backend login succeeded", "url", cfg.Backend.URL)
	}

	// Coordination state and session handling
	st := state.New(cfg.Transfers.MaxConcurrent, promMetrics.NewServerMetrics())
	sessions := session.NewHandler(tokens, verifier, gateway, st)

	// Load probe
	probe := load.NewProbe(st, cfg.Load.ProbeInterval)
	go probe.Run(ctx)
	logger.Info("Load probe running", "interval", cfg.Load.ProbeInterval.String())

	// HTTP/WebSocket server
	router := api.NewRouter(tokens, verifier, st, sessions)
	server := api.NewServer(api.Config{
		ListenAddr:   cfg.Server.ListenAddr,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, router)

	// Write PID file if specified
	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Daemon is running. Press Ctrl+C to stop.",
		"addr", fmt.Sprintf("%s:%d", cfg.Server.ListenAddr, cfg.Server.Port),
		"backend", cfg.Backend.URL)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", logger.Err(err))
			return err
		}
		logger.Info("Daemon stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("Server error", logger.Err(err))
			return err
		}
		logger.Info("Daemon stopped")
	}

	return nil
}

// startDaemon starts the server as a background daemon process.
func startDaemon() error {
	stateDir := GetDefaultStateDir()
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	pidPath := pidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	// Check if already running
	if _, err := os.Stat(pidPath); err == nil {
		pidData, err := os.ReadFile(pidPath)
		if err == nil {
			var pid int
			if _, err := fmt.Sscanf(string(pidData), "%d", &pid); err == nil {
				if process, err := os.FindProcess(pid); err == nil {
					if err := process.Signal(syscall.Signal(0)); err == nil {
						return fmt.Errorf("skiffd is already running (PID %d)\nUse 'skiffd stop' to stop the running instance", pid)
					}
				}
			}
		}
		// Stale PID file, remove it
		_ = os.Remove(pidPath)
	}

	logPath := logFile
	if logPath == "" {
		logPath = GetDefaultLogFile()
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	daemonArgs := []string{"start", "--foreground", "--pid-file", pidPath}
	if GetConfigFile() != "" {
		daemonArgs = append(daemonArgs, "--config", GetConfigFile())
	}

	cmd := exec.Command(executable, daemonArgs...)

	logFileHandle, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	cmd.Stdout = logFileHandle
	cmd.Stderr = logFileHandle

	// Detach from parent process
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := cmd.Start(); err != nil {
		_ = logFileHandle.Close()
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	_ = logFileHandle.Close()

	fmt.Printf("skiffd started in background (PID %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidPath)
	fmt.Printf("  Log file: %s\n", logPath)
	fmt.Println("\nUse 'skiffd stop' to stop the daemon")
	fmt.Println("Use 'skiffd status' to check daemon status")

	return nil
}
