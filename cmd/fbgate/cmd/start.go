package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/thevickypedia/fbgate/internal/config"
	"github.com/thevickypedia/fbgate/internal/service/supervisor"
)

var (
	binaryPath    string
	settingsDir   string
	secretsDir    string
	overridesPath string
	restartBudget int
	proxyEnabled  bool
	devMode       bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Materialize config, import it, and run the child process",
	Long: `Start fbgate: writes config.json and users.json from environment-driven
inputs, imports them into the child binary's own database via its CLI, runs
the child as a managed subprocess, and - when the proxy is enabled - fronts
it with a hardening reverse proxy.

Examples:
  # Run the child directly, no proxy
  BINARY=./filebrowser fbgate start

  # Run with the hardening proxy in front
  BINARY=./filebrowser fbgate start --proxy`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&binaryPath, "binary", os.Getenv("BINARY"), "path to the child file-browsing binary")
	startCmd.Flags().StringVar(&settingsDir, "settings-dir", envOrDefault("SETTINGS_DIR", "."), "directory for generated config.json/users.json")
	startCmd.Flags().StringVar(&secretsDir, "secrets-dir", envOrDefault("SECRETS_DIR", "."), "directory scanned for *user*.env profile files")
	startCmd.Flags().StringVar(&overridesPath, "overrides", os.Getenv("OVERRIDES"), "optional extra.json/extra.yaml overrides file")
	startCmd.Flags().IntVar(&restartBudget, "restart", envOrDefaultInt("RESTART", 0), "child restart attempts on crash (0-10)")
	startCmd.Flags().BoolVar(&proxyEnabled, "proxy", os.Getenv("PROXY") == "true", "front the child with the hardening reverse proxy")
	startCmd.Flags().BoolVar(&devMode, "dev", false, "enable verbose debug logging")
	rootCmd.AddCommand(startCmd)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func runStart(cmd *cobra.Command, args []string) error {
	if binaryPath == "" {
		return fmt.Errorf("a child binary path is required (--binary or BINARY)")
	}
	if restartBudget < 0 || restartBudget > 10 {
		return fmt.Errorf("restart budget must be between 0 and 10, got %d", restartBudget)
	}

	logLevel := slog.LevelInfo
	if devMode {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	serverCfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("load server config: %w", err)
	}

	profiles, err := config.LoadProfiles(secretsDir)
	if err != nil {
		return fmt.Errorf("load user profiles: %w", err)
	}
	if len(profiles) == 0 {
		return fmt.Errorf("no user profiles found in %q (expected *user*.env files)", secretsDir)
	}

	var envCfg *config.EnvConfig
	if proxyEnabled {
		envCfg, err = config.LoadEnvConfig(envFile)
		if err != nil {
			return fmt.Errorf("load proxy config: %w", err)
		}
	}

	sup := supervisor.New(supervisor.Options{
		Binary:        binaryPath,
		SettingsDir:   settingsDir,
		Restart:       restartBudget,
		Proxy:         proxyEnabled,
		OverridesPath: overridesPath,
		Profiles:      profiles,
		ServerConfig:  serverCfg,
		EnvConfig:     envCfg,
		Logger:        logger,
	})

	if _, err := sup.CreateUsers(); err != nil {
		return fmt.Errorf("create users: %w", err)
	}
	if err := sup.CreateConfig(); err != nil {
		return fmt.Errorf("create config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	defer stop()

	pidPath := pidFilePath()
	if err := writePIDFile(pidPath); err != nil {
		logger.Warn("failed to write PID file", "path", pidPath, "error", err)
	} else {
		defer os.Remove(pidPath)
	}

	runErr := sup.Start(ctx)
	if cleanupErr := sup.ExitProcess(context.Background()); cleanupErr != nil {
		logger.Warn("cleanup reported an error", "error", cleanupErr)
	}
	if runErr != nil {
		return fmt.Errorf("child run failed: %w", runErr)
	}

	logger.Info("fbgate stopped")
	return nil
}

// pidFilePath returns the standard location for the fbgate PID file.
func pidFilePath() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".fbgate", "server.pid")
	}
	return filepath.Join(os.TempDir(), "fbgate-server.pid")
}

// writePIDFile writes the current process PID to path, creating parent
// directories as needed.
func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644)
}

// readPIDFile reads a PID previously written by writePIDFile, or 0 if the
// file is missing or malformed.
func readPIDFile(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(trimNewline(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
