package supervisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/thevickypedia/fbgate/internal/adapter/inbound/proxygw"
	"github.com/thevickypedia/fbgate/internal/adapter/outbound/memory"
	"github.com/thevickypedia/fbgate/internal/adapter/outbound/pageviews"
	"github.com/thevickypedia/fbgate/internal/adapter/outbound/sqlitestore"
	"github.com/thevickypedia/fbgate/internal/config"
	"github.com/thevickypedia/fbgate/internal/domain/auth"
	"github.com/thevickypedia/fbgate/internal/domain/originfirewall"
	"github.com/thevickypedia/fbgate/internal/domain/profile"
	"github.com/thevickypedia/fbgate/internal/domain/serverconfig"
	"github.com/thevickypedia/fbgate/internal/domain/session"
)

// childDBFile is the native binary's own on-disk database, always removed
// before a fresh start, per the original's "remove stale filebrowser.db"
// bring-up step.
const childDBFile = "filebrowser.db"

// Options configures a Supervisor. EnvConfig is only required when Proxy
// is true.
type Options struct {
	Binary        string
	SettingsDir   string
	Restart       int // 0-10 restart attempts on child crash
	Proxy         bool
	OverridesPath string
	Profiles      []profile.UserProfile
	ServerConfig  *serverconfig.ConfigSettings
	EnvConfig     *config.EnvConfig
	Logger        *slog.Logger
}

// Supervisor implements the contract in spec.md §4.1: materialize config,
// import it into the child, run the child as a subprocess, optionally run
// the hardening proxy alongside it, and guarantee cleanup on every exit
// path.
type Supervisor struct {
	opts   Options
	logger *slog.Logger
	child  *ChildProcess

	creds      auth.CredentialMap
	httpServer *http.Server
	refresher  *originfirewall.Refresher
}

// New builds a Supervisor from opts.
func New(opts Options) *Supervisor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		opts:   opts,
		logger: logger,
		child:  NewChildProcess(opts.Binary, logger),
	}
}

func (s *Supervisor) usersPath() string  { return filepath.Join(s.opts.SettingsDir, "users.json") }
func (s *Supervisor) configPath() string { return filepath.Join(s.opts.SettingsDir, "config.json") }
func (s *Supervisor) childDBPath() string {
	return filepath.Join(s.opts.SettingsDir, childDBFile)
}

// CreateUsers resolves each profile's permission preset, hashes its
// password, and writes the flattened, 1-based-id-ordered list to
// users.json. It returns the plaintext credential map the proxy needs.
func (s *Supervisor) CreateUsers() (auth.CredentialMap, error) {
	records := make([]profile.UsersJSONRecord, 0, len(s.opts.Profiles))
	creds := make(auth.CredentialMap, len(s.opts.Profiles))

	for i, p := range s.opts.Profiles {
		p.Resolve()
		if p.ScopeWarning != "" {
			s.logger.Warn(p.ScopeWarning)
		}
		hashed, err := profile.HashPassword(p.Authentication.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password for %q: %w", p.Authentication.Username, err)
		}
		if ok := profile.VerifyPassword(p.Authentication.Password, hashed); !ok {
			return nil, fmt.Errorf("hash verification failed for %q", p.Authentication.Username)
		}
		records = append(records, p.ToUsersJSONRecord(i+1, hashed))
		creds[p.Authentication.Username] = p.Authentication.Password
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal users.json: %w", err)
	}
	if err := os.MkdirAll(s.opts.SettingsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(s.usersPath(), data, 0o644); err != nil {
		return nil, fmt.Errorf("write users.json: %w", err)
	}

	s.creds = creds
	return creds, nil
}

// CreateConfig normalizes the server config, forces proxy-trust settings
// when the proxy is enabled, strips trailing underscores from keys,
// merges the optional extra-overrides file, and writes config.json.
func (s *Supervisor) CreateConfig() error {
	cfg := *s.opts.ServerConfig
	cfg.ApplyDefaults()
	if s.opts.Proxy {
		cfg.ForceProxyMode()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate server config: %w", err)
	}

	result := &cfg
	if s.opts.OverridesPath != "" {
		data, err := os.ReadFile(s.opts.OverridesPath)
		if err != nil {
			return fmt.Errorf("read extra overrides %q: %w", s.opts.OverridesPath, err)
		}
		isYAML := serverconfig.DetectOverrideFormat(s.opts.OverridesPath)
		result, err = serverconfig.MergeExtraOverrides(&cfg, data, isYAML)
		if err != nil {
			return fmt.Errorf("merge extra overrides: %w", err)
		}
	}

	data, err := serverconfig.ToJSON(result)
	if err != nil {
		return fmt.Errorf("render config.json: %w", err)
	}
	if err := os.MkdirAll(s.opts.SettingsDir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	return os.WriteFile(s.configPath(), data, 0o644)
}

// ImportConfig invokes "<binary> config import <path>" and asserts a
// zero exit code. Import failures are fatal, per spec.md §4.1.
func (s *Supervisor) ImportConfig(ctx context.Context) error {
	return s.child.RunCLI(ctx, "config", "import", s.configPath())
}

// ImportUsers invokes "<binary> users import <path>" and asserts a zero
// exit code.
func (s *Supervisor) ImportUsers(ctx context.Context) error {
	return s.child.RunCLI(ctx, "users", "import", s.usersPath())
}

// Start removes any stale child DB, imports config and users, optionally
// spawns the proxy in a separate goroutine, then runs the child. Child
// crashes are retried up to Restart times with a 3-second cool-down; a
// cancelled context is a clean exit, never a restart.
func (s *Supervisor) Start(ctx context.Context) error {
	_ = os.Remove(s.childDBPath())

	if err := s.ImportConfig(ctx); err != nil {
		return fmt.Errorf("import config: %w", err)
	}
	if err := s.ImportUsers(ctx); err != nil {
		return fmt.Errorf("import users: %w", err)
	}

	if s.opts.Proxy {
		if err := s.startProxy(ctx); err != nil {
			return fmt.Errorf("start proxy: %w", err)
		}
	}

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if err := s.child.Start(); err != nil {
			return fmt.Errorf("start child: %w", err)
		}
		waitErr := s.child.Wait()
		if ctx.Err() != nil {
			return nil
		}
		if waitErr == nil {
			return nil
		}
		attempts++
		if attempts > s.opts.Restart {
			return fmt.Errorf("child exited %d times, restart budget (%d) exhausted: %w", attempts, s.opts.Restart, waitErr)
		}
		s.logger.Warn("child exited, restarting", "attempt", attempts, "budget", s.opts.Restart, "error", waitErr)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(3 * time.Second):
		}
	}
}

// startProxy builds the hardening proxy's dependency graph and serves it
// in a background goroutine, separate from the child's scheduling domain.
func (s *Supervisor) startProxy(ctx context.Context) error {
	envCfg := s.opts.EnvConfig
	sess := session.New(envCfg.Origins)

	store, err := sqlitestore.Open(envCfg.Database)
	if err != nil {
		return fmt.Errorf("open block store: %w", err)
	}
	tracker := auth.NewFailureTracker(sess, store)
	limiter := memory.NewFixedWindowLimiter()
	limiter.StartCleanup(ctx)
	renderer := pageviews.NewRenderer(envCfg.ErrorPage, envCfg.WarnPage)

	destination := &url.URL{Scheme: "http", Host: fmt.Sprintf("%s:%d", s.opts.ServerConfig.Server.Address, s.opts.ServerConfig.Server.Port)}
	gw := proxygw.NewGateway(envCfg, destination, s.creds, sess, limiter, tracker, renderer, s.logger, prometheus.DefaultRegisterer)

	firewallCfg := originfirewall.Config{
		BindHost:       envCfg.Host,
		AllowPrivateIP: envCfg.AllowPrivateIP,
		AllowPublicIP:  envCfg.AllowPublicIP,
	}
	if originfirewall.ShouldRun(time.Duration(envCfg.OriginRefresh)*time.Second, firewallCfg) {
		s.refresher = originfirewall.NewRefresher(
			firewallCfg,
			time.Duration(envCfg.OriginRefresh)*time.Second,
			sess.AllowedOrigins,
			func(next map[string]struct{}) {
				for _, static := range envCfg.Origins {
					next[static] = struct{}{}
				}
				sess.SwapAllowedOrigins(next)
			},
			s.logger,
		)
		go s.refresher.Run(ctx)
	}
	initial, err := originfirewall.Resolve(ctx, firewallCfg)
	if err != nil {
		s.logger.Warn("initial origin resolution failed", "error", err)
	} else {
		for _, static := range envCfg.Origins {
			initial[static] = struct{}{}
		}
		sess.SwapAllowedOrigins(initial)
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", envCfg.Host, envCfg.Port),
		Handler: gw,
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("proxy server stopped", "error", err)
		}
	}()
	return nil
}

// Cleanup deletes the child's DB, the proxy's block-store DB (if the
// proxy was enabled), and the generated config/users JSONs, tolerating
// missing files.
func (s *Supervisor) Cleanup() error {
	paths := []string{s.childDBPath(), s.configPath(), s.usersPath()}
	if s.opts.Proxy && s.opts.EnvConfig != nil {
		paths = append(paths, s.opts.EnvConfig.Database)
	}
	var firstErr error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ExitProcess joins the proxy (3s grace) and the child (up to 5 forceful
// terminate attempts at 100ms intervals), warns if either is still alive,
// then always runs Cleanup.
func (s *Supervisor) ExitProcess(ctx context.Context) error {
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("proxy did not shut down gracefully", "error", err)
		}
		cancel()
	}

	if proc := s.child.Process(); proc != nil {
		_ = sendGracefulStop(proc)
		for i := 0; i < 5 && processIsAlive(proc); i++ {
			time.Sleep(100 * time.Millisecond)
			_ = proc.Kill()
		}
		if processIsAlive(proc) {
			s.logger.Warn("child process still alive after forceful terminate attempts", "pid", proc.Pid)
		}
	}

	return s.Cleanup()
}
