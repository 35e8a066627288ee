package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/thevickypedia/fbgate/internal/domain/profile"
	"github.com/thevickypedia/fbgate/internal/domain/serverconfig"
)

// writeFakeBinary writes a minimal shell/batch script standing in for the
// child binary: "config import" / "users import" exit 0 after asserting
// the given path exists; with no args it just sleeps so Wait() blocks
// until killed, unless exitCode is non-nil in which case it exits immediately.
func writeFakeBinary(t *testing.T, exitCode *int) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Skip("fake binary script is POSIX shell only")
	}
	path := filepath.Join(dir, "fakechild.sh")
	script := `#!/bin/sh
if [ "$1" = "config" ] || [ "$1" = "users" ]; then
  if [ ! -f "$3" ]; then
    echo "missing file $3" 1>&2
    exit 1
  fi
  echo "imported $3"
  exit 0
fi
`
	if exitCode != nil {
		script += fmt.Sprintf("exit %d\n", *exitCode)
	} else {
		script += "sleep 5\n"
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func newOptions(t *testing.T, binary string) Options {
	t.Helper()
	dir := t.TempDir()
	return Options{
		Binary:      binary,
		SettingsDir: dir,
		Restart:     1,
		Profiles: []profile.UserProfile{
			{Authentication: profile.Authentication{Username: "alice", Password: "S3cret!ok", Admin: true}},
		},
		ServerConfig: &serverconfig.ConfigSettings{
			Server: serverconfig.Server{Root: dir, Port: 8080},
		},
	}
}

func TestCreateUsersWritesCredentialMap(t *testing.T) {
	sup := New(newOptions(t, "unused"))
	creds, err := sup.CreateUsers()
	if err != nil {
		t.Fatalf("CreateUsers: %v", err)
	}
	if creds["alice"] != "S3cret!ok" {
		t.Errorf("creds[alice] = %q", creds["alice"])
	}
	if _, err := os.Stat(sup.usersPath()); err != nil {
		t.Errorf("users.json not written: %v", err)
	}
}

func TestCreateConfigAppliesDefaultsAndWritesFile(t *testing.T) {
	sup := New(newOptions(t, "unused"))
	if err := sup.CreateConfig(); err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}
	data, err := os.ReadFile(sup.configPath())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Error("config.json is empty")
	}
}

func TestCreateConfigForcesProxyModeWhenProxyEnabled(t *testing.T) {
	opts := newOptions(t, "unused")
	opts.Proxy = true
	opts.ServerConfig.Settings.AuthMethod = "header"
	opts.ServerConfig.Settings.AuthHeader = "X-Trusted-User"
	sup := New(opts)
	if err := sup.CreateConfig(); err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}

	var written struct {
		Settings struct {
			AuthMethod string `json:"authMethod"`
			AuthHeader string `json:"authHeader"`
		} `json:"settings"`
	}
	data, err := os.ReadFile(sup.configPath())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if err := json.Unmarshal(data, &written); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if written.Settings.AuthMethod != "json" {
		t.Errorf("authMethod = %q, want %q", written.Settings.AuthMethod, "json")
	}
	if written.Settings.AuthHeader != "" {
		t.Errorf("authHeader = %q, want empty", written.Settings.AuthHeader)
	}
}

func TestImportConfigAndUsersSucceedAgainstFakeBinary(t *testing.T) {
	binary := writeFakeBinary(t, nil)
	sup := New(newOptions(t, binary))
	if _, err := sup.CreateUsers(); err != nil {
		t.Fatalf("CreateUsers: %v", err)
	}
	if err := sup.CreateConfig(); err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}
	ctx := context.Background()
	if err := sup.ImportConfig(ctx); err != nil {
		t.Fatalf("ImportConfig: %v", err)
	}
	if err := sup.ImportUsers(ctx); err != nil {
		t.Fatalf("ImportUsers: %v", err)
	}
}

func TestImportConfigFailsFatallyOnMissingFile(t *testing.T) {
	binary := writeFakeBinary(t, nil)
	sup := New(newOptions(t, binary))
	// Skip CreateConfig so configPath() does not exist.
	if err := sup.ImportConfig(context.Background()); err == nil {
		t.Fatal("expected ImportConfig to fail when config.json is missing")
	}
}

func TestStartExhaustsRestartBudgetAndReturnsError(t *testing.T) {
	exitCode := 1
	binary := writeFakeBinary(t, &exitCode)
	opts := newOptions(t, binary)
	opts.Restart = 1
	sup := New(opts)
	if _, err := sup.CreateUsers(); err != nil {
		t.Fatalf("CreateUsers: %v", err)
	}
	if err := sup.CreateConfig(); err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := sup.Start(ctx)
	if err == nil {
		t.Fatal("expected Start to return an error after exhausting the restart budget")
	}
}

func TestStartReturnsCleanlyOnContextCancellation(t *testing.T) {
	binary := writeFakeBinary(t, nil) // child sleeps until killed
	opts := newOptions(t, binary)
	sup := New(opts)
	if _, err := sup.CreateUsers(); err != nil {
		t.Fatalf("CreateUsers: %v", err)
	}
	if err := sup.CreateConfig(); err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Start(ctx) }()

	time.Sleep(200 * time.Millisecond)
	cancel()
	if err := sup.ExitProcess(context.Background()); err != nil {
		t.Fatalf("ExitProcess: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned an error on cancellation: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}
}

func TestCleanupToleratesMissingFiles(t *testing.T) {
	sup := New(newOptions(t, "unused"))
	if err := sup.Cleanup(); err != nil {
		t.Fatalf("Cleanup should tolerate missing files, got: %v", err)
	}
}

func TestCleanupRemovesGeneratedFiles(t *testing.T) {
	sup := New(newOptions(t, "unused"))
	if _, err := sup.CreateUsers(); err != nil {
		t.Fatalf("CreateUsers: %v", err)
	}
	if err := sup.CreateConfig(); err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}
	if err := sup.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(sup.usersPath()); !os.IsNotExist(err) {
		t.Errorf("expected users.json to be removed, stat err = %v", err)
	}
	if _, err := os.Stat(sup.configPath()); !os.IsNotExist(err) {
		t.Errorf("expected config.json to be removed, stat err = %v", err)
	}
}
