package serverconfig

import (
	"os"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	var c ConfigSettings
	c.Server.Root = "/tmp"
	c.ApplyDefaults()
	if c.Server.Port != 8080 || c.Server.Address != "127.0.0.1" {
		t.Fatalf("unexpected defaults: %+v", c.Server)
	}
	if c.Settings.Defaults.Scope != "." {
		t.Fatalf("expected default scope, got %+v", c.Settings.Defaults)
	}
}

func TestForceProxyMode(t *testing.T) {
	var c ConfigSettings
	c.Settings.AuthMethod = "default"
	c.Settings.AuthHeader = "X-Custom"
	c.ForceProxyMode()
	if c.Settings.AuthMethod != "json" || c.Settings.AuthHeader != "" {
		t.Fatalf("proxy mode must force json auth with empty header, got %+v", c.Settings)
	}
}

func TestValidateRequiresPositivePort(t *testing.T) {
	c := ConfigSettings{Server: Server{Root: "/tmp", Port: 0}}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for non-positive port")
	}
}

func TestValidateUserHomeBasePathMustBeDirectory(t *testing.T) {
	dir := t.TempDir()
	c := ConfigSettings{Server: Server{Root: "/tmp", Port: 80}, Settings: Settings{CreateUserDir: true, UserHomeBasePath: dir}}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected valid directory to pass, got %v", err)
	}

	file := dir + "/notadir"
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	c.Settings.UserHomeBasePath = file
	if err := c.Validate(); err == nil {
		t.Fatal("expected error when userHomeBasePath is not a directory")
	}
}
