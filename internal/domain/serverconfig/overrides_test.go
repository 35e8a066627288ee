package serverconfig

import "testing"

func TestMergeExtraOverridesJSONShallowMerge(t *testing.T) {
	base := &ConfigSettings{Server: Server{Root: "/srv", Port: 8080, Address: "127.0.0.1"}}

	merged, err := MergeExtraOverrides(base, []byte(`{"server":{"port":9090}}`), false)
	if err != nil {
		t.Fatalf("MergeExtraOverrides: %v", err)
	}
	if merged.Server.Port != 9090 {
		t.Fatalf("expected overridden port 9090, got %d", merged.Server.Port)
	}
	if merged.Server.Root != "/srv" {
		t.Fatalf("expected untouched root to survive merge, got %q", merged.Server.Root)
	}
}

func TestMergeExtraOverridesYAML(t *testing.T) {
	base := &ConfigSettings{Settings: Settings{Signup: false}}

	merged, err := MergeExtraOverrides(base, []byte("settings:\n  signup: true\n"), true)
	if err != nil {
		t.Fatalf("MergeExtraOverrides: %v", err)
	}
	if !merged.Settings.Signup {
		t.Fatal("expected signup to be overridden to true")
	}
}

func TestMergeExtraOverridesIgnoresUnrecognizedSections(t *testing.T) {
	base := &ConfigSettings{Server: Server{Root: "/srv"}}
	merged, err := MergeExtraOverrides(base, []byte(`{"bogus":{"x":1}}`), false)
	if err != nil {
		t.Fatalf("MergeExtraOverrides: %v", err)
	}
	if merged.Server.Root != "/srv" {
		t.Fatalf("expected base config untouched, got %q", merged.Server.Root)
	}
}

func TestDetectOverrideFormat(t *testing.T) {
	if !DetectOverrideFormat("/tmp/extra.yaml") {
		t.Fatal("expected .yaml to be detected as YAML")
	}
	if !DetectOverrideFormat("/tmp/extra.yml") {
		t.Fatal("expected .yml to be detected as YAML")
	}
	if DetectOverrideFormat("/tmp/extra.json") {
		t.Fatal("expected .json to be detected as JSON")
	}
}
