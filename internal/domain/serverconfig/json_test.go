package serverconfig

import (
	"encoding/json"
	"testing"
)

func TestRemoveTrailingUnderscoreStripsNestedKeys(t *testing.T) {
	input := map[string]interface{}{
		"shell_": []interface{}{"bash"},
		"nested": map[string]interface{}{
			"foo__": "bar",
		},
	}
	cleaned := RemoveTrailingUnderscore(input).(map[string]interface{})
	if _, ok := cleaned["shell_"]; ok {
		t.Fatal("expected shell_ key to be stripped")
	}
	if _, ok := cleaned["shell"]; !ok {
		t.Fatal("expected shell key to be present")
	}
	nested := cleaned["nested"].(map[string]interface{})
	if _, ok := nested["foo"]; !ok {
		t.Fatal("expected fully stripped key foo in nested map")
	}
}

func TestRemoveTrailingUnderscoreIsIdempotent(t *testing.T) {
	input := map[string]interface{}{"shell_": []interface{}{"bash"}}
	once := RemoveTrailingUnderscore(input)
	twice := RemoveTrailingUnderscore(once)

	oneJSON, _ := json.Marshal(once)
	twoJSON, _ := json.Marshal(twice)
	if string(oneJSON) != string(twoJSON) {
		t.Fatalf("expected idempotent result, got %s vs %s", oneJSON, twoJSON)
	}
}

func TestToJSONIsByteIdenticalAcrossCalls(t *testing.T) {
	cfg := &ConfigSettings{
		Server:   Server{Root: "/srv", Port: 8080},
		Settings: Settings{Shell_: []string{"bash", "-c"}},
	}
	cfg.ApplyDefaults()

	first, err := ToJSON(cfg)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	second, err := ToJSON(cfg)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("expected byte-identical output, got:\n%s\nvs\n%s", first, second)
	}
	var asMap map[string]interface{}
	if err := json.Unmarshal(first, &asMap); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	settings := asMap["settings"].(map[string]interface{})
	if _, ok := settings["shell_"]; ok {
		t.Fatal("expected shell_ to be stripped from rendered JSON")
	}
	if _, ok := settings["shell"]; !ok {
		t.Fatal("expected shell key present in rendered JSON")
	}
}
