package serverconfig

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// overrideSections are the only top-level keys an extra-overrides file may
// adjust; anything else in the file is ignored.
var overrideSections = []string{"server", "settings", "auther"}

// DetectOverrideFormat reports whether path looks like a YAML or JSON
// extra-overrides file by its extension. An unrecognized extension defaults
// to JSON.
func DetectOverrideFormat(path string) (isYAML bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// MergeExtraOverrides shallow-merges each recognized top-level section of an
// extra-overrides document (JSON or YAML) into c, one level deep: override
// keys replace the base section's same-named keys, but nested structures
// beneath a key are replaced wholesale rather than merged recursively.
func MergeExtraOverrides(c *ConfigSettings, data []byte, isYAML bool) (*ConfigSettings, error) {
	base, err := toMap(c)
	if err != nil {
		return nil, fmt.Errorf("marshal base config: %w", err)
	}

	var overrides map[string]interface{}
	if isYAML {
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return nil, fmt.Errorf("parse yaml overrides: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &overrides); err != nil {
			return nil, fmt.Errorf("parse json overrides: %w", err)
		}
	}

	for _, section := range overrideSections {
		ov, ok := overrides[section].(map[string]interface{})
		if !ok {
			continue
		}
		baseSection, _ := base[section].(map[string]interface{})
		if baseSection == nil {
			baseSection = map[string]interface{}{}
		}
		for key, value := range ov {
			baseSection[key] = value
		}
		base[section] = baseSection
	}

	merged := &ConfigSettings{}
	remarshaled, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("remarshal merged config: %w", err)
	}
	if err := json.Unmarshal(remarshaled, merged); err != nil {
		return nil, fmt.Errorf("unmarshal merged config: %w", err)
	}
	return merged, nil
}

func toMap(c *ConfigSettings) (map[string]interface{}, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var asMap map[string]interface{}
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return nil, err
	}
	return asMap, nil
}
