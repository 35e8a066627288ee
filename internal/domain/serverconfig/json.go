package serverconfig

import "encoding/json"

// RemoveTrailingUnderscore recursively strips trailing underscores from map
// keys, e.g. "shell_" -> "shell". Some config.json fields are historically
// named with a trailing underscore to dodge a reserved identifier; the
// child's on-disk schema expects the bare name. Idempotent: applying it to
// its own output is a no-op.
func RemoveTrailingUnderscore(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, nested := range v {
			cleaned := RemoveTrailingUnderscore(nested)
			trimmed := trimTrailingUnderscores(key)
			if trimmed != key {
				delete(v, key)
			}
			v[trimmed] = cleaned
		}
		return v
	case []interface{}:
		for i, item := range v {
			v[i] = RemoveTrailingUnderscore(item)
		}
		return v
	default:
		return v
	}
}

func trimTrailingUnderscores(key string) string {
	end := len(key)
	for end > 0 && key[end-1] == '_' {
		end--
	}
	return key[:end]
}

// ToJSON renders the config as the byte-identical JSON document the
// supervisor writes to <settings_dir>/config.json: marshal, strip trailing
// underscores from keys, re-marshal with indentation. Calling it twice on
// the same ConfigSettings produces identical output, satisfying the
// idempotence property create_config() requires.
func ToJSON(c *ConfigSettings) ([]byte, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var asMap map[string]interface{}
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return nil, err
	}
	cleaned := RemoveTrailingUnderscore(asMap)
	return json.MarshalIndent(cleaned, "", "  ")
}
