package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thirteen37/confio/internal/format/yaml"
	"github.com/thirteen37/confio/internal/merge"
	"github.com/thirteen37/confio/internal/path"
	"gopkg.in/ini.v1"
)

// ParseOverrides parses "key=value" pairs into overrides, in order.
//
// Keys may be dotted (server.port) or JSON arrays (["a.b","c"]) to address
// nested values. Values are typed like YAML scalars: 8080 is an integer,
// true a boolean, null is nil, [a, b] a sequence. Quote a value to keep it
// a string.
func ParseOverrides(pairs []string) ([]merge.Override, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	lines := make([]string, len(pairs))
	for i, pair := range pairs {
		if strings.ContainsAny(pair, "\r\n") {
			return nil, fmt.Errorf("invalid override %q: value spans lines", pair)
		}
		key, value, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(key, "#") || strings.HasPrefix(key, ";") {
			return nil, fmt.Errorf("invalid override key %q", key)
		}
		if strings.HasPrefix(key, "[") {
			// Backquotes make the ini parser read the array as one key name.
			key = "`" + key + "`"
		}
		lines[i] = key + " = " + value
	}

	// The ini grammar handles surrounding whitespace, quoting and repeated
	// keys (last one wins).
	file, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:      "=",
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
	}, []byte(strings.Join(lines, "\n")))
	if err != nil {
		return nil, fmt.Errorf("parsing overrides: %w", err)
	}

	section := file.Section(ini.DefaultSection)
	overrides := make([]merge.Override, 0, len(section.Keys()))
	for _, key := range section.Keys() {
		p, err := path.Parse(key.Name())
		if err != nil {
			return nil, fmt.Errorf("override key %q: %w", key.Name(), err)
		}
		overrides = append(overrides, merge.Override{Path: p, Value: typedValue(key.Value())})
	}
	return overrides, nil
}

// splitPair separates key and value. A JSON array key is read to its
// closing bracket first, so '=' inside a quoted segment is part of the key.
func splitPair(pair string) (string, string, error) {
	trimmed := strings.TrimLeft(pair, " \t")
	if strings.HasPrefix(trimmed, "[") {
		decoder := json.NewDecoder(strings.NewReader(trimmed))
		var segments []string
		if err := decoder.Decode(&segments); err != nil {
			return "", "", fmt.Errorf("invalid override %q: key is not a JSON array of strings: %w", pair, err)
		}
		end := int(decoder.InputOffset())
		key := trimmed[:end]
		if strings.Contains(key, "`") {
			return "", "", fmt.Errorf("invalid override key %q: backquotes are not allowed", key)
		}
		value, found := strings.CutPrefix(strings.TrimLeft(trimmed[end:], " \t"), "=")
		if !found {
			return "", "", fmt.Errorf("invalid override %q: expected key=value", pair)
		}
		return key, value, nil
	}

	key, value, found := strings.Cut(pair, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", "", fmt.Errorf("invalid override %q: expected key=value", pair)
	}
	return key, value, nil
}

// typedValue interprets an override value as a YAML scalar or flow collection.
// Anything YAML cannot parse stays a string.
func typedValue(raw string) any {
	if raw == "" {
		return ""
	}
	v, err := yaml.Unmarshal([]byte(raw))
	if err != nil {
		return raw
	}
	if v == nil && !isNullLiteral(raw) {
		// e.g. "#tag" parses as a comment-only document
		return raw
	}
	return v
}

func isNullLiteral(s string) bool {
	switch strings.TrimSpace(s) {
	case "null", "Null", "NULL", "~":
		return true
	}
	return false
}
