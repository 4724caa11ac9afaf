package intent

import (
	"strings"

	"github.com/botify/storebot/backend/internal/model/intent"
)

// Recognised keys of the extraction output.
const (
	keyIntent      = "intent"
	keyProductName = "product_name"
	keyOrderID     = "order_id"
	keyEmail       = "email"
	keyInfo        = "info"
)

// placeholders are values the model emits when a field does not apply.
var placeholders = map[string]struct{}{
	"if applicable": {},
	"none":          {},
	"null":          {},
	"nil":           {},
	"n/a":           {},
	"na":            {},
	"unknown":       {},
	"not provided":  {},
	"-":             {},
}

// Parse decodes the classifier output into an Analysis.
//
// Grammar, one field per line:
//
//	line  = key ":" value
//	key   = "intent" | "product_name" | "order_id" | "email" | "info"
//
// Keys match case-insensitively after trimming leading whitespace. The value
// is everything after the first colon, trimmed. Other lines are ignored and a
// repeated key keeps its last value. Empty and placeholder values are absent,
// an unknown intent is generic and an unknown info subtype is absent.
func Parse(output string) intent.Analysis {
	raw := make(map[string]string, 5)
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := splitField(line)
		if !ok {
			continue
		}
		raw[key] = value
	}

	analysis := intent.Default()
	if v := normalizeValue(raw[keyIntent]); v != "" {
		if parsed, ok := intent.ParseIntent(v); ok {
			analysis.Intent = parsed
		}
	}
	analysis.ProductName = normalizeValue(raw[keyProductName])
	analysis.OrderID = strings.TrimSpace(strings.TrimLeft(normalizeValue(raw[keyOrderID]), "#"))
	analysis.Email = normalizeValue(raw[keyEmail])
	if v := normalizeValue(raw[keyInfo]); v != "" {
		if parsed, ok := intent.ParseInfoType(v); ok {
			analysis.Info = parsed
		}
	}
	return analysis
}

func splitField(line string) (key, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	idx := strings.Index(trimmed, ":")
	if idx <= 0 {
		return "", "", false
	}

	key = strings.ToLower(trimmed[:idx])
	switch key {
	case keyIntent, keyProductName, keyOrderID, keyEmail, keyInfo:
		return key, strings.TrimSpace(trimmed[idx+1:]), true
	default:
		return "", "", false
	}
}

// normalizeValue strips wrapping quotes and brackets and maps placeholders to "".
func normalizeValue(value string) string {
	v := strings.TrimSpace(value)
	for len(v) >= 2 && isWrapped(v) {
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	if _, ok := placeholders[strings.ToLower(v)]; ok {
		return ""
	}
	return v
}

func isWrapped(v string) bool {
	first, last := v[0], v[len(v)-1]
	switch {
	case first == '"' && last == '"',
		first == '\'' && last == '\'',
		first == '<' && last == '>',
		first == '[' && last == ']',
		first == '(' && last == ')':
		return true
	default:
		return false
	}
}
