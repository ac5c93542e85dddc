package pysrc

import (
	"strings"
	"unicode"
)

// cleanDocstring normalizes a docstring the way Python's inspect.cleandoc
// does: the first line loses its leading whitespace, the remaining lines
// lose their common indentation, and blank lines are trimmed from both
// ends.
func cleanDocstring(doc string) string {
	lines := strings.Split(doc, "\n")
	lines[0] = strings.TrimLeft(lines[0], " \t")

	indent := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		if n := len(line) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines[1:] {
		if indent > 0 && len(line) >= indent {
			lines[i+1] = line[indent:]
		} else {
			lines[i+1] = strings.TrimLeft(line, " \t")
		}
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// stringLiteralValue strips the prefix and quotes from a Python string
// literal. Escape sequences are left as written.
func stringLiteralValue(literal string) string {
	s := strings.TrimLeft(literal, "rRbBuUfF")
	for _, quote := range []string{`"""`, "'''", `"`, "'"} {
		if strings.HasPrefix(s, quote) && strings.HasSuffix(s, quote) && len(s) >= 2*len(quote) {
			return s[len(quote) : len(s)-len(quote)]
		}
	}
	return s
}

// splitTags separates a trailing "Tags: a, b" line from a keyword
// docstring.
func splitTags(doc string) (string, []string) {
	lines := strings.Split(doc, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if !strings.HasPrefix(last, "Tags:") {
		return doc, nil
	}
	var tags []string
	for _, tag := range strings.Split(strings.TrimPrefix(last, "Tags:"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	doc = strings.TrimRight(strings.Join(lines[:len(lines)-1], "\n"), " \t\n")
	return doc, tags
}

// printableName turns a function name into a keyword name: underscores
// become spaces, camelCase splits into words, and every word is
// capitalized. "get_server_time" and "getServerTime" both map to
// "Get Server Time".
func printableName(name string) string {
	var parts []string
	if strings.Contains(name, "_") {
		parts = strings.Split(name, "_")
	} else {
		parts = splitCamelCase(name)
	}
	var words []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		words = append(words, string(unicode.ToUpper(runes[0]))+string(runes[1:]))
	}
	return strings.Join(words, " ")
}

func splitCamelCase(name string) []string {
	runes := []rune(name)
	var parts []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		boundary := (unicode.IsUpper(cur) && unicode.IsLower(prev)) ||
			(unicode.IsUpper(prev) && unicode.IsUpper(cur) && unicode.IsLower(next)) ||
			(unicode.IsDigit(cur) != unicode.IsDigit(prev))
		if boundary {
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	parts = append(parts, string(runes[start:]))
	return parts
}

// normalizeScope maps a ROBOT_LIBRARY_SCOPE value to one of the canonical
// scopes, defaulting to TEST for unrecognized values.
func normalizeScope(value string) string {
	normalized := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(value)), " ", "")
	switch normalized {
	case "GLOBAL":
		return "GLOBAL"
	case "SUITE", "TESTSUITE":
		return "SUITE"
	default:
		return "TEST"
	}
}
