package docfmt

import (
	"regexp"
	"strings"
)

// TOCMarker is the placeholder line replaced by the generated table of
// contents.
const TOCMarker = "%TOC%"

// tocHeadingLine matches a single top-level heading line. Sub-headings
// ("==", "===") do not match because the second "=" breaks the required
// whitespace after the opening marker.
var tocHeadingLine = regexp.MustCompile(`^\s*=\s+(.+?)\s+=\s*$`)

// TOCEntries returns the top-level heading texts of doc in document order,
// with backslash escapes resolved.
func TOCEntries(doc string) []string {
	var entries []string
	for _, line := range strings.Split(doc, "\n") {
		if m := tocHeadingLine.FindStringSubmatch(line); m != nil {
			entries = append(entries, Unescape(m[1]))
		}
	}
	return entries
}

// HasTOCMarker reports whether doc contains the %TOC% placeholder anywhere.
// The actual replacement in ApplyTOC is stricter and only touches lines
// consisting solely of the marker.
func HasTOCMarker(doc string) bool {
	return strings.Contains(doc, TOCMarker)
}

// CreateTOC formats entries as a bullet list of internal links, one
// "- `Entry`" line per entry.
func CreateTOC(entries []string) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, "- `"+entry+"`")
	}
	return strings.Join(lines, "\n")
}

// ApplyTOC replaces every line whose trimmed content is exactly %TOC% with
// the given table of contents block. The marker embedded in other lines is
// preserved verbatim.
func ApplyTOC(doc string, toc string) string {
	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == TOCMarker {
			lines[i] = toc
		}
	}
	return strings.Join(lines, "\n")
}

// Unescape resolves backslash escapes: each backslash is dropped and the
// following character kept literally. A trailing backslash is kept.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	if escaped {
		b.WriteByte('\\')
	}
	return b.String()
}
