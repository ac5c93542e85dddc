package docfmt

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headingLine = regexp.MustCompile(`^(={1,3})\s+(\S.*?)\s+(={1,3})\s*$`)
	ruleLine    = regexp.MustCompile(`^-{3,}\s*$`)

	stripTags = regexp.MustCompile(`(?is)<[^>]+>`)
)

// headingLevel returns the heading level (1-3) of a trimmed line, or 0 when
// the line is not a heading. The opening and closing marker runs must have
// the same length, so "== x =" is ordinary text.
func headingLevel(trimmed string) int {
	m := headingLine.FindStringSubmatch(trimmed)
	if m == nil || len(m[1]) != len(m[3]) {
		return 0
	}
	return len(m[1])
}

// headingText returns the display text of a heading line with backslash
// escapes resolved.
func headingText(trimmed string) string {
	m := headingLine.FindStringSubmatch(trimmed)
	return Unescape(m[2])
}

// ToHTML converts documentation markup to an HTML fragment. Headings map to
// h2-h4 and carry an id equal to their literal text, so internal links
// produced by formatInline resolve against them.
func ToHTML(doc string) string {
	lines := strings.Split(doc, "\n")
	var blocks []string
	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			i++

		case headingLevel(trimmed) > 0:
			level := headingLevel(trimmed)
			text := escapeText(headingText(trimmed))
			blocks = append(blocks, fmt.Sprintf(`<h%d id="%s">%s</h%d>`, level+1, text, text, level+1))
			i++

		case strings.HasPrefix(trimmed, "- "):
			items, next := collectListItems(lines, i)
			i = next
			var b strings.Builder
			b.WriteString("<ul>\n")
			for _, item := range items {
				b.WriteString("<li>")
				b.WriteString(formatInline(item))
				b.WriteString("</li>\n")
			}
			b.WriteString("</ul>")
			blocks = append(blocks, b.String())

		case isPreformattedLine(line):
			var rows []string
			for i < len(lines) && isPreformattedLine(lines[i]) {
				row := strings.TrimRight(lines[i], " ")
				row = strings.TrimPrefix(strings.TrimPrefix(row, "| "), "|")
				rows = append(rows, escapeText(row))
				i++
			}
			blocks = append(blocks, "<pre>\n"+strings.Join(rows, "\n")+"\n</pre>")

		case ruleLine.MatchString(trimmed):
			blocks = append(blocks, "<hr>")
			i++

		default:
			var parts []string
			for i < len(lines) {
				t := strings.TrimSpace(lines[i])
				if t == "" || headingLevel(t) > 0 || strings.HasPrefix(t, "- ") ||
					isPreformattedLine(lines[i]) || ruleLine.MatchString(t) {
					break
				}
				parts = append(parts, t)
				i++
			}
			blocks = append(blocks, "<p>"+formatInline(strings.Join(parts, " "))+"</p>")
		}
	}
	return strings.Join(blocks, "\n")
}

// collectListItems gathers consecutive "- " items starting at lines[start].
// Indented continuation lines join the previous item with a space.
func collectListItems(lines []string, start int) (items []string, next int) {
	i := start
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "- "):
			items = append(items, strings.TrimSpace(trimmed[2:]))
		case trimmed != "" && len(items) > 0 && strings.HasPrefix(line, " "):
			items[len(items)-1] += " " + trimmed
		default:
			return items, i
		}
		i++
	}
	return items, i
}

func isPreformattedLine(line string) bool {
	return strings.HasPrefix(line, "| ") || strings.TrimRight(line, " ") == "|"
}

// StripHTMLTags removes all HTML tags from the input, leaving plain text.
func StripHTMLTags(html string) string {
	return strings.TrimSpace(stripTags.ReplaceAllString(html, " "))
}
