package docfmt

import (
	"strings"
)

// formatInline renders inline markup inside a single block of text. All
// plain text is HTML-escaped on the way through.
func formatInline(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch {
		case c == '\\' && i+1 < len(runes):
			writeEscapedRune(&b, runes[i+1])
			i += 2

		case c == '`' && i+1 < len(runes) && runes[i+1] == '`':
			end := indexFrom(runes, i+2, '`', '`')
			if end < 0 {
				writeEscapedRune(&b, c)
				i++
				continue
			}
			b.WriteString("<code>")
			writeEscapedString(&b, string(runes[i+2:end]))
			b.WriteString("</code>")
			i = end + 2

		case c == '`':
			end := indexFrom(runes, i+1, '`')
			if end < 0 || end == i+1 {
				writeEscapedRune(&b, c)
				i++
				continue
			}
			target := string(runes[i+1 : end])
			b.WriteString(`<a href="#`)
			b.WriteString(EncodeAnchor(target))
			b.WriteString(`" class="name">`)
			writeEscapedString(&b, target)
			b.WriteString("</a>")
			i = end + 1

		case c == '*':
			end := spanEnd(runes, i, '*')
			if end < 0 {
				writeEscapedRune(&b, c)
				i++
				continue
			}
			b.WriteString("<b>")
			b.WriteString(formatInline(string(runes[i+1 : end])))
			b.WriteString("</b>")
			i = end + 1

		case c == '_' && (i == 0 || !isWordRune(runes[i-1])):
			end := spanEnd(runes, i, '_')
			if end < 0 || (end+1 < len(runes) && isWordRune(runes[end+1])) {
				writeEscapedRune(&b, c)
				i++
				continue
			}
			b.WriteString("<i>")
			b.WriteString(formatInline(string(runes[i+1 : end])))
			b.WriteString("</i>")
			i = end + 1

		case isURLStart(runes, i):
			end := i
			for end < len(runes) && !isSpaceRune(runes[end]) {
				end++
			}
			url := string(runes[i:end])
			b.WriteString(`<a href="`)
			writeEscapedString(&b, url)
			b.WriteString(`">`)
			writeEscapedString(&b, url)
			b.WriteString("</a>")
			i = end

		default:
			writeEscapedRune(&b, c)
			i++
		}
	}
	return b.String()
}

// spanEnd finds the closing marker for a *bold* or _italic_ span starting
// at runes[start]. The span content must not begin or end with whitespace
// and must be non-empty. Returns -1 when no valid closing marker exists.
func spanEnd(runes []rune, start int, marker rune) int {
	if start+1 >= len(runes) || isSpaceRune(runes[start+1]) || runes[start+1] == marker {
		return -1
	}
	for j := start + 2; j < len(runes); j++ {
		if runes[j] == marker && !isSpaceRune(runes[j-1]) {
			return j
		}
	}
	return -1
}

// indexFrom returns the index of the next occurrence of seq in runes at or
// after start, or -1.
func indexFrom(runes []rune, start int, seq ...rune) int {
	for j := start; j+len(seq) <= len(runes); j++ {
		match := true
		for k, r := range seq {
			if runes[j+k] != r {
				match = false
				break
			}
		}
		if match {
			return j
		}
	}
	return -1
}

func isURLStart(runes []rune, i int) bool {
	if i > 0 && !isSpaceRune(runes[i-1]) && runes[i-1] != '(' {
		return false
	}
	rest := string(runes[i:])
	return strings.HasPrefix(rest, "http://") || strings.HasPrefix(rest, "https://")
}

func isSpaceRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func writeEscapedRune(b *strings.Builder, r rune) {
	switch r {
	case '&':
		b.WriteString("&amp;")
	case '<':
		b.WriteString("&lt;")
	case '>':
		b.WriteString("&gt;")
	case '"':
		b.WriteString("&quot;")
	default:
		b.WriteRune(r)
	}
}

func writeEscapedString(b *strings.Builder, s string) {
	for _, r := range s {
		writeEscapedRune(b, r)
	}
}

// escapeText HTML-escapes s without interpreting any markup.
func escapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	writeEscapedString(&b, s)
	return b.String()
}

// EncodeAnchor percent-encodes an anchor target for use in a fragment
// href. Spaces become %20; characters that would break the attribute or
// the fragment are encoded as well. Everything else, including "=", stays
// readable.
func EncodeAnchor(target string) string {
	var b strings.Builder
	b.Grow(len(target))
	for _, r := range target {
		switch r {
		case '%':
			b.WriteString("%25")
		case ' ':
			b.WriteString("%20")
		case '"':
			b.WriteString("%22")
		case '#':
			b.WriteString("%23")
		case '&':
			b.WriteString("%26")
		case '<':
			b.WriteString("%3C")
		case '>':
			b.WriteString("%3E")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
