// Package docfmt implements the lightweight documentation markup used in
// library docstrings and converts it to HTML.
//
// The format is line oriented:
//   - "= Heading ="            section heading (levels 1-3, "==", "===")
//   - "- item"                 bullet list
//   - "| text"                 preformatted block
//   - "---"                    horizontal rule
//   - blank line               paragraph separator
//
// Inline markup covers `internal links`, *bold*, _italic_, ``code`` and
// bare http(s) URLs. A backslash removes the markup meaning of the next
// character, so "\=" inside a heading is a literal equal sign.
//
// A line containing only the %TOC% marker is replaced by a generated table
// of contents; the marker embedded inside other text is left alone.
package docfmt
