package pipeline

import (
	"encoding/json"
	"html"
	"strings"

	"github.com/doctools/libdoc/internal/docfmt"
	"github.com/doctools/libdoc/internal/library"
)

// FragmentMeta is the metadata prepended to a library HTML fragment.
type FragmentMeta struct {
	Name     string `json:"name"`
	Version  string `json:"version,omitempty"`
	Type     string `json:"type,omitempty"`
	Scope    string `json:"scope,omitempty"`
	ShortDoc string `json:"shortdoc,omitempty"`
	TOC      string `json:"toc,omitempty"`
}

const (
	metaPrefix = "<!--META:"
	metaSuffix = "-->"
)

// BuildFragment renders a library into an HTML fragment with a JSON
// metadata header. The fragment holds the introduction (TOC applied),
// the Importing section, every keyword and the data type list; the web
// server wraps it in a full page.
func BuildFragment(doc *library.Doc) ([]byte, error) {
	shortdoc := doc.ShortDoc()
	if doc.DocFormat == library.FormatHTML {
		shortdoc = docfmt.StripHTMLTags(shortdoc)
	}

	var entries []string
	if doc.DocFormat == library.FormatRobot {
		entries = docfmt.TOCEntries(doc.Doc)
	}
	if len(doc.Inits) > 0 {
		entries = append(entries, "Importing")
	}
	entries = append(entries, "Keywords", "Data types")
	tocHTML := docfmt.ToHTML(docfmt.CreateTOC(entries))

	var b strings.Builder
	b.WriteString(renderDoc(doc.DocWithTOC(), doc.DocFormat))
	b.WriteString("\n")

	if len(doc.Inits) > 0 {
		b.WriteString(`<h2 id="Importing">Importing</h2>` + "\n")
		for _, init := range doc.Inits {
			writeKeywordBody(&b, init, doc.DocFormat)
		}
	}

	b.WriteString(`<h2 id="Keywords">Keywords</h2>` + "\n")
	for _, kw := range doc.Keywords {
		name := html.EscapeString(kw.Name)
		b.WriteString(`<h3 id="` + name + `">` + name + "</h3>\n")
		writeKeywordBody(&b, kw, doc.DocFormat)
	}

	b.WriteString(`<h2 id="Data types">Data types</h2>` + "\n")
	if names := doc.TypeNames(); len(names) > 0 {
		b.WriteString("<ul>\n")
		for _, name := range names {
			b.WriteString("<li><code>" + html.EscapeString(name) + "</code></li>\n")
		}
		b.WriteString("</ul>\n")
	}

	meta := FragmentMeta{
		Name:     doc.Name,
		Version:  doc.Version,
		Type:     doc.Type,
		Scope:    doc.Scope,
		ShortDoc: shortdoc,
		TOC:      tocHTML,
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}

	var out strings.Builder
	out.WriteString(metaPrefix)
	out.Write(metaJSON)
	out.WriteString(metaSuffix + "\n")
	out.WriteString(b.String())
	return []byte(out.String()), nil
}

func writeKeywordBody(b *strings.Builder, kw *library.Keyword, format string) {
	if reprs := kw.ArgsRepr(); len(reprs) > 0 {
		b.WriteString(`<p class="args"><code>` + html.EscapeString(strings.Join(reprs, ", ")) + "</code></p>\n")
	}
	if len(kw.Tags) > 0 {
		b.WriteString(`<p class="tags">` + html.EscapeString(strings.Join(kw.Tags, ", ")) + "</p>\n")
	}
	if kw.Doc != "" {
		b.WriteString(renderDoc(kw.Doc, format))
		b.WriteString("\n")
	}
}

// renderDoc converts documentation text to HTML. Libraries whose doc
// format is already HTML pass through untouched.
func renderDoc(text string, format string) string {
	if format == library.FormatHTML {
		return text
	}
	return docfmt.ToHTML(text)
}

// ParseFragmentMeta splits a stored fragment into its metadata header and
// body.
func ParseFragmentMeta(content string) (FragmentMeta, string) {
	var meta FragmentMeta
	if !strings.HasPrefix(content, metaPrefix) {
		return meta, content
	}
	end := strings.Index(content, metaSuffix)
	if end == -1 {
		return meta, content
	}
	_ = json.Unmarshal([]byte(content[len(metaPrefix):end]), &meta)
	body := strings.TrimPrefix(content[end+len(metaSuffix):], "\n")
	return meta, body
}
