// Package library defines the documentation model produced for a single
// test library: the library-level doc, its importing section (inits) and
// its keywords, plus TOC synthesis and HTML conversion.
package library

import (
	"sort"
	"strings"

	"github.com/doctools/libdoc/internal/docfmt"
)

// Documentation formats. ROBOT is the docstring markup handled by docfmt;
// HTML marks a document whose docs have already been converted.
const (
	FormatRobot = "ROBOT"
	FormatHTML  = "HTML"
)

// Library scopes, mirroring the ROBOT_LIBRARY_SCOPE attribute.
const (
	ScopeTest   = "TEST"
	ScopeSuite  = "SUITE"
	ScopeGlobal = "GLOBAL"
)

// Fixed TOC entries appended after the document's own headings.
const (
	tocImporting = "Importing"
	tocKeywords  = "Keywords"
	tocDataTypes = "Data types"
)

// Doc is the documentation model of one library.
type Doc struct {
	Name      string
	Doc       string
	Version   string
	Type      string // always "LIBRARY" for source-file libraries
	Scope     string
	DocFormat string
	Source    string
	Lineno    int
	Inits     []*Keyword
	Keywords  []*Keyword
}

// New returns a Doc with the defaults applied by the original model:
// LIBRARY type, TEST scope and ROBOT doc format.
func New(name string) *Doc {
	return &Doc{
		Name:      name,
		Type:      "LIBRARY",
		Scope:     ScopeTest,
		DocFormat: FormatRobot,
		Lineno:    -1,
	}
}

// SetInits stores inits sorted case-insensitively by name.
func (d *Doc) SetInits(inits []*Keyword) {
	d.Inits = sortKeywords(inits)
}

// SetKeywords stores keywords sorted case-insensitively by name.
func (d *Doc) SetKeywords(kws []*Keyword) {
	d.Keywords = sortKeywords(kws)
}

// DocWithTOC returns the library doc with the %TOC% placeholder replaced by
// the synthesized table of contents. The TOC holds the document's own
// top-level headings followed by the fixed structural entries: "Importing"
// (only when inits exist), "Keywords" and "Data types". Docs without the
// placeholder, and docs in a non-ROBOT format, are returned unchanged.
func (d *Doc) DocWithTOC() string {
	if d.DocFormat != FormatRobot || !docfmt.HasTOCMarker(d.Doc) {
		return d.Doc
	}
	entries := docfmt.TOCEntries(d.Doc)
	if len(d.Inits) > 0 {
		entries = append(entries, tocImporting)
	}
	entries = append(entries, tocKeywords, tocDataTypes)
	return docfmt.ApplyTOC(d.Doc, docfmt.CreateTOC(entries))
}

// ShortDoc is the first paragraph of the library doc collapsed to a
// single line.
func (d *Doc) ShortDoc() string {
	return shortDoc(d.Doc)
}

// AllTags unions the tags of all keywords, sorted case-insensitively.
func (d *Doc) AllTags() []string {
	seen := map[string]bool{}
	var tags []string
	for _, kw := range d.Keywords {
		for _, tag := range kw.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Slice(tags, func(i, j int) bool {
		return strings.ToLower(tags[i]) < strings.ToLower(tags[j])
	})
	return tags
}

// TypeNames returns the distinct argument type names used across inits and
// keywords, sorted alphabetically. These populate the "Data types" section.
func (d *Doc) TypeNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, kw := range append(append([]*Keyword{}, d.Inits...), d.Keywords...) {
		for _, arg := range kw.Args {
			if arg.Type != "" && !seen[arg.Type] {
				seen[arg.Type] = true
				names = append(names, arg.Type)
			}
		}
	}
	sort.Strings(names)
	return names
}

// ConvertDocsToHTML renders the library doc (TOC applied) and every init
// and keyword doc to HTML and flips the doc format.
func (d *Doc) ConvertDocsToHTML() {
	if d.DocFormat == FormatHTML {
		return
	}
	d.Doc = docfmt.ToHTML(d.DocWithTOC())
	for _, init := range d.Inits {
		init.Doc = docfmt.ToHTML(init.Doc)
	}
	for _, kw := range d.Keywords {
		kw.Doc = docfmt.ToHTML(kw.Doc)
	}
	d.DocFormat = FormatHTML
}

// Keyword documents a single keyword or init.
type Keyword struct {
	Name   string
	Args   []Arg
	Doc    string
	Tags   []string
	Source string
	Lineno int
}

// ShortDoc is the first paragraph of the doc collapsed to a single line.
func (k *Keyword) ShortDoc() string {
	return shortDoc(k.Doc)
}

func shortDoc(doc string) string {
	var parts []string
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(parts) > 0 {
				break
			}
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}

// Deprecated reports whether the doc carries the *DEPRECATED* marker.
func (k *Keyword) Deprecated() bool {
	return strings.HasPrefix(k.Doc, "*DEPRECATED") && strings.Contains(k.Doc[1:], "*")
}

// ArgsRepr returns the canonical string form of every argument.
func (k *Keyword) ArgsRepr() []string {
	reprs := make([]string, 0, len(k.Args))
	for _, arg := range k.Args {
		reprs = append(reprs, arg.String())
	}
	return reprs
}

func sortKeywords(kws []*Keyword) []*Keyword {
	sorted := append([]*Keyword{}, kws...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	return sorted
}

// ArgKind classifies how an argument binds, following Python calling
// conventions.
type ArgKind string

const (
	KindPositionalOrNamed ArgKind = "POSITIONAL_OR_NAMED"
	KindVarPositional     ArgKind = "VAR_POSITIONAL"
	KindVarNamed          ArgKind = "VAR_NAMED"
	KindNamedOnly         ArgKind = "NAMED_ONLY"
)

// Arg documents a single keyword argument.
type Arg struct {
	Name       string
	Type       string
	Default    string
	HasDefault bool
	Kind       ArgKind
}

// Required reports whether a value must be given for this argument.
func (a Arg) Required() bool {
	return !a.HasDefault && a.Kind != KindVarPositional && a.Kind != KindVarNamed
}

// String renders the argument the way it appears in a signature:
// "name", "name=default", "name: type = default", "*varargs", "**kwargs".
func (a Arg) String() string {
	switch a.Kind {
	case KindVarPositional:
		return "*" + a.Name
	case KindVarNamed:
		return "**" + a.Name
	}
	repr := a.Name
	if a.Type != "" {
		repr += ": " + a.Type
	}
	if a.HasDefault {
		if a.Type != "" {
			repr += " = " + a.Default
		} else {
			repr += "=" + a.Default
		}
	}
	return repr
}
