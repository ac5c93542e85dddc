package pysrc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doctools/libdoc/internal/library"
)

const classSource = `"""Example test library.

%TOC%

= First entry =

Details about the first topic.
"""

__version__ = '0.9'


class Example:
    """Class level introduction."""

    ROBOT_LIBRARY_SCOPE = 'GLOBAL'
    ROBOT_LIBRARY_VERSION = '2.0'

    def __init__(self, host, port=8080, timeout: int = 10):
        """Creates a client for the given host."""
        self.host = host

    def get_server_time(self):
        """Returns the current server time.

        Second paragraph with more detail.

        Tags: clock, remote
        """
        return None

    def sendMessage(self, text, *parts, retries=3, **options):
        """Sends a message."""

    def _helper(self):
        """Not a keyword."""
`

const moduleSource = `"""Utility keywords."""

ROBOT_LIBRARY_DOC_FORMAT = 'ROBOT'
__version__ = '1.2.3'


def first_keyword(value):
    """Does the first thing."""


def second_keyword():
    pass


def _private(value):
    """Hidden."""
`

func parseSource(t *testing.T, src, name string) *library.Doc {
	t.Helper()
	doc, err := ParseSource(context.Background(), []byte(src), name)
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}
	return doc
}

func keywordNames(d *library.Doc) []string {
	names := make([]string, 0, len(d.Keywords))
	for _, kw := range d.Keywords {
		names = append(names, kw.Name)
	}
	return names
}

func TestParseClassLibrary(t *testing.T) {
	d := parseSource(t, classSource, "testdata/Example.py")

	if d.Name != "Example" {
		t.Fatalf("name = %q", d.Name)
	}
	if d.Doc != "Class level introduction." {
		t.Fatalf("doc = %q", d.Doc)
	}
	if d.Version != "2.0" {
		t.Fatalf("version = %q, want class attribute to win", d.Version)
	}
	if d.Scope != "GLOBAL" {
		t.Fatalf("scope = %q", d.Scope)
	}
	if d.Source != "testdata/Example.py" {
		t.Fatalf("source = %q", d.Source)
	}
}

func TestParseClassInits(t *testing.T) {
	d := parseSource(t, classSource, "Example.py")

	if len(d.Inits) != 1 {
		t.Fatalf("inits = %d", len(d.Inits))
	}
	init := d.Inits[0]
	if init.Name != "Example" {
		t.Fatalf("init name = %q", init.Name)
	}
	reprs := init.ArgsRepr()
	want := []string{"host", "port=8080", "timeout: int = 10"}
	if len(reprs) != len(want) {
		t.Fatalf("init args = %v", reprs)
	}
	for i := range want {
		if reprs[i] != want[i] {
			t.Errorf("init arg %d = %q, want %q", i, reprs[i], want[i])
		}
	}
}

func TestParseClassKeywords(t *testing.T) {
	d := parseSource(t, classSource, "Example.py")

	if len(d.Keywords) != 2 {
		t.Fatalf("keywords = %d (%v)", len(d.Keywords), keywordNames(d))
	}
	// Sorted case-insensitively.
	if d.Keywords[0].Name != "Get Server Time" || d.Keywords[1].Name != "Send Message" {
		t.Fatalf("keyword names = %v", keywordNames(d))
	}

	get := d.Keywords[0]
	if get.ShortDoc() != "Returns the current server time." {
		t.Fatalf("shortdoc = %q", get.ShortDoc())
	}
	if len(get.Tags) != 2 || get.Tags[0] != "clock" || get.Tags[1] != "remote" {
		t.Fatalf("tags = %v", get.Tags)
	}
	if strings.Contains(get.Doc, "Tags:") {
		t.Fatalf("tags line left in doc: %q", get.Doc)
	}

	send := d.Keywords[1]
	reprs := send.ArgsRepr()
	want := []string{"text", "*parts", "retries=3", "**options"}
	if len(reprs) != len(want) {
		t.Fatalf("send args = %v", reprs)
	}
	for i := range want {
		if reprs[i] != want[i] {
			t.Errorf("send arg %d = %q, want %q", i, reprs[i], want[i])
		}
	}
}

func TestParseModuleLibrary(t *testing.T) {
	d := parseSource(t, moduleSource, "utils.py")

	if d.Name != "utils" {
		t.Fatalf("name = %q", d.Name)
	}
	if d.Doc != "Utility keywords." {
		t.Fatalf("doc = %q", d.Doc)
	}
	if d.Version != "1.2.3" {
		t.Fatalf("version = %q", d.Version)
	}
	if d.Scope != "TEST" {
		t.Fatalf("scope = %q, want default", d.Scope)
	}
	if len(d.Inits) != 0 {
		t.Fatalf("module library has inits: %v", d.Inits)
	}
	if len(d.Keywords) != 2 {
		t.Fatalf("keywords = %v", keywordNames(d))
	}
	if d.Keywords[0].Name != "First Keyword" || d.Keywords[1].Name != "Second Keyword" {
		t.Fatalf("keyword names = %v", keywordNames(d))
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Example.py")
	if err := os.WriteFile(path, []byte(classSource), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Name != "Example" || doc.Source != path {
		t.Fatalf("doc = %q source %q", doc.Name, doc.Source)
	}
}

func TestParseMissingFile(t *testing.T) {
	if _, err := Parse(context.Background(), "does/not/exist.py"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCleanDocstring(t *testing.T) {
	in := "First line.\n\n        Indented body line.\n        Another one.\n    "
	want := "First line.\n\nIndented body line.\nAnother one."
	if got := cleanDocstring(in); got != want {
		t.Fatalf("cleanDocstring = %q, want %q", got, want)
	}
}

func TestStringLiteralValue(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{`"""triple"""`, "triple"},
		{`'single'`, "single"},
		{`r'raw'`, "raw"},
		{`''`, ""},
	}
	for _, tt := range tests {
		if got := stringLiteralValue(tt.input); got != tt.want {
			t.Errorf("stringLiteralValue(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPrintableName(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"get_server_time", "Get Server Time"},
		{"getServerTime", "Get Server Time"},
		{"run", "Run"},
		{"convert_to_HTML", "Convert To HTML"},
	}
	for _, tt := range tests {
		if got := printableName(tt.input); got != tt.want {
			t.Errorf("printableName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeScope(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"GLOBAL", "GLOBAL"},
		{"global", "GLOBAL"},
		{"TEST SUITE", "SUITE"},
		{"SUITE", "SUITE"},
		{"TEST", "TEST"},
		{"bogus", "TEST"},
	}
	for _, tt := range tests {
		if got := normalizeScope(tt.input); got != tt.want {
			t.Errorf("normalizeScope(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
