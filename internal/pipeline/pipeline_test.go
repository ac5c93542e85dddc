package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doctools/libdoc/internal/scanner"
	"github.com/doctools/libdoc/internal/search"
	"github.com/doctools/libdoc/internal/sitemap"
	"github.com/doctools/libdoc/internal/storage"
)

const librarySource = `"""Example test library.

%TOC%

= Usage =

How to use the library.
"""


class Example:

    ROBOT_LIBRARY_VERSION = '1.0'

    def get_server_time(self):
        """Returns the current server time."""
`

func newTestRunner(t *testing.T, outDir string) *Runner {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	indexer, err := search.NewSQLiteIndexer(filepath.Join(outDir, "search.db"))
	if err != nil {
		t.Fatalf("NewSQLiteIndexer: %v", err)
	}
	return &Runner{
		Scanner: &scanner.Scanner{Logger: logger},
		Indexer: indexer,
		Storage: storage.NewFSStorage(outDir),
		SitemapGenerator: &sitemap.Generator{
			Root:    outDir,
			SiteURL: "https://docs.example.org",
			Logger:  logger,
		},
		Logger:      logger,
		FailuresDir: filepath.Join(outDir, "failures"),
	}
}

func TestRunnerRun(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "Example.py"), []byte(librarySource), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newTestRunner(t, outDir)
	if err := r.Run(context.Background(), []string{srcDir}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, rel := range []string{"libraries/Example.html", "libraries/Example.json", "libraries/Example.xml", "sitemaps/sitemap-index.xml"} {
		if _, err := os.Stat(filepath.Join(outDir, rel)); err != nil {
			t.Errorf("missing artifact %s: %v", rel, err)
		}
	}

	html, err := os.ReadFile(filepath.Join(outDir, "libraries", "Example.html"))
	if err != nil {
		t.Fatal(err)
	}
	meta, body := ParseFragmentMeta(string(html))
	if meta.Name != "Example" || meta.Version != "1.0" {
		t.Fatalf("fragment meta = %+v", meta)
	}
	if !strings.Contains(body, `<h3 id="Get Server Time">Get Server Time</h3>`) {
		t.Fatalf("fragment body missing keyword:\n%s", body)
	}

	statuses := r.Statuses()
	if len(statuses) != 1 || statuses[0].Total != 1 || statuses[0].Errors != 0 {
		t.Fatalf("statuses = %+v", statuses)
	}
}

func TestRunnerHTMLDocFormat(t *testing.T) {
	const source = `"""<p>Formatted <b>elsewhere</b>.</p>"""

ROBOT_LIBRARY_DOC_FORMAT = 'HTML'


def do_thing():
    """<i>already html</i>"""
`
	srcDir := t.TempDir()
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "rawdoc.py"), []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newTestRunner(t, outDir)
	if err := r.Run(context.Background(), []string{srcDir}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	html, err := os.ReadFile(filepath.Join(outDir, "libraries", "rawdoc.html"))
	if err != nil {
		t.Fatal(err)
	}
	_, body := ParseFragmentMeta(string(html))
	for _, want := range []string{
		"<p>Formatted <b>elsewhere</b>.</p>",
		"<i>already html</i>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("fragment missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "&lt;") {
		t.Fatalf("HTML docs were escaped:\n%s", body)
	}
}

func TestRunnerNameCollision(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "Example.py"), []byte(librarySource), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(srcDir, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "Example.py"), []byte(librarySource), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newTestRunner(t, outDir)
	if err := r.Run(context.Background(), []string{srcDir}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := r.Statuses()[0]
	if s.Total != 2 || s.Errors != 1 {
		t.Fatalf("statuses = %+v", s)
	}
	data, err := os.ReadFile(s.FailuresPath)
	if err != nil {
		t.Fatalf("missing failure log: %v", err)
	}
	if !strings.Contains(string(data), "already generated") {
		t.Fatalf("failure log = %q", data)
	}
}

func TestRunnerSkipsUnchanged(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "Example.py"), []byte(librarySource), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newTestRunner(t, outDir)
	if err := r.Run(context.Background(), []string{srcDir}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	r = newTestRunner(t, outDir)
	if err := r.Run(context.Background(), []string{srcDir}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	statuses := r.Statuses()
	if statuses[0].Skipped != 1 {
		t.Fatalf("expected cache skip, statuses = %+v", statuses)
	}

	// Force reprocesses despite the cache.
	r = newTestRunner(t, outDir)
	r.ForceProcess = true
	if err := r.Run(context.Background(), []string{srcDir}); err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if r.Statuses()[0].Skipped != 0 {
		t.Fatalf("force run skipped: %+v", r.Statuses())
	}
}

func TestRunnerScanFailure(t *testing.T) {
	outDir := t.TempDir()
	r := newTestRunner(t, outDir)

	missing := filepath.Join(t.TempDir(), "missing")
	if err := r.Run(context.Background(), []string{missing}); err == nil {
		t.Fatal("expected error for missing root")
	}
	if r.Statuses()[0].Stage != "error" {
		t.Fatalf("statuses = %+v", r.Statuses())
	}
}

func TestRecordFailureWritesLog(t *testing.T) {
	outDir := t.TempDir()
	r := newTestRunner(t, outDir)
	r.statuses = []RootStatus{{
		Root:         "libs",
		FailuresPath: filepath.Join(outDir, "failures", "libs-failures.log"),
	}}
	r.rootFailures = make([][]string, 1)

	r.recordFailure(0, "parse", "libs/Broken.py", os.ErrInvalid)

	if r.Statuses()[0].Errors != 1 {
		t.Fatalf("statuses = %+v", r.Statuses())
	}
	data, err := os.ReadFile(r.Statuses()[0].FailuresPath)
	if err != nil {
		t.Fatalf("missing failure log: %v", err)
	}
	if !strings.Contains(string(data), "Broken.py") {
		t.Fatalf("failure log = %q", data)
	}
}

func TestRunnerMissingDependencies(t *testing.T) {
	r := &Runner{}
	if err := r.Run(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
