package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/doctools/libdoc/internal/docfmt"
	"github.com/doctools/libdoc/internal/library"
	"github.com/doctools/libdoc/internal/pysrc"
	"github.com/doctools/libdoc/internal/scanner"
	"github.com/doctools/libdoc/internal/search"
	"github.com/doctools/libdoc/internal/sitemap"
	"github.com/doctools/libdoc/internal/storage"
)

type Runner struct {
	Scanner          *scanner.Scanner
	Indexer          search.Indexer
	Storage          *storage.FSStorage
	SitemapGenerator *sitemap.Generator
	Logger           *slog.Logger
	FailuresDir      string
	ForceProcess     bool
	DefaultDocFormat string

	mu           sync.Mutex
	statuses     []RootStatus
	rootFailures [][]string
	seen         map[string]string
}

func (r *Runner) Run(ctx context.Context, roots []string) error {
	if r.Scanner == nil || r.Storage == nil {
		return errors.New("pipeline runner missing dependencies")
	}

	r.statuses = make([]RootStatus, len(roots))
	r.rootFailures = make([][]string, len(roots))
	r.seen = make(map[string]string)
	for i, root := range roots {
		r.statuses[i] = RootStatus{Root: root, Stage: "waiting"}
	}

	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once

	for i, root := range roots {
		wg.Add(1)
		go func(idx int, root string) {
			defer wg.Done()
			if err := r.runRoot(ctx, idx, root); err != nil {
				errOnce.Do(func() { firstErr = err })
				r.mu.Lock()
				r.statuses[idx].Stage = "error"
				r.mu.Unlock()
			}
		}(i, root)
	}

	wg.Wait()

	if r.Indexer != nil {
		if err := r.Indexer.Close(); err != nil {
			return fmt.Errorf("close indexer: %w", err)
		}
	}

	if r.SitemapGenerator != nil {
		if err := r.SitemapGenerator.Generate(ctx); err != nil && r.Logger != nil {
			// A broken sitemap does not fail the run.
			r.Logger.Error("sitemap generation failed", "error", err)
		}
	}

	var totalFailures int
	for _, failures := range r.rootFailures {
		totalFailures += len(failures)
	}
	if totalFailures > 0 && r.Logger != nil {
		r.Logger.Warn("generation completed with failures", "count", totalFailures)
	}

	return firstErr
}

func (r *Runner) runRoot(ctx context.Context, idx int, root string) error {
	label := rootLabel(root)

	r.mu.Lock()
	if r.FailuresDir != "" {
		r.statuses[idx].FailuresPath = filepath.Join(r.FailuresDir, label+"-failures.log")
	}
	failPath := r.statuses[idx].FailuresPath
	r.mu.Unlock()

	// Create the failure log up front so users can tail it during processing.
	if failPath != "" {
		_ = os.MkdirAll(filepath.Dir(failPath), 0o755)
		_ = os.WriteFile(failPath, nil, 0o644)
	}

	if r.Logger != nil {
		r.Logger.Info("scanning root", "root", root)
	}

	files, err := r.Scanner.Scan(root)
	if err != nil {
		return fmt.Errorf("scan root %s: %w", root, err)
	}

	r.mu.Lock()
	r.statuses[idx].Stage = "processing"
	r.statuses[idx].Total = len(files)
	r.mu.Unlock()

	for _, file := range files {
		if err := r.processLibrary(ctx, idx, label, file); err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				r.recordFailure(idx, "parse", file.Path, pe.Unwrap())
			} else {
				r.recordFailure(idx, "generate", file.Path, err)
			}
		}
		r.mu.Lock()
		r.statuses[idx].Done++
		r.mu.Unlock()
	}

	r.mu.Lock()
	s := r.statuses[idx]
	r.statuses[idx].Stage = "done"
	r.mu.Unlock()
	if r.Logger != nil {
		r.Logger.Info("root done", "root", root, "total", s.Total, "skipped", s.Skipped, "errors", s.Errors)
	}
	return nil
}

func (r *Runner) processLibrary(ctx context.Context, idx int, label string, file scanner.SourceFile) error {
	if r.Logger != nil {
		r.Logger.Debug("processing library", "root", label, "library", file.Name)
	}

	// Artifacts are keyed on the library name, so a second file with the
	// same name would overwrite the first. Claim the name before the cache
	// check so a cache-skipped library still holds it.
	r.mu.Lock()
	if prev, ok := r.seen[file.Name]; ok {
		r.mu.Unlock()
		return fmt.Errorf("library %s already generated from %s", file.Name, prev)
	}
	if r.seen == nil {
		r.seen = make(map[string]string)
	}
	r.seen[file.Name] = file.Path
	r.mu.Unlock()

	if !r.ForceProcess && file.SHA1 != "" && r.Storage.CheckCache(label, file.Name, file.SHA1) {
		if r.Logger != nil {
			r.Logger.Debug("skipping unchanged library", "root", label, "library", file.Name)
		}
		r.mu.Lock()
		r.statuses[idx].Skipped++
		r.mu.Unlock()
		return nil
	}

	doc, err := pysrc.Parse(ctx, file.Path)
	if err != nil {
		return &ParseError{Err: err}
	}
	// Site-wide default for libraries that do not declare their own format.
	if r.DefaultDocFormat != "" && doc.DocFormat == library.FormatRobot {
		doc.DocFormat = strings.ToUpper(r.DefaultDocFormat)
	}

	if err := GenerateLibrary(ctx, doc, r.Storage, r.Indexer); err != nil {
		return err
	}

	if file.SHA1 != "" {
		if err := r.Storage.WriteCache(ctx, label, file.Name, file.SHA1); err != nil {
			return fmt.Errorf("write cache for %s: %w", file.Name, err)
		}
	}
	return nil
}

// GenerateLibrary writes every artifact for a single parsed library: the
// JSON and XML exports, the search index entries and the HTML fragment.
func GenerateLibrary(ctx context.Context, doc *library.Doc, store *storage.FSStorage, indexer search.Indexer) error {
	paths := DocPaths(doc.Name)

	jsonData, err := doc.ToJSON(true)
	if err != nil {
		return fmt.Errorf("marshal json %s: %w", doc.Name, err)
	}
	if err := store.WriteJSON(ctx, paths.JSONPath, jsonData); err != nil {
		return fmt.Errorf("write json %s: %w", paths.JSONPath, err)
	}

	xmlData, err := doc.ToXML()
	if err != nil {
		return fmt.Errorf("marshal xml %s: %w", doc.Name, err)
	}
	if err := store.WriteXML(ctx, paths.XMLPath, xmlData); err != nil {
		return fmt.Errorf("write xml %s: %w", paths.XMLPath, err)
	}

	// Index from the raw docs before HTML conversion. Docs already written
	// in HTML are stripped to plain text first.
	if indexer != nil {
		for _, kw := range doc.Keywords {
			shortdoc, content := kw.ShortDoc(), kw.Doc
			if doc.DocFormat == library.FormatHTML {
				shortdoc = docfmt.StripHTMLTags(shortdoc)
				content = docfmt.StripHTMLTags(content)
			}
			entry := search.Document{
				Library:  doc.Name,
				Keyword:  kw.Name,
				ShortDoc: shortdoc,
				Tags:     strings.Join(kw.Tags, " "),
				Path:     "/" + paths.HTMLPath + "#" + docfmt.EncodeAnchor(kw.Name),
				Content:  content,
			}
			if err := indexer.IndexKeyword(ctx, entry); err != nil {
				return fmt.Errorf("index keyword %s: %w", kw.Name, err)
			}
		}
	}

	fragment, err := BuildFragment(doc)
	if err != nil {
		return fmt.Errorf("build fragment %s: %w", doc.Name, err)
	}
	if err := store.WriteHTML(ctx, paths.HTMLPath, fragment); err != nil {
		return fmt.Errorf("write html %s: %w", paths.HTMLPath, err)
	}

	return nil
}

func (r *Runner) recordFailure(idx int, stage string, path string, err error) {
	message := strings.TrimSpace(fmt.Sprintf("%s %s: %v", stage, path, err))
	r.mu.Lock()
	r.rootFailures[idx] = append(r.rootFailures[idx], message)
	r.statuses[idx].Errors++
	failPath := r.statuses[idx].FailuresPath
	r.mu.Unlock()

	// Append to the failure log immediately so users can tail it.
	if failPath != "" {
		f, ferr := os.OpenFile(failPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if ferr == nil {
			_, _ = fmt.Fprintln(f, message)
			_ = f.Close()
		}
	}

	if r.Logger != nil {
		r.Logger.Warn("pipeline failure", "stage", stage, "path", path, "error", err)
	}
}

// Statuses returns a snapshot of per-root progress.
func (r *Runner) Statuses() []RootStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RootStatus, len(r.statuses))
	copy(out, r.statuses)
	return out
}

func rootLabel(root string) string {
	label := filepath.Base(filepath.Clean(root))
	if label == "." || label == string(filepath.Separator) {
		return "root"
	}
	return label
}
