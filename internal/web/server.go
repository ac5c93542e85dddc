// Package web serves the generated documentation site: library pages,
// browse and search views and the JSON search API.
package web

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/doctools/libdoc/internal/config"
	"github.com/doctools/libdoc/internal/docfmt"
	"github.com/doctools/libdoc/internal/pipeline"
	"github.com/doctools/libdoc/internal/search"
)

//go:embed templates/base.html templates/index.html templates/search.html templates/library.html templates/404.html static/docs.css
var webAssets embed.FS

type Server struct {
	cfg         *config.Config
	logger      *slog.Logger
	index       *template.Template
	searchPage  *template.Template
	libraryPage *template.Template
	notFound    *template.Template
	search      *search.SQLiteSearcher
}

type libraryEntry struct {
	Name     string
	Href     template.URL
	Version  string
	ShortDoc string
}

type indexView struct {
	ActiveNav string
	SiteURL   string
	Libraries []libraryEntry
	Count     int
}

type libraryView struct {
	ActiveNav    string
	Title        string
	Version      string
	Scope        string
	ShortDoc     string
	Body         template.HTML
	TOC          template.HTML
	SiteURL      string
	CanonicalURL string
	JSONHref     template.URL
	XMLHref      template.URL
}

type searchResultView struct {
	Library string
	Keyword string
	Desc    string
	Path    string
}

type searchView struct {
	ActiveNav   string
	SiteURL     string
	Query       string
	Library     string
	Total       uint64
	Results     []searchResultView
	SearchError bool
}

func NewServer(cfg *config.Config, logger *slog.Logger) *Server {
	index := template.Must(template.ParseFS(webAssets, "templates/base.html", "templates/index.html"))
	searchPage := template.Must(template.ParseFS(webAssets, "templates/base.html", "templates/search.html"))
	libraryPage := template.Must(template.ParseFS(webAssets, "templates/base.html", "templates/library.html"))
	notFound := template.Must(template.ParseFS(webAssets, "templates/base.html", "templates/404.html"))
	searcher, err := search.NewSQLiteSearcher(cfg.IndexPath())
	if err != nil {
		logger.Warn("search index unavailable", "error", err)
	}
	return &Server{
		cfg:         cfg,
		logger:      logger,
		index:       index,
		searchPage:  searchPage,
		libraryPage: libraryPage,
		notFound:    notFound,
		search:      searcher,
	}
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// Handler builds the full route table wrapped in logging and gzip
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/robots.txt", s.handleRobotsTxt)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/search", s.handleSearchPage)
	mux.HandleFunc("/libraries/", s.handleLibraries)
	mux.HandleFunc("/", s.handleIndex)
	staticFS, _ := fs.Sub(webAssets, "static")
	staticETag := computeStaticETag()
	mux.Handle("/static/", staticCacheHandler(staticETag,
		http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))),
	))
	sitemapDir := filepath.Join(s.cfg.OutputDir, "sitemaps")
	mux.Handle("/sitemaps/", http.StripPrefix("/sitemaps/", http.FileServer(http.Dir(sitemapDir))))

	return s.logRequests(gzipHandler(mux))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		s.renderNotFound(w, r)
		return
	}
	view := indexView{
		ActiveNav: "home",
		SiteURL:   s.cfg.SiteURL(),
		Libraries: s.libraryEntries(),
	}
	view.Count = len(view.Libraries)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.index.ExecuteTemplate(w, "base", view); err != nil {
		s.logger.Error("render error", "template", "index", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleRobotsTxt(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, `User-agent: *
Allow: /
Disallow: /api/
Disallow: /healthz

Sitemap: %s/sitemaps/sitemap-index.xml
`, s.cfg.SiteURL())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "search index unavailable",
		})
		return
	}

	query := r.URL.Query().Get("q")
	libName := r.URL.Query().Get("library")
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	results, err := s.search.Search(r.Context(), query, libName, limit, offset)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(results)
}

func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	view := searchView{
		ActiveNav: "search",
		SiteURL:   s.cfg.SiteURL(),
		Query:     r.URL.Query().Get("q"),
		Library:   r.URL.Query().Get("library"),
	}

	if view.Query != "" {
		if s.search == nil {
			view.SearchError = true
		} else {
			results, err := s.search.Search(r.Context(), view.Query, view.Library, 50, 0)
			if err != nil {
				view.SearchError = true
			} else {
				view.Total = results.Total
				for _, res := range results.Results {
					view.Results = append(view.Results, searchResultView{
						Library: res.Library,
						Keyword: res.Keyword,
						Desc:    res.ShortDoc,
						Path:    res.Path,
					})
				}
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.searchPage.ExecuteTemplate(w, "base", view); err != nil {
		s.logger.Error("render error", "template", "search", "error", err)
	}
}

func (s *Server) handleLibraries(w http.ResponseWriter, r *http.Request) {
	clean := filepath.Clean(r.URL.Path)
	if clean == "/libraries" {
		view := indexView{
			ActiveNav: "browse",
			SiteURL:   s.cfg.SiteURL(),
			Libraries: s.libraryEntries(),
		}
		view.Count = len(view.Libraries)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.index.ExecuteTemplate(w, "base", view); err != nil {
			s.logger.Error("render error", "template", "browse", "error", err)
		}
		return
	}

	fsPath := filepath.Join(s.cfg.OutputDir, clean)

	// Plain text rendering for LLM consumption.
	if strings.HasSuffix(clean, ".txt") {
		s.serveLibraryText(w, r, strings.TrimSuffix(fsPath, ".txt")+".html")
		return
	}

	if strings.HasSuffix(clean, ".json") || strings.HasSuffix(clean, ".xml") {
		http.ServeFile(w, r, fsPath)
		return
	}

	info, err := os.Stat(fsPath)
	if err != nil || info.IsDir() {
		s.renderNotFound(w, r)
		return
	}
	s.serveLibrary(w, r, fsPath)
}

func (s *Server) serveLibrary(w http.ResponseWriter, r *http.Request, fsPath string) {
	raw, err := os.ReadFile(fsPath)
	if err != nil {
		s.renderNotFound(w, r)
		return
	}

	meta, body := pipeline.ParseFragmentMeta(string(raw))
	siteURL := s.cfg.SiteURL()
	clean := filepath.Clean(r.URL.Path)
	base := strings.TrimSuffix(clean, ".html")

	view := libraryView{
		ActiveNav:    "browse",
		Title:        meta.Name,
		Version:      meta.Version,
		Scope:        meta.Scope,
		ShortDoc:     meta.ShortDoc,
		Body:         template.HTML(body),
		TOC:          template.HTML(meta.TOC),
		SiteURL:      siteURL,
		CanonicalURL: siteURL + clean,
		JSONHref:     template.URL(base + ".json"),
		XMLHref:      template.URL(base + ".xml"),
	}
	if view.Title == "" {
		view.Title = strings.TrimSuffix(filepath.Base(fsPath), ".html")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.libraryPage.ExecuteTemplate(w, "base", view); err != nil {
		s.logger.Error("render error", "template", "library", "error", err)
	}
}

func (s *Server) serveLibraryText(w http.ResponseWriter, r *http.Request, htmlPath string) {
	raw, err := os.ReadFile(htmlPath)
	if err != nil {
		s.renderNotFound(w, r)
		return
	}
	_, body := pipeline.ParseFragmentMeta(string(raw))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(docfmt.StripHTMLTags(body)))
}

// libraryEntries lists generated libraries with name, version and short
// description taken from each fragment's metadata header.
func (s *Server) libraryEntries() []libraryEntry {
	libDir := filepath.Join(s.cfg.OutputDir, "libraries")
	dirEntries, err := os.ReadDir(libDir)
	if err != nil {
		return nil
	}
	var entries []libraryEntry
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ".html") {
			continue
		}
		entry := libraryEntry{
			Name: strings.TrimSuffix(name, ".html"),
			Href: template.URL("/libraries/" + name),
		}
		if raw, err := os.ReadFile(filepath.Join(libDir, name)); err == nil {
			meta, _ := pipeline.ParseFragmentMeta(string(raw))
			entry.Version = meta.Version
			entry.ShortDoc = meta.ShortDoc
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request) {
	view := indexView{SiteURL: s.cfg.SiteURL()}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := s.notFound.ExecuteTemplate(w, "base", view); err != nil {
		s.logger.Error("render error", "template", "404", "error", err)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// Flush implements http.Flusher, delegating to the underlying writer.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", filepath.Clean(r.URL.Path),
			"status", rw.statusCode,
			"duration", time.Since(start),
		)
	})
}

func computeStaticETag() string {
	h := sha256.New()
	entries, _ := webAssets.ReadDir("static")
	for _, entry := range entries {
		data, _ := webAssets.ReadFile("static/" + entry.Name())
		h.Write([]byte(entry.Name()))
		h.Write(data)
	}
	return `"` + hex.EncodeToString(h.Sum(nil))[:16] + `"`
}

func staticCacheHandler(etag string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Header().Set("ETag", etag)

		if match := r.Header.Get("If-None-Match"); match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// gzipResponseWriter conditionally compresses responses for compressible
// content types.
type gzipResponseWriter struct {
	http.ResponseWriter
	gw      *gzip.Writer
	sniffed bool
}

func (grw *gzipResponseWriter) WriteHeader(code int) {
	if code != http.StatusNotModified {
		grw.sniff()
	}
	grw.ResponseWriter.WriteHeader(code)
}

func (grw *gzipResponseWriter) Write(b []byte) (int, error) {
	grw.sniff()
	if grw.gw != nil {
		return grw.gw.Write(b)
	}
	return grw.ResponseWriter.Write(b)
}

func (grw *gzipResponseWriter) sniff() {
	if grw.sniffed {
		return
	}
	grw.sniffed = true

	ct := grw.ResponseWriter.Header().Get("Content-Type")
	if strings.HasPrefix(ct, "text/") ||
		strings.HasPrefix(ct, "application/json") ||
		strings.HasPrefix(ct, "application/javascript") {
		grw.ResponseWriter.Header().Set("Content-Encoding", "gzip")
		grw.ResponseWriter.Header().Del("Content-Length")
	} else {
		grw.gw = nil
	}
}

func (grw *gzipResponseWriter) Flush() {
	if grw.gw != nil {
		_ = grw.gw.Flush()
	}
	if f, ok := grw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func gzipHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gw := gzip.NewWriter(w)
		grw := &gzipResponseWriter{ResponseWriter: w, gw: gw}
		next.ServeHTTP(grw, r)
		if grw.gw != nil {
			_ = grw.gw.Close()
		}
	})
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
