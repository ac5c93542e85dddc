package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxSitemapURLs = 50000

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapIndex struct {
	XMLName  xml.Name          `xml:"sitemapindex"`
	XMLNS    string            `xml:"xmlns,attr"`
	Sitemaps []sitemapIndexRef `xml:"sitemap"`
}

type sitemapIndexRef struct {
	XMLName xml.Name `xml:"sitemap"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

// Generator creates sitemap XML files by walking the generated library
// documentation tree.
type Generator struct {
	Root    string // OutputDir
	SiteURL string // e.g. "https://docs.example.org"
	Logger  *slog.Logger
}

// Generate writes a static-pages sitemap, library sitemaps and a sitemap
// index to {Root}/sitemaps/.
func (g *Generator) Generate(ctx context.Context) error {
	sitemapDir := filepath.Join(g.Root, "sitemaps")
	if err := os.MkdirAll(sitemapDir, 0o755); err != nil {
		return fmt.Errorf("create sitemaps dir: %w", err)
	}

	now := time.Now().UTC().Format("2006-01-02")

	staticURLs := []sitemapURL{
		{Loc: g.SiteURL + "/", LastMod: now},
		{Loc: g.SiteURL + "/search", LastMod: now},
		{Loc: g.SiteURL + "/libraries/", LastMod: now},
	}
	staticFile := "sitemap-static.xml"
	if err := g.writeSitemap(filepath.Join(sitemapDir, staticFile), staticURLs); err != nil {
		return fmt.Errorf("write static sitemap: %w", err)
	}
	indexRefs := []sitemapIndexRef{{
		Loc:     g.SiteURL + "/sitemaps/" + staticFile,
		LastMod: now,
	}}

	refs, err := g.generateLibraries(ctx, sitemapDir)
	if err != nil {
		return err
	}
	indexRefs = append(indexRefs, refs...)

	idx := sitemapIndex{
		XMLNS:    "http://www.sitemaps.org/schemas/sitemap/0.9",
		Sitemaps: indexRefs,
	}
	indexPath := filepath.Join(sitemapDir, "sitemap-index.xml")
	return writeXML(indexPath, idx)
}

func (g *Generator) generateLibraries(ctx context.Context, sitemapDir string) ([]sitemapIndexRef, error) {
	libDir := filepath.Join(g.Root, "libraries")
	entries, err := os.ReadDir(libDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read libraries dir: %w", err)
	}

	var urls []sitemapURL
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".html") {
			continue
		}
		var lastmod string
		if info, err := entry.Info(); err == nil {
			lastmod = info.ModTime().UTC().Format("2006-01-02")
		}
		urls = append(urls, sitemapURL{
			Loc:     g.SiteURL + "/libraries/" + name,
			LastMod: lastmod,
		})
	}
	if len(urls) == 0 {
		return nil, nil
	}

	var refs []sitemapIndexRef
	now := time.Now().UTC().Format("2006-01-02")

	chunks := splitURLs(urls, maxSitemapURLs)
	for i, chunk := range chunks {
		filename := "sitemap-libraries"
		if len(chunks) > 1 {
			filename = fmt.Sprintf("%s-%d", filename, i+1)
		}
		filename += ".xml"

		if err := g.writeSitemap(filepath.Join(sitemapDir, filename), chunk); err != nil {
			return nil, err
		}
		refs = append(refs, sitemapIndexRef{
			Loc:     g.SiteURL + "/sitemaps/" + filename,
			LastMod: now,
		})
	}

	return refs, nil
}

func (g *Generator) writeSitemap(path string, urls []sitemapURL) error {
	urlset := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	return writeXML(path, urlset)
}

func writeXML(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func splitURLs(urls []sitemapURL, maxPerFile int) [][]sitemapURL {
	if len(urls) <= maxPerFile {
		return [][]sitemapURL{urls}
	}
	var chunks [][]sitemapURL
	for i := 0; i < len(urls); i += maxPerFile {
		end := i + maxPerFile
		if end > len(urls) {
			end = len(urls)
		}
		chunks = append(chunks, urls[i:end])
	}
	return chunks
}
