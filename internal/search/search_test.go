package search

import (
	"context"
	"path/filepath"
	"testing"
)

func TestIndexAndSearch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	ctx := context.Background()

	indexer, err := NewSQLiteIndexer(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteIndexer: %v", err)
	}
	docs := []Document{
		{Library: "Example", Keyword: "Get Server Time", ShortDoc: "Returns the time.",
			Tags: "clock remote", Path: "/libraries/Example.html#Get%20Server%20Time",
			Content: "Returns the current server time."},
		{Library: "Example", Keyword: "Send Message", ShortDoc: "Sends a message.",
			Path: "/libraries/Example.html#Send%20Message", Content: "Sends a message."},
		{Library: "utils", Keyword: "First Keyword", ShortDoc: "Does the first thing.",
			Path: "/libraries/utils.html#First%20Keyword", Content: "Does the first thing."},
	}
	for _, doc := range docs {
		if err := indexer.IndexKeyword(ctx, doc); err != nil {
			t.Fatalf("IndexKeyword: %v", err)
		}
	}
	if err := indexer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	searcher, err := NewSQLiteSearcher(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteSearcher: %v", err)
	}
	defer searcher.Close()

	resp, err := searcher.Search(ctx, "server", "", 10, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 1 || len(resp.Results) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Results[0].Keyword != "Get Server Time" {
		t.Fatalf("result = %+v", resp.Results[0])
	}

	// Prefix matching.
	resp, err = searcher.Search(ctx, "mess", "", 10, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 1 || resp.Results[0].Keyword != "Send Message" {
		t.Fatalf("prefix response: %+v", resp)
	}

	// Library filter.
	resp, err = searcher.Search(ctx, "keyword", "Example", 10, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 0 {
		t.Fatalf("filter response: %+v", resp)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	indexer, err := NewSQLiteIndexer(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	_ = indexer.Close()

	searcher, err := NewSQLiteSearcher(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer searcher.Close()

	resp, err := searcher.Search(context.Background(), "  !!  ", "", 10, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 0 || len(resp.Results) != 0 {
		t.Fatalf("expected empty response, got %+v", resp)
	}
}

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"server time", `"server"* "time"*`},
		{`drop"; --`, `"drop"* "--"*`},
		{"AND", ""},
		{"", ""},
		{"log-rotate", `"log-rotate"*`},
	}
	for _, tt := range tests {
		if got := sanitizeQuery(tt.input); got != tt.want {
			t.Errorf("sanitizeQuery(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
