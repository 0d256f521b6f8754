package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testDoc() RemoteDocument {
	return RemoteDocument{
		DirectoryName: "2025_paper",
		SourceURL:     "https://github.com/octocat/octocat.github.io/blob/main/publications/2025_paper/index.qmd",
		RemotePath:    "publications/2025_paper/index.qmd",
	}
}

func TestRenderPublication(t *testing.T) {
	pub := &ParsedPublication{
		Title:      "Paper X",
		Author:     []string{"Octo Cat"},
		Categories: []string{"paper"},
		Body:       "Body text.",
		Metadata:   map[string]any{"type": "paper", "doi": "10.1234/example"},
	}

	out, err := RenderPublication(pub, testDoc(), testMember, SyncConfig{}, "publications/papers/octocat-2025_paper")
	if err != nil {
		t.Fatalf("RenderPublication() error = %v", err)
	}

	if !strings.HasPrefix(out.Content, "---\n") {
		t.Error("rendered content must start with the metadata delimiter")
	}
	for _, want := range []string{
		"title: Paper X",
		"- Octo Cat",
		"- paper",
		"- member-publication",
		"username: octocat",
		"directory: 2025_paper",
		"type: paper",
		"doi: 10.1234/example",
	} {
		if !strings.Contains(out.Content, want) {
			t.Errorf("rendered content missing %q:\n%s", want, out.Content)
		}
	}

	// Attribution is on by default
	if !strings.Contains(out.Content, "originally published by [Octo Cat](https://octocat.github.io)") {
		t.Error("rendered content missing attribution trailer")
	}
}

func TestRenderPublicationNoAttribution(t *testing.T) {
	disabled := false
	pub := &ParsedPublication{Title: "T", Author: []string{"A"}, Body: "Body.", Metadata: map[string]any{}}

	out, err := RenderPublication(pub, testDoc(), testMember, SyncConfig{AddAttribution: &disabled}, "dir")
	if err != nil {
		t.Fatalf("RenderPublication() error = %v", err)
	}
	if strings.Contains(out.Content, "originally published") {
		t.Error("attribution should be absent when disabled")
	}
}

func TestRenderPublicationDeterministic(t *testing.T) {
	pub := &ParsedPublication{
		Title:    "T",
		Author:   []string{"A"},
		Body:     "Body.",
		Metadata: map[string]any{"zeta": "z", "alpha": "a", "type": "post"},
	}

	first, err := RenderPublication(pub, testDoc(), testMember, SyncConfig{}, "dir")
	if err != nil {
		t.Fatalf("RenderPublication() error = %v", err)
	}
	second, err := RenderPublication(pub, testDoc(), testMember, SyncConfig{}, "dir")
	if err != nil {
		t.Fatalf("RenderPublication() error = %v", err)
	}
	if first.Content != second.Content {
		t.Error("rendering the same publication twice must be byte-identical")
	}
}

func TestRenderCategoriesMarker(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  int
	}{
		{"marker added", []string{"paper"}, 1},
		{"marker not duplicated", []string{"paper", markerCategory}, 1},
		{"empty input", nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderCategories(tt.input)
			count := 0
			for _, c := range got {
				if c == markerCategory {
					count++
				}
			}
			if count != tt.want {
				t.Errorf("marker category count = %d, want %d", count, tt.want)
			}
		})
	}
}

func TestDecideAction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, primaryDocument)
	rendered := "---\ntitle: T\n---\n\nBody."

	if got := decideAction(path, rendered); got != ActionCreate {
		t.Errorf("decideAction() = %q, want create when file absent", got)
	}

	if err := os.WriteFile(path, []byte("  \n"+rendered+"\n\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := decideAction(path, rendered); got != ActionSkip {
		t.Errorf("decideAction() = %q, want skip for trim-identical content", got)
	}

	if err := os.WriteFile(path, []byte(rendered+"\nextra line"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := decideAction(path, rendered); got != ActionUpdate {
		t.Errorf("decideAction() = %q, want update for changed content", got)
	}
}

func TestReconcileCreateWritesFileAndAssets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("PNGDATA"))
	}))
	defer server.Close()

	root := t.TempDir()
	rec := NewReconciler(newTestSession(), root, false)

	doc := testDoc()
	doc.Images = []ImageAsset{{Name: "featured.png", DownloadURL: server.URL + "/featured.png"}}

	pub := &ParsedPublication{
		Title:      "Paper X",
		Author:     []string{"Octo Cat"},
		Categories: []string{"paper"},
		Body:       "Body.",
		Metadata:   map[string]any{},
	}
	sync := SyncConfig{CategoryMapping: map[string]string{"paper": "papers"}}

	action, err := rec.Reconcile(context.Background(), pub, doc, testMember, sync)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if action != ActionCreate {
		t.Errorf("Reconcile() action = %q, want create", action)
	}

	indexPath := filepath.Join(root, "papers", "octocat-2025_paper", primaryDocument)
	if _, err := os.Stat(indexPath); err != nil {
		t.Fatalf("primary document not written: %v", err)
	}

	imageData, err := os.ReadFile(filepath.Join(root, "papers", "octocat-2025_paper", "featured.png"))
	if err != nil {
		t.Fatalf("asset not written: %v", err)
	}
	if string(imageData) != "PNGDATA" {
		t.Errorf("asset content = %q, want %q", imageData, "PNGDATA")
	}

	// Second reconcile with unchanged input skips
	action, err = rec.Reconcile(context.Background(), pub, doc, testMember, sync)
	if err != nil {
		t.Fatalf("Reconcile() second run error = %v", err)
	}
	if action != ActionSkip {
		t.Errorf("Reconcile() second run action = %q, want skip", action)
	}
}

func TestReconcileAssetFailureDoesNotBlockWrite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	root := t.TempDir()
	rec := NewReconciler(newTestSession(), root, false)

	doc := testDoc()
	doc.Images = []ImageAsset{{Name: "featured.png", DownloadURL: server.URL + "/featured.png"}}
	pub := &ParsedPublication{Title: "T", Author: []string{"A"}, Body: "Body.", Metadata: map[string]any{}}

	action, err := rec.Reconcile(context.Background(), pub, doc, testMember, SyncConfig{})
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if action != ActionCreate {
		t.Errorf("Reconcile() action = %q, want create", action)
	}

	indexPath := filepath.Join(root, "posts", "octocat-2025_paper", primaryDocument)
	if _, err := os.Stat(indexPath); err != nil {
		t.Fatalf("primary document should be written despite asset failure: %v", err)
	}
}

func TestReconcileDryRun(t *testing.T) {
	root := t.TempDir()
	rec := NewReconciler(newTestSession(), root, true)

	pub := &ParsedPublication{Title: "T", Author: []string{"A"}, Body: "Body.", Metadata: map[string]any{}}

	action, err := rec.Reconcile(context.Background(), pub, testDoc(), testMember, SyncConfig{})
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if action != ActionCreate {
		t.Errorf("Reconcile() action = %q, want create", action)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dry run must not write anything, found %d entries", len(entries))
	}
}
