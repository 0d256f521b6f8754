package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// markerCategory identifies a publication as externally sourced; every synced
// document carries it exactly once.
const markerCategory = "member-publication"

// sourceBlock records the provenance of a synced publication in its metadata
type sourceBlock struct {
	Member      string `yaml:"member"`
	Username    string `yaml:"username"`
	OriginalURL string `yaml:"original_url"`
	GithubPath  string `yaml:"github_path"`
	Directory   string `yaml:"directory"`
}

// renderedMetadata is the normalized metadata block written to disk. Field
// order is fixed so repeat runs produce byte-identical output; passthrough
// fields follow in the inline map.
type renderedMetadata struct {
	Title      string         `yaml:"title"`
	Author     []string       `yaml:"author"`
	Categories []string       `yaml:"categories"`
	Source     sourceBlock    `yaml:"source"`
	Extra      map[string]any `yaml:",inline"`
}

// Reconciler renders publications and applies create/update/skip decisions to
// the local publications tree.
type Reconciler struct {
	session *Session
	root    string
	dryRun  bool
}

// NewReconciler creates a reconciler rooted at the publications directory
func NewReconciler(session *Session, root string, dryRun bool) *Reconciler {
	return &Reconciler{session: session, root: root, dryRun: dryRun}
}

// RenderPublication produces the final document text and asset download list
// for a publication. It is a pure function of its inputs.
func RenderPublication(pub *ParsedPublication, doc RemoteDocument, member Member, sync SyncConfig, localDir string) (*RenderedOutput, error) {
	sourceURL := doc.SourceURL
	if sourceURL == "" {
		sourceURL = member.ProfileURL
	}

	meta := renderedMetadata{
		Title:      pub.Title,
		Author:     pub.Author,
		Categories: renderCategories(pub.Categories),
		Source: sourceBlock{
			Member:      member.Name,
			Username:    member.Username,
			OriginalURL: sourceURL,
			GithubPath:  doc.RemotePath,
			Directory:   doc.DirectoryName,
		},
		Extra: passthroughFields(pub.Metadata),
	}

	header, err := yaml.Marshal(&meta)
	if err != nil {
		return nil, fmt.Errorf("serializing metadata for %s: %w", doc.DirectoryName, err)
	}

	body := pub.Body
	if sync.AttributionEnabled() {
		body += fmt.Sprintf("\n\n---\n\n*This publication was originally published by [%s](%s) and automatically synced to the lab website.*",
			member.Name, member.ProfileURL)
	}

	output := &RenderedOutput{
		Content: fmt.Sprintf("---\n%s---\n\n%s", header, body),
	}
	for _, image := range doc.Images {
		output.Assets = append(output.Assets, AssetDownload{
			LocalPath: filepath.Join(localDir, image.Name),
			URL:       image.DownloadURL,
		})
	}

	return output, nil
}

// renderCategories returns the categories with the marker appended when
// absent. Rendering already-marked input adds nothing, keeping repeat runs
// stable.
func renderCategories(categories []string) []string {
	out := append([]string(nil), categories...)
	for _, category := range out {
		if category == markerCategory {
			return out
		}
	}
	return append(out, markerCategory)
}

// passthroughFields copies original metadata fields that the normalized block
// does not already own
func passthroughFields(metadata map[string]any) map[string]any {
	extra := make(map[string]any, len(metadata))
	for key, value := range metadata {
		switch key {
		case "title", "author", "categories", "source":
			continue
		}
		extra[key] = value
	}
	return extra
}

// LocalDirName returns the deterministic local directory name for a document
func LocalDirName(member Member, directoryName string) string {
	return fmt.Sprintf("%s-%s", strings.ToLower(member.Username), directoryName)
}

// Reconcile renders a publication, decides the local action, and applies it.
// In dry-run mode decisions are logged without touching the filesystem.
func (r *Reconciler) Reconcile(ctx context.Context, pub *ParsedPublication, doc RemoteDocument, member Member, sync SyncConfig) (SyncAction, error) {
	subdir := ResolveDestination(pub, member, sync)
	localDir := filepath.Join(r.root, subdir, LocalDirName(member, doc.DirectoryName))
	indexPath := filepath.Join(localDir, primaryDocument)

	output, err := RenderPublication(pub, doc, member, sync, localDir)
	if err != nil {
		return ActionSkip, err
	}

	action := decideAction(indexPath, output.Content)

	if r.dryRun {
		log.Printf("[DRY RUN] Would %s publication directory: %s", action, localDir)
		for _, asset := range output.Assets {
			log.Printf("[DRY RUN] Would download image: %s", asset.LocalPath)
		}
		preview := output.Content
		if len(preview) > 200 {
			preview = preview[:200]
		}
		debugLog("[DRY RUN] Content preview:\n%s...", preview)
		return action, nil
	}

	switch action {
	case ActionSkip:
		debugLog("No changes detected for %s", indexPath)
		return action, nil
	case ActionUpdate:
		log.Printf("Updating existing publication: %s", localDir)
	case ActionCreate:
		log.Printf("Creating new publication: %s", localDir)
	}

	if err := os.MkdirAll(localDir, 0755); err != nil {
		return action, fmt.Errorf("creating directory %s: %w", localDir, err)
	}
	if err := os.WriteFile(indexPath, []byte(output.Content), 0644); err != nil {
		return action, fmt.Errorf("writing %s: %w", indexPath, err)
	}

	for _, asset := range output.Assets {
		if err := r.downloadAsset(ctx, asset); err != nil {
			log.Printf("Warning: failed to download image %s: %v", asset.LocalPath, err)
		}
	}

	return action, nil
}

// decideAction compares freshly rendered content to the existing local copy.
// Equality ignores leading and trailing whitespace only; internal formatting
// differences count as changes.
func decideAction(indexPath, rendered string) SyncAction {
	existing, err := os.ReadFile(indexPath)
	if err != nil {
		return ActionCreate
	}
	if strings.TrimSpace(string(existing)) == strings.TrimSpace(rendered) {
		return ActionSkip
	}
	return ActionUpdate
}

// downloadAsset fetches a binary asset and writes it under the publication
// directory
func (r *Reconciler) downloadAsset(ctx context.Context, asset AssetDownload) error {
	body, err := r.session.Get(ctx, asset.URL)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(asset.LocalPath), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", asset.LocalPath, err)
	}
	if err := os.WriteFile(asset.LocalPath, body, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", asset.LocalPath, err)
	}
	debugLog("Downloaded image file: %s", asset.LocalPath)
	return nil
}
