package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

const (
	apiBaseURL = "https://api.github.com"
	rawBaseURL = "https://raw.githubusercontent.com"
)

// imageExtensions is the probe order for featured images on the raw fallback
// path; discovery stops at the first extension that resolves.
var imageExtensions = []string{"jpg", "jpeg", "png", "gif", "svg"}

// fallbackDirectories is the degraded-path directory list used when the
// listing API is unavailable. Direct fetches cannot discover unknown
// directories, only confirm known ones, so this set (or the member's
// fallback_directories) bounds what the fallback can find.
var fallbackDirectories = []string{"20250917_test"}

// contentEntry is one item in a GitHub contents API listing, or a single file
// response when fetched by URL.
type contentEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Path        string `json:"path"`
	URL         string `json:"url"`
	HTMLURL     string `json:"html_url"`
	DownloadURL string `json:"download_url"`
	Content     string `json:"content"`
	Encoding    string `json:"encoding"`
}

// memberRepo returns the member's GitHub Pages repository name
func memberRepo(member Member) string {
	return member.Username + ".github.io"
}

// contentsSource discovers publications through the repository contents API
type contentsSource struct {
	session *Session
	baseURL string
}

func (s *contentsSource) Name() string { return "contents API" }

func (s *contentsSource) Discover(ctx context.Context, member Member, path string) ([]RemoteDocument, error) {
	listURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s", s.baseURL, member.Username, memberRepo(member), path)
	debugLog("Listing %s", listURL)

	body, err := s.session.Get(ctx, listURL)
	if err != nil {
		return nil, err
	}

	var entries []contentEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decoding listing for %s: %w", member.Username, err)
	}

	debugLog("Listing returned %d entries for %s", len(entries), member.Username)

	var docs []RemoteDocument
	for _, entry := range entries {
		if entry.Type != "dir" || strings.HasPrefix(entry.Name, reservedPrefix) {
			continue
		}
		doc, err := s.discoverDirectory(ctx, entry)
		if err != nil {
			log.Printf("Warning: error processing directory %s: %v", entry.Name, err)
			continue
		}
		if doc != nil {
			docs = append(docs, *doc)
		}
	}

	return docs, nil
}

// discoverDirectory lists one candidate directory and returns a document if
// it qualifies (contains the primary document file). A nil document with nil
// error means the directory is not a publication.
func (s *contentsSource) discoverDirectory(ctx context.Context, dir contentEntry) (*RemoteDocument, error) {
	body, err := s.session.Get(ctx, dir.URL)
	if err != nil {
		return nil, fmt.Errorf("listing directory %s: %w", dir.Name, err)
	}

	var entries []contentEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decoding directory listing %s: %w", dir.Name, err)
	}

	var index *contentEntry
	var images []ImageAsset
	for i, entry := range entries {
		if entry.Type != "file" {
			continue
		}
		switch {
		case entry.Name == primaryDocument:
			index = &entries[i]
		case isFeaturedImage(entry.Name):
			images = append(images, ImageAsset{
				Name:        entry.Name,
				DownloadURL: entry.DownloadURL,
				RemotePath:  entry.Path,
			})
		}
	}

	if index == nil {
		debugLog("Directory %s does not contain %s, skipping", dir.Name, primaryDocument)
		return nil, nil
	}

	content, err := s.fetchFileContent(ctx, index.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s/%s: %w", dir.Name, primaryDocument, err)
	}

	return &RemoteDocument{
		DirectoryName: dir.Name,
		Content:       content,
		Images:        images,
		SourceURL:     index.HTMLURL,
		RemotePath:    index.Path,
	}, nil
}

// fetchFileContent fetches a file through the contents API and decodes the
// base64 payload it wraps text content in.
func (s *contentsSource) fetchFileContent(ctx context.Context, fileURL string) (string, error) {
	body, err := s.session.Get(ctx, fileURL)
	if err != nil {
		return "", err
	}

	var file contentEntry
	if err := json.Unmarshal(body, &file); err != nil {
		return "", fmt.Errorf("decoding file response: %w", err)
	}

	// The API inserts newlines into the base64 payload
	raw := strings.ReplaceAll(file.Content, "\n", "")
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("decoding base64 content: %w", err)
	}

	return string(decoded), nil
}

// isFeaturedImage reports whether a filename matches the featured-image
// naming convention
func isFeaturedImage(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasPrefix(lower, "featured.") {
		return false
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, "."+ext) {
			return true
		}
	}
	return false
}

// rawSource confirms known publication directories via direct raw-content
// fetches. This is the degraded path used when the listing API is
// unavailable; it cannot discover directories it has not been told about.
type rawSource struct {
	session *Session
	baseURL string
}

func (s *rawSource) Name() string { return "raw content fallback" }

func (s *rawSource) Discover(ctx context.Context, member Member, path string) ([]RemoteDocument, error) {
	names := member.FallbackDirectories
	if len(names) == 0 {
		names = fallbackDirectories
	}

	repo := memberRepo(member)

	var docs []RemoteDocument
	for _, dirName := range names {
		indexURL := fmt.Sprintf("%s/%s/%s/main/%s/%s/%s", s.baseURL, member.Username, repo, path, dirName, primaryDocument)
		debugLog("Trying publication URL: %s", indexURL)

		body, err := s.session.Get(ctx, indexURL)
		if err != nil {
			debugLog("Could not fetch %s/%s via raw content: %v", dirName, primaryDocument, err)
			continue
		}

		doc := RemoteDocument{
			DirectoryName: dirName,
			Content:       string(body),
			SourceURL:     fmt.Sprintf("https://github.com/%s/%s/blob/main/%s/%s/%s", member.Username, repo, path, dirName, primaryDocument),
			RemotePath:    fmt.Sprintf("%s/%s/%s", path, dirName, primaryDocument),
		}

		// Probe for a single featured image, first matching extension wins
		for _, ext := range imageExtensions {
			imageName := "featured." + ext
			imageURL := fmt.Sprintf("%s/%s/%s/main/%s/%s/%s", s.baseURL, member.Username, repo, path, dirName, imageName)
			if _, err := s.session.Get(ctx, imageURL); err != nil {
				continue
			}
			debugLog("Found image file: %s", imageName)
			doc.Images = append(doc.Images, ImageAsset{
				Name:        imageName,
				DownloadURL: imageURL,
				RemotePath:  fmt.Sprintf("%s/%s/%s", path, dirName, imageName),
			})
			break
		}

		docs = append(docs, doc)
		log.Printf("Successfully fetched publication %s via raw content", dirName)
	}

	return docs, nil
}
