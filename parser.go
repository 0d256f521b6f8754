package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	metadataDelimiter = "---"
	defaultCategory   = "research"
)

// documentMetadata is the typed view of a publication's metadata block. The
// inline map captures every field not named here so unknown fields pass
// through to the rendered output.
type documentMetadata struct {
	Title      string         `yaml:"title"`
	Author     any            `yaml:"author"`
	Categories []string       `yaml:"categories"`
	Extra      map[string]any `yaml:",inline"`
}

// ParsePublication turns a remote document into a ParsedPublication. A
// document without a metadata block becomes an untitled body with derived
// defaults; a structurally present but malformed block is an error and the
// caller should drop the document.
func ParsePublication(doc RemoteDocument, member Member) (*ParsedPublication, error) {
	text := doc.Content
	filename := primaryDocument

	// A metadata block needs the opening delimiter at the very start and a
	// closing delimiter somewhere after it.
	if !strings.HasPrefix(text, metadataDelimiter) || strings.Count(text, metadataDelimiter) < 2 {
		return plainPublication(text, filename, member), nil
	}

	var meta documentMetadata
	body, err := frontmatter.Parse(strings.NewReader(text), &meta)
	if err != nil {
		return nil, fmt.Errorf("parsing metadata block in %s: %w", filename, err)
	}

	title := meta.Title
	if title == "" {
		title = deriveTitle(filename)
	}

	metadata := meta.Extra
	if metadata == nil {
		metadata = map[string]any{}
	}

	return &ParsedPublication{
		Title:      title,
		Author:     normalizeAuthors(meta.Author, member.Name),
		Categories: meta.Categories,
		Body:       strings.TrimSpace(string(body)),
		Metadata:   metadata,
		Filename:   filename,
	}, nil
}

// plainPublication wraps metadata-less text as an untitled publication with
// derived defaults
func plainPublication(text, filename string, member Member) *ParsedPublication {
	return &ParsedPublication{
		Title:      deriveTitle(filename),
		Author:     []string{member.Name},
		Categories: []string{defaultCategory},
		Body:       strings.TrimSpace(text),
		Metadata:   map[string]any{},
		Filename:   filename,
	}
}

// deriveTitle builds a readable title from a filename: extension stripped,
// separators replaced with spaces, title-cased.
func deriveTitle(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(name)
}

// normalizeAuthors coerces the author field, which may be a bare string or a
// list, into a non-empty ordered list of names.
func normalizeAuthors(value any, fallback string) []string {
	switch v := value.(type) {
	case nil:
		return []string{fallback}
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{fallback}
		}
		return []string{v}
	case []any:
		authors := make([]string, 0, len(v))
		for _, item := range v {
			name := strings.TrimSpace(fmt.Sprint(item))
			if name != "" {
				authors = append(authors, name)
			}
		}
		if len(authors) == 0 {
			return []string{fallback}
		}
		return authors
	case []string:
		if len(v) == 0 {
			return []string{fallback}
		}
		return v
	default:
		return []string{fmt.Sprint(v)}
	}
}
