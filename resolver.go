package main

import "strings"

const (
	fallbackSubdir  = "posts"
	defaultPostType = "post"
)

// ResolveDestination returns the destination subdirectory for a publication,
// applying the layered precedence policy: member override, then category
// mapping, then type mapping, then the backward-compatible default.
func ResolveDestination(pub *ParsedPublication, member Member, sync SyncConfig) string {
	if member.DestinationPath != "" {
		return strings.Trim(member.DestinationPath, "/")
	}

	for _, category := range pub.Categories {
		if subdir, ok := sync.CategoryMapping[category]; ok {
			return strings.Trim(subdir, "/")
		}
	}

	postType := defaultPostType
	if value, ok := pub.Metadata["type"].(string); ok && value != "" {
		postType = value
	}
	if subdir, ok := sync.TypeMapping[postType]; ok {
		return subdir
	}

	return fallbackSubdir
}
