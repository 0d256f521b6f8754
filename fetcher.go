package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
)

const (
	primaryDocument         = "index.qmd"
	reservedPrefix          = "_"
	defaultPublicationsPath = "publications"
)

// DiscoverySource discovers candidate publication directories on a member's
// site via one remote access mode.
type DiscoverySource interface {
	Name() string
	Discover(ctx context.Context, member Member, path string) ([]RemoteDocument, error)
}

// Fetcher retrieves publications for a member, preferring the listing API and
// degrading to direct raw-content fetches when the listing is unavailable.
type Fetcher struct {
	primary  DiscoverySource
	fallback DiscoverySource
}

// NewFetcher creates a fetcher with the default source pair
func NewFetcher(session *Session) *Fetcher {
	return &Fetcher{
		primary:  &contentsSource{session: session, baseURL: apiBaseURL},
		fallback: &rawSource{session: session, baseURL: rawBaseURL},
	}
}

// FetchPublications returns the member's discoverable publications. Remote
// failures are handled here: a missing publications directory yields an empty
// result, and listing-access failures trigger the fallback source. Errors
// never propagate to the caller.
func (f *Fetcher) FetchPublications(ctx context.Context, member Member) []RemoteDocument {
	path := publicationsPath(member)

	log.Printf("Fetching publications for %s", member.Username)

	docs, err := f.primary.Discover(ctx, member, path)
	if err == nil {
		return docs
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusNotFound:
			// Normal for members who have no publications yet
			log.Printf("Publications directory not found for %s - this is normal if they don't have publications yet", member.Username)
			return nil
		case http.StatusForbidden:
			log.Printf("Warning: access denied listing publications for %s: %v", member.Username, err)
		default:
			log.Printf("Warning: %s returned an error for %s: %v", f.primary.Name(), member.Username, err)
			return nil
		}
	} else {
		log.Printf("Warning: could not fetch publications for %s: %v", member.Username, err)
	}

	log.Printf("Falling back to %s for %s", f.fallback.Name(), member.Username)
	docs, err = f.fallback.Discover(ctx, member, path)
	if err != nil {
		log.Printf("Warning: %s failed for %s: %v", f.fallback.Name(), member.Username, err)
		return nil
	}
	return docs
}

// publicationsPath returns the member's remote publications path with
// surrounding slashes trimmed, defaulting to the shared convention
func publicationsPath(member Member) string {
	path := strings.Trim(member.PublicationsPath, "/")
	if path == "" {
		return defaultPublicationsPath
	}
	return path
}
