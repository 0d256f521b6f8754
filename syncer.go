package main

import (
	"context"
	"fmt"
	"log"
	"os"
)

const defaultPublicationsRoot = "publications"

// Syncer orchestrates a sync run across all configured members
type Syncer struct {
	config  *Config
	fetcher *Fetcher
	rec     *Reconciler
	dryRun  bool
}

// NewSyncer creates a syncer writing under the given publications root
func NewSyncer(config *Config, session *Session, root string, dryRun bool) *Syncer {
	return &Syncer{
		config:  config,
		fetcher: NewFetcher(session),
		rec:     NewReconciler(session, root, dryRun),
		dryRun:  dryRun,
	}
}

// Run syncs publications for all active members, or a single member when
// username is non-empty. Failures are isolated per member and per document;
// only an unknown --member selection is returned as an error.
func (s *Syncer) Run(ctx context.Context, username string) error {
	members := s.config.Members
	if username != "" {
		members = nil
		for _, member := range s.config.Members {
			if member.Username == username {
				members = append(members, member)
			}
		}
		if len(members) == 0 {
			return fmt.Errorf("member %s not found in configuration", username)
		}
	}

	var active []Member
	for _, member := range members {
		if member.IsActive() {
			active = append(active, member)
		}
	}

	log.Printf("Syncing publications for %d active members", len(active))

	if !s.dryRun {
		if err := os.MkdirAll(s.rec.root, 0755); err != nil {
			return fmt.Errorf("creating publications directory: %w", err)
		}
	}

	for _, member := range active {
		summary := s.syncMember(ctx, member)
		log.Printf("Sync completed for %s: %d created, %d updated, %d skipped",
			summary.Username, summary.Created, summary.Updated, summary.Skipped)
	}

	return nil
}

// syncMember fetches, parses, and reconciles one member's publications.
// Document-level failures are logged and the loop continues.
func (s *Syncer) syncMember(ctx context.Context, member Member) MemberSummary {
	summary := MemberSummary{Username: member.Username}

	docs := s.fetcher.FetchPublications(ctx, member)
	log.Printf("Found %d publications for %s", len(docs), member.Username)
	if len(docs) == 0 {
		return summary
	}

	if limit := s.config.Sync.MaxPostsPerMember; len(docs) > limit {
		log.Printf("Limiting to %d most recent publications for %s", limit, member.Username)
		docs = docs[:limit]
	}

	for _, doc := range docs {
		pub, err := ParsePublication(doc, member)
		if err != nil {
			log.Printf("Warning: skipping publication %s for %s: %v", doc.DirectoryName, member.Username, err)
			continue
		}

		action, err := s.rec.Reconcile(ctx, pub, doc, member, s.config.Sync)
		if err != nil {
			log.Printf("Error processing publication %s: %v", doc.DirectoryName, err)
			continue
		}

		switch action {
		case ActionCreate:
			summary.Created++
		case ActionUpdate:
			summary.Updated++
		case ActionSkip:
			summary.Skipped++
		}
	}

	return summary
}
