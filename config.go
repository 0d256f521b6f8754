package main

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// SyncConfig holds the sync_config block from members.yml
type SyncConfig struct {
	MaxPostsPerMember int               `yaml:"max_posts_per_member"`
	AddAttribution    *bool             `yaml:"add_attribution"`
	CategoryMapping   map[string]string `yaml:"category_mapping"`
	TypeMapping       map[string]string `yaml:"type_mapping"`
}

// Config represents the members.yml configuration file
type Config struct {
	Members []Member   `yaml:"members"`
	Sync    SyncConfig `yaml:"sync_config"`
}

const defaultMaxPostsPerMember = 50

func defaultTypeMapping() map[string]string {
	return map[string]string{
		"paper":       "papers",
		"publication": "papers",
		"report":      "reports",
		"post":        "posts",
		"blog":        "posts",
	}
}

// AttributionEnabled reports whether the attribution trailer should be
// appended to synced publications (default true)
func (s SyncConfig) AttributionEnabled() bool {
	return s.AddAttribution == nil || *s.AddAttribution
}

// LoadConfig loads and validates the members configuration file. A missing or
// malformed file is a fatal condition for the run; callers should abort.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file %s: %w", configPath, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration file %s: %w", configPath, err)
	}

	config.applyDefaults()

	log.Printf("Loaded configuration with %d members", len(config.Members))
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Sync.MaxPostsPerMember <= 0 {
		c.Sync.MaxPostsPerMember = defaultMaxPostsPerMember
	}
	if len(c.Sync.TypeMapping) == 0 {
		c.Sync.TypeMapping = defaultTypeMapping()
	}
}
