package main

// Member represents one configured publication source, loaded from members.yml
type Member struct {
	Username            string   `yaml:"username"`
	Name                string   `yaml:"name"`
	ProfileURL          string   `yaml:"profile_url"`
	PublicationsPath    string   `yaml:"publications_path"`
	DestinationPath     string   `yaml:"destination_path"`
	FallbackDirectories []string `yaml:"fallback_directories"`
	Active              *bool    `yaml:"active"`
}

// IsActive reports whether the member should be synced (default true)
func (m Member) IsActive() bool {
	return m.Active == nil || *m.Active
}

// ImageAsset is a binary file discovered alongside a publication
type ImageAsset struct {
	Name        string // remote filename, e.g. featured.png
	DownloadURL string // direct fetch URL for the bytes
	RemotePath  string // path within the remote repository
}

// RemoteDocument is a candidate publication discovered on a member's site
type RemoteDocument struct {
	DirectoryName string
	Content       string
	Images        []ImageAsset
	SourceURL     string // human-facing URL of the original document
	RemotePath    string // path of the primary document within the repository
}

// ParsedPublication is the structured form of a remote document
type ParsedPublication struct {
	Title      string
	Author     []string
	Categories []string
	Body       string
	Metadata   map[string]any // full original metadata block, for passthrough
	Filename   string
}

// SyncAction is the reconciliation decision for a single publication
type SyncAction string

const (
	ActionCreate SyncAction = "create"
	ActionUpdate SyncAction = "update"
	ActionSkip   SyncAction = "skip"
)

// AssetDownload pairs a local target path with the URL to fetch it from
type AssetDownload struct {
	LocalPath string
	URL       string
}

// RenderedOutput is the final text plus asset downloads for one publication
type RenderedOutput struct {
	Content string
	Assets  []AssetDownload
}

// MemberSummary tracks the outcome counts for one member's sync
type MemberSummary struct {
	Username string
	Created  int
	Updated  int
	Skipped  int
}
