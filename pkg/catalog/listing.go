// Package catalog defines the domain types shared by the source
// adapters, the merge engine, and the datastore: the per-source
// Listing, the merged canonical Record, and the enrichment task queue
// entries derived from records.
package catalog

import "time"

// DefaultCategory is assigned when no source reports a category.
const DefaultCategory = "LLM"

// Listing is one model entry as reported by a single source,
// normalized into the common shape. CanonicalID is set by the
// identity package before a listing leaves its adapter.
type Listing struct {
	Name       string `json:"name"`
	ModelID    string `json:"model_id"`
	HubID      string `json:"hub_id,omitempty"`
	RouterID   string `json:"router_id,omitempty"`
	LibraryURL string `json:"library_url,omitempty"`
	Publisher  string `json:"publisher,omitempty"`
	Category   string `json:"category,omitempty"`

	Tags  []string `json:"tags,omitempty"`
	Tasks []string `json:"tasks,omitempty"`

	Downloads int64 `json:"downloads,omitempty"`
	Likes     int64 `json:"likes,omitempty"`

	ShortDescription string `json:"short_description,omitempty"`
	Description      string `json:"description,omitempty"`

	HubURL    string `json:"hub_url,omitempty"`
	RouterURL string `json:"router_url,omitempty"`

	Source  Source   `json:"source"`
	Pricing *Pricing `json:"pricing,omitempty"`

	Parameters    int64    `json:"parameters,omitempty"`
	ContextWindow int64    `json:"context_window,omitempty"`
	Quantizations []string `json:"quantizations,omitempty"`

	HardwareRequirements string `json:"hardware_requirements,omitempty"`

	CreatedAt    *time.Time `json:"created_at,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty"`

	CanonicalID string `json:"canonical_id"`
}

// SourceURL returns the listing's page on its own source, falling
// back across sources when the origin did not report one.
func (l *Listing) SourceURL() string {
	switch l.Source {
	case SourceHub:
		if l.HubURL != "" {
			return l.HubURL
		}
	case SourceRouter:
		if l.RouterURL != "" {
			return l.RouterURL
		}
	case SourceLibrary:
		if l.LibraryURL != "" {
			return l.LibraryURL
		}
	}
	for _, u := range []string{l.HubURL, l.RouterURL, l.LibraryURL} {
		if u != "" {
			return u
		}
	}
	return ""
}
