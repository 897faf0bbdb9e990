package catalog

// Source identifies the upstream a listing was fetched from.
type Source string

// Known sources, in merge priority order.
const (
	// SourceHub is the model hub API, queried per organization.
	SourceHub Source = "hub"
	// SourceRouter is the API-router catalog.
	SourceRouter Source = "router"
	// SourceLibrary is the scraped library page.
	SourceLibrary Source = "library"
)

// Sources returns all known sources in priority declaration order.
func Sources() []Source {
	return []Source{SourceHub, SourceRouter, SourceLibrary}
}

// IsValid reports whether s names a known source.
func (s Source) IsValid() bool {
	switch s {
	case SourceHub, SourceRouter, SourceLibrary:
		return true
	}
	return false
}

// String returns the source identifier.
func (s Source) String() string {
	return string(s)
}
