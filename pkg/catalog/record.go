package catalog

import "time"

// Record is one canonical catalog entry: the highest-priority listing
// of an identity group, enriched field by field from the rest.
type Record struct {
	Listing

	// AvailableOn lists the sources that reported this model, in
	// priority declaration order.
	AvailableOn []Source `json:"available_on"`

	// SourcesMerged counts the listings folded into this record.
	SourcesMerged int `json:"sources_merged"`

	// IsOpenSource is set when the model has downloadable weights
	// (hub or library presence); IsAPIOnly when it is reachable only
	// through the router.
	IsOpenSource bool `json:"is_open_source"`
	IsAPIOnly    bool `json:"is_api_only"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Available reports whether the record was seen on the given source.
func (r *Record) Available(s Source) bool {
	for _, have := range r.AvailableOn {
		if have == s {
			return true
		}
	}
	return false
}
