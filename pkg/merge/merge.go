// Package merge groups listings by canonical identity and combines
// same-identity listings from different sources into one canonical
// catalog record.
//
// Conflict resolution is deterministic and best-effort: the rules are
// fixed per field and never record why a value was chosen. The
// "longer string wins" and "max numeric wins" rules are heuristics
// carried from observed source behavior, not verified semantics.
package merge

import (
	"sort"
	"strings"
	"time"

	"github.com/modelscout/modelscout/pkg/catalog"
)

// Merger combines listings into canonical records.
type Merger struct {
	priority Priority
	now      func() time.Time
}

// Option configures a Merger.
type Option func(*Merger)

// WithPriority overrides the source priority used to pick primaries.
func WithPriority(p Priority) Option {
	return func(m *Merger) { m.priority = p }
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Merger) { m.now = now }
}

// New creates a Merger with the default source priority.
func New(opts ...Option) *Merger {
	m := &Merger{
		priority: DefaultPriority(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge groups the run's listings by canonical id (case-insensitive)
// and folds each group into one record. Output order is deterministic
// by canonical id.
func (m *Merger) Merge(listings []catalog.Listing) []catalog.Record {
	groups := make(map[string][]catalog.Listing)
	var order []string
	for _, l := range listings {
		key := strings.ToLower(l.CanonicalID)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], l)
	}
	sort.Strings(order)

	records := make([]catalog.Record, 0, len(order))
	for _, key := range order {
		records = append(records, m.mergeGroup(key, groups[key]))
	}
	return records
}

// mergeGroup folds one identity group into a single record, starting
// from the highest-priority listing and applying per-field rules for
// the rest.
func (m *Merger) mergeGroup(key string, group []catalog.Listing) catalog.Record {
	primaryIdx := m.priority.PrimaryIndex(group)

	rec := catalog.Record{
		Listing:   group[primaryIdx],
		UpdatedAt: m.now().UTC(),
	}
	rec.CanonicalID = key
	if rec.Category == "" {
		rec.Category = catalog.DefaultCategory
	}

	for i, l := range group {
		if i == primaryIdx {
			continue
		}
		foldListing(&rec, l)
	}

	rec.AvailableOn = distinctSources(group)
	rec.SourcesMerged = len(group)
	rec.ModelID = fallbackModelID(&rec)
	rec.IsOpenSource = rec.Available(catalog.SourceHub) || rec.Available(catalog.SourceLibrary)
	rec.IsAPIOnly = !rec.IsOpenSource && rec.Available(catalog.SourceRouter)

	return rec
}

// foldListing merges one secondary listing into the record. The
// primary's URL values are never overwritten once set.
func foldListing(rec *catalog.Record, l catalog.Listing) {
	if rec.HubURL == "" {
		rec.HubURL = l.HubURL
	}
	if rec.RouterURL == "" {
		rec.RouterURL = l.RouterURL
	}
	if rec.LibraryURL == "" {
		rec.LibraryURL = l.LibraryURL
	}
	if rec.HubID == "" {
		rec.HubID = l.HubID
	}
	if rec.RouterID == "" {
		rec.RouterID = l.RouterID
	}
	if rec.Publisher == "" {
		rec.Publisher = l.Publisher
	}
	if rec.Name == "" {
		rec.Name = l.Name
	}

	rec.Downloads = max(rec.Downloads, l.Downloads)
	rec.Likes = max(rec.Likes, l.Likes)
	rec.Parameters = max(rec.Parameters, l.Parameters)
	rec.ContextWindow = max(rec.ContextWindow, l.ContextWindow)

	rec.Tags = unionStrings(rec.Tags, l.Tags)
	rec.Tasks = unionStrings(rec.Tasks, l.Tasks)
	rec.Quantizations = unionStrings(rec.Quantizations, l.Quantizations)

	if rec.Pricing == nil {
		rec.Pricing = l.Pricing
	}
	if rec.HardwareRequirements == "" {
		rec.HardwareRequirements = l.HardwareRequirements
	}

	rec.ShortDescription = longer(rec.ShortDescription, l.ShortDescription)
	rec.Description = longer(rec.Description, l.Description)

	if rec.CreatedAt == nil {
		rec.CreatedAt = l.CreatedAt
	}
	if rec.LastModified == nil || (l.LastModified != nil && l.LastModified.After(*rec.LastModified)) {
		rec.LastModified = l.LastModified
	}
}

// fallbackModelID resolves the record's model id: hub id, then router
// id, then a synthesized publisher/name string.
func fallbackModelID(rec *catalog.Record) string {
	if rec.HubID != "" {
		return rec.HubID
	}
	if rec.RouterID != "" {
		return rec.RouterID
	}
	if rec.ModelID != "" {
		return rec.ModelID
	}
	if rec.Publisher != "" && rec.Name != "" {
		return rec.Publisher + "/" + rec.Name
	}
	return rec.Name
}

// distinctSources returns the unique sources of a group in priority
// declaration order.
func distinctSources(group []catalog.Listing) []catalog.Source {
	seen := make(map[catalog.Source]bool, len(group))
	for _, l := range group {
		seen[l.Source] = true
	}
	var out []catalog.Source
	for _, s := range catalog.Sources() {
		if seen[s] {
			out = append(out, s)
		}
	}
	return out
}

// unionStrings merges two string sets preserving first-seen order.
func unionStrings(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// longer keeps the longer of two strings; ties keep the first.
func longer(a, b string) string {
	if len(b) > len(a) {
		return b
	}
	return a
}
