// Package library extracts model names from the scraped library
// listing page. The page carries no parsing contract, so extraction
// is best-effort: several independent patterns feed a deduplicating
// set and failures degrade data quality instead of failing the run.
// The scraping strategy is isolated behind the Adapter so it can be
// swapped without touching merge or persistence.
package library

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/modelscout/modelscout/internal/fetch"
	"github.com/modelscout/modelscout/pkg/catalog"
	"github.com/modelscout/modelscout/pkg/errors"
	"github.com/modelscout/modelscout/pkg/identity"
	"github.com/modelscout/modelscout/pkg/logging"
)

// maxNameLength guards against over-long false positives such as
// stray URLs matched inside markup.
const maxNameLength = 60

// Independent extraction patterns. Each contributes candidates; the
// slug pattern validates them all.
var (
	hrefPattern     = regexp.MustCompile(`href="/library/([a-z0-9][a-z0-9._-]*)"`)
	jsonNamePattern = regexp.MustCompile(`"name"\s*:\s*"([a-z0-9][a-z0-9._-]*)"`)
	dataAttrPattern = regexp.MustCompile(`data-model(?:-name)?="([a-z0-9][a-z0-9._-]*)"`)

	slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)
)

// Config configures the library adapter.
type Config struct {
	// PageURL is the full URL of the library listing page.
	PageURL string
}

// Adapter scrapes the library listing page.
type Adapter struct {
	fetcher *fetch.Client
	cfg     Config
}

// New creates a library adapter.
func New(fetcher *fetch.Client, cfg Config) *Adapter {
	return &Adapter{fetcher: fetcher, cfg: cfg}
}

// ID returns the library source identifier.
func (a *Adapter) ID() catalog.Source {
	return catalog.SourceLibrary
}

// Fetch downloads the listing page and turns each distinct extracted
// name into one minimal listing. The page offers no rich metadata.
func (a *Adapter) Fetch(ctx context.Context) ([]catalog.Listing, error) {
	data, err := a.fetcher.Get(ctx, a.cfg.PageURL)
	if err != nil {
		if errors.IsNotFound(err) {
			logging.Info().Str("url", a.cfg.PageURL).Msg("Library page not found")
			return nil, nil
		}
		return nil, err
	}

	names := ExtractNames(string(data))
	listings := make([]catalog.Listing, 0, len(names))
	base := baseURL(a.cfg.PageURL)
	for _, name := range names {
		l := catalog.Listing{
			Name:       name,
			ModelID:    name,
			Category:   catalog.DefaultCategory,
			LibraryURL: base + "/library/" + name,
			Source:     catalog.SourceLibrary,
		}
		identity.Normalize(&l)
		listings = append(listings, l)
	}

	logging.Debug().Int("listings", len(listings)).Msg("Scraped library page")
	return listings, nil
}

// ExtractNames runs every pattern over the page and returns the
// validated, deduplicated names in sorted order.
func ExtractNames(page string) []string {
	seen := make(map[string]bool)
	for _, pattern := range []*regexp.Regexp{hrefPattern, jsonNamePattern, dataAttrPattern} {
		for _, match := range pattern.FindAllStringSubmatch(page, -1) {
			name := match[1]
			if !validName(name) {
				continue
			}
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validName rejects false positives: names that fail the slug shape
// or exceed the length guard.
func validName(name string) bool {
	return len(name) > 0 && len(name) <= maxNameLength && slugPattern.MatchString(name)
}

// baseURL strips the path from the configured page URL.
func baseURL(pageURL string) string {
	if i := strings.Index(pageURL, "://"); i >= 0 {
		if j := strings.Index(pageURL[i+3:], "/"); j >= 0 {
			return pageURL[:i+3+j]
		}
	}
	return strings.TrimRight(pageURL, "/")
}
