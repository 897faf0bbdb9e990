// Package identity computes canonical model identities. The canonical
// id is the single deduplication key used to decide whether two
// listings from different sources describe the same real-world model.
//
// Derivation is priority ordered: source-specific identifiers are
// authoritative, publisher+name is a best-effort fallback when only
// display strings are available, and a random-suffixed placeholder
// guarantees uniqueness when no identifying signal exists at all, so
// those listings never merge with anything.
package identity

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/modelscout/modelscout/pkg/catalog"
)

// unknownSuffixLen is the length of the random suffix appended to
// placeholder identities.
const unknownSuffixLen = 7

// foldDiacritics decomposes to NFD, strips combining marks, and
// recomposes, so "Café" normalizes the same as "Cafe".
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeToken turns a free-form string into a canonical slug:
// lowercase, delimiters collapsed to single hyphens, anything outside
// [a-z0-9-] stripped, hyphen runs collapsed, leading and trailing
// hyphens removed. Deterministic and idempotent; empty input yields
// the empty string.
func NormalizeToken(s string) string {
	if s == "" {
		return ""
	}

	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == '.' || r == '_' || r == '/' || r == '\\' || r == '-' || unicode.IsSpace(r):
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
		// Any other rune is stripped.
	}

	return strings.Trim(b.String(), "-")
}

// CanonicalID derives the canonical identity for a listing. First
// match wins:
//
//  1. hub id            -> "hub:<id>"
//  2. router id         -> "router:<id>"
//  3. source URL path   -> "<source>:<path>"
//  4. publisher + name  -> "<publisher>:<name>"
//  5. name alone        -> "name:<name>"
//  6. nothing           -> "unknown:<random suffix>"
func CanonicalID(l *catalog.Listing) string {
	if id := NormalizeToken(l.HubID); id != "" {
		return "hub:" + id
	}
	if id := NormalizeToken(l.RouterID); id != "" {
		return "router:" + id
	}

	if prefix, slug := urlIdentity(l); slug != "" {
		return prefix + ":" + slug
	}

	publisher := NormalizeToken(l.Publisher)
	name := NormalizeToken(l.Name)
	if publisher != "" && name != "" {
		return publisher + ":" + name
	}
	if name != "" {
		return "name:" + name
	}

	return "unknown:" + randomSuffix()
}

// Normalize sets the canonical id on a listing in place and returns
// it. Adapters call this on every listing they produce.
func Normalize(l *catalog.Listing) *catalog.Listing {
	l.CanonicalID = CanonicalID(l)
	return l
}

// urlIdentity derives an identity from whichever source URL is
// present, prefixed by the inferred source.
func urlIdentity(l *catalog.Listing) (prefix, slug string) {
	switch {
	case l.HubURL != "":
		return "hub", urlSlug(l.HubURL)
	case l.RouterURL != "":
		return "router", urlSlug(l.RouterURL)
	case l.LibraryURL != "":
		return "library", urlSlug(l.LibraryURL)
	}
	return "", ""
}

// urlSlug extracts and normalizes the identifying path portion of a
// source URL. A leading "library" path segment is routing noise, not
// identity, and is dropped.
func urlSlug(rawURL string) string {
	path := rawURL
	if i := strings.Index(path, "://"); i >= 0 {
		path = path[i+3:]
		if j := strings.Index(path, "/"); j >= 0 {
			path = path[j+1:]
		} else {
			path = ""
		}
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	path = strings.TrimPrefix(path, "library/")
	return NormalizeToken(path)
}

// randomSuffix returns a short random token. Collisions are not a
// concern at this length and volume; what matters is that two
// unidentifiable listings never share a canonical id.
func randomSuffix() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:unknownSuffixLen]
}
