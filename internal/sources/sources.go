// Package sources defines the adapter interface implemented by each
// upstream source. An adapter maps one upstream shape into the common
// listing representation and normalizes identities before returning,
// so downstream merge logic never branches on where a listing came
// from.
package sources

import (
	"context"

	"github.com/modelscout/modelscout/pkg/catalog"
)

// Adapter fetches listings from one upstream source.
type Adapter interface {
	// ID returns the source this adapter covers.
	ID() catalog.Source

	// Fetch retrieves and normalizes all listings from this source.
	// Malformed upstream payloads degrade to an empty slice; only
	// transport-level failures surface as errors.
	Fetch(ctx context.Context) ([]catalog.Listing, error)
}
