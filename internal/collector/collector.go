// Package collector orchestrates one collection run: fan out to the
// upstream sources, persist raw snapshots, merge by canonical
// identity, upsert the canonical catalog, and enqueue enrichment work
// for hub-origin records.
//
// A run is stateless; the idempotent catalog upsert is the only
// cross-run memory. Upstream failures are logged and degrade to
// missing data from that source. Only fatal configuration aborts a
// run, and that happens before the collector is built.
package collector

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/modelscout/modelscout/internal/sources"
	"github.com/modelscout/modelscout/internal/sources/hub"
	"github.com/modelscout/modelscout/internal/store"
	"github.com/modelscout/modelscout/pkg/catalog"
	"github.com/modelscout/modelscout/pkg/logging"
	"github.com/modelscout/modelscout/pkg/merge"
)

// maxConcurrentOrgs bounds the hub fan-out so a long organization
// list does not open an unbounded number of upstream connections.
const maxConcurrentOrgs = 4

// Summary reports the outcome of one collection run.
type Summary struct {
	Organizations   int
	FetchedBySource map[catalog.Source]int
	Merged          int
	Upserted        int
	TasksEnqueued   int
	SkippedListings int
	Duration        time.Duration
}

// Collector runs the collection pipeline.
type Collector struct {
	hub      *hub.Client
	orgs     []string
	adapters []sources.Adapter
	store    *store.Store
	merger   *merge.Merger
	now      func() time.Time
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// New creates a collector. The hub client fans out per organization;
// the remaining adapters (router, and library for the all preset) run
// once each.
func New(st *store.Store, hubClient *hub.Client, orgs []string, adapters []sources.Adapter, opts ...Option) *Collector {
	c := &Collector{
		hub:      hubClient,
		orgs:     orgs,
		adapters: adapters,
		store:    st,
		merger:   merge.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes one collection run and returns its summary.
func (c *Collector) Run(ctx context.Context) (*Summary, error) {
	start := c.now()
	summary := &Summary{
		Organizations:   len(c.orgs),
		FetchedBySource: make(map[catalog.Source]int),
	}

	listings := c.fetchAll(ctx)
	for _, l := range listings {
		summary.FetchedBySource[l.Source]++
	}

	// Raw snapshots first: even if merge or upsert misbehaves, the
	// per-source records are preserved for audit and enrichment.
	for i := range listings {
		if err := c.store.SaveListing(ctx, &listings[i]); err != nil {
			logging.Warn().
				Err(err).
				Str("canonical_id", listings[i].CanonicalID).
				Msg("Skipping raw listing that failed to persist")
			summary.SkippedListings++
		}
	}

	records := c.merger.Merge(listings)
	summary.Merged = len(records)

	upserted, err := c.store.UpsertCatalog(ctx, records)
	if err != nil {
		return summary, err
	}
	summary.Upserted = upserted

	summary.TasksEnqueued = c.enqueueEnrichment(ctx, records)
	summary.Duration = c.now().Sub(start)

	logging.Info().
		Int("organizations", summary.Organizations).
		Int("merged", summary.Merged).
		Int("upserted", summary.Upserted).
		Int("tasks", summary.TasksEnqueued).
		Dur("duration", summary.Duration).
		Msg("Collection run complete")

	return summary, nil
}

// fetchAll fans out to all sources. Hub organizations fetch
// concurrently with bounded parallelism; the router and library
// adapters run alongside them. Per-source failures are logged and
// yield no listings from that source.
func (c *Collector) fetchAll(ctx context.Context) []catalog.Listing {
	var (
		mu  sync.Mutex
		all []catalog.Listing
	)
	collect := func(batch []catalog.Listing) {
		mu.Lock()
		all = append(all, batch...)
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOrgs + len(c.adapters))

	if c.hub != nil {
		orgGroup, orgCtx := errgroup.WithContext(ctx)
		orgGroup.SetLimit(maxConcurrentOrgs)
		g.Go(func() error {
			for _, org := range c.orgs {
				org := org
				orgGroup.Go(func() error {
					batch, err := c.hub.Organization(orgCtx, org)
					if err != nil {
						logging.Error().Err(err).Str("organization", org).Msg("Hub fetch failed")
						return nil
					}
					collect(batch)
					return nil
				})
			}
			return orgGroup.Wait()
		})
	}

	for _, adapter := range c.adapters {
		adapter := adapter
		g.Go(func() error {
			batch, err := adapter.Fetch(ctx)
			if err != nil {
				logging.Error().Err(err).Stringer("source", adapter.ID()).Msg("Source fetch failed")
				return nil
			}
			collect(batch)
			return nil
		})
	}

	_ = g.Wait()
	return all
}

// enqueueEnrichment queues one fetch_readme task per hub-origin
// record. Enqueue failures are logged, never raised: the queue's own
// uniqueness contract and consumer dedup own correctness here.
func (c *Collector) enqueueEnrichment(ctx context.Context, records []catalog.Record) int {
	queued := 0
	now := c.now().UTC()
	for i := range records {
		rec := &records[i]
		if !rec.Available(catalog.SourceHub) {
			continue
		}
		task := catalog.NewReadmeTask(rec, now)
		if err := c.store.EnqueueTask(ctx, &task); err != nil {
			logging.Warn().
				Err(err).
				Str("canonical_id", rec.CanonicalID).
				Msg("Failed to enqueue enrichment task")
			continue
		}
		queued++
	}
	return queued
}
