package merge

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelscout/modelscout/pkg/catalog"
)

func testClock() func() time.Time {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return fixed }
}

func TestPriorityRank(t *testing.T) {
	p := DefaultPriority()
	assert.Less(t, p.Rank(catalog.SourceHub), p.Rank(catalog.SourceRouter))
	assert.Less(t, p.Rank(catalog.SourceRouter), p.Rank(catalog.SourceLibrary))
	assert.Equal(t, len(p), p.Rank(catalog.Source("bogus")))
}

func TestPrimaryPrefersHub(t *testing.T) {
	group := []catalog.Listing{
		{Source: catalog.SourceLibrary, Name: "lib"},
		{Source: catalog.SourceHub, Name: "hub"},
		{Source: catalog.SourceRouter, Name: "router"},
	}
	assert.Equal(t, "hub", DefaultPriority().Primary(group).Name)
}

func TestPrimaryFirstAvailableFallback(t *testing.T) {
	group := []catalog.Listing{
		{Source: catalog.Source("other"), Name: "first"},
		{Source: catalog.Source("another"), Name: "second"},
	}
	assert.Equal(t, "first", DefaultPriority().Primary(group).Name)
}

func TestMergeUnionLaw(t *testing.T) {
	m := New(WithClock(testClock()))
	records := m.Merge([]catalog.Listing{
		{CanonicalID: "org:model-a", Source: catalog.SourceHub, Tags: []string{"x"}},
		{CanonicalID: "org:model-a", Source: catalog.SourceRouter, Tags: []string{"y"}},
	})

	require.Len(t, records, 1)
	assert.ElementsMatch(t, []string{"x", "y"}, records[0].Tags)
}

func TestMergeUnionDeduplicates(t *testing.T) {
	m := New(WithClock(testClock()))
	records := m.Merge([]catalog.Listing{
		{CanonicalID: "org:model-a", Source: catalog.SourceHub, Tags: []string{"x", "shared"}},
		{CanonicalID: "org:model-a", Source: catalog.SourceRouter, Tags: []string{"shared", "y"}},
	})

	require.Len(t, records, 1)
	assert.Len(t, records[0].Tags, 3)
}

func TestMergeMaxLaw(t *testing.T) {
	m := New(WithClock(testClock()))
	records := m.Merge([]catalog.Listing{
		{CanonicalID: "org:model-a", Source: catalog.SourceHub, Downloads: 100, Likes: 7, ContextWindow: 8192},
		{CanonicalID: "org:model-a", Source: catalog.SourceRouter, Downloads: 250, Likes: 3, ContextWindow: 131072},
	})

	require.Len(t, records, 1)
	assert.Equal(t, int64(250), records[0].Downloads)
	assert.Equal(t, int64(7), records[0].Likes)
	assert.Equal(t, int64(131072), records[0].ContextWindow)
}

func TestMergeAvailableOnCompleteness(t *testing.T) {
	m := New(WithClock(testClock()))
	records := m.Merge([]catalog.Listing{
		{CanonicalID: "org:model-a", Source: catalog.SourceHub},
		{CanonicalID: "org:model-a", Source: catalog.SourceRouter},
		{CanonicalID: "org:model-a", Source: catalog.SourceLibrary},
	})

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, 3, rec.SourcesMerged)
	assert.ElementsMatch(t,
		[]catalog.Source{catalog.SourceHub, catalog.SourceRouter, catalog.SourceLibrary},
		rec.AvailableOn)
}

func TestMergeCaseInsensitiveGrouping(t *testing.T) {
	m := New(WithClock(testClock()))
	records := m.Merge([]catalog.Listing{
		{CanonicalID: "Org:Model-A", Source: catalog.SourceHub},
		{CanonicalID: "org:model-a", Source: catalog.SourceRouter},
	})

	require.Len(t, records, 1)
	assert.Equal(t, "org:model-a", records[0].CanonicalID)
	assert.Equal(t, 2, records[0].SourcesMerged)
}

func TestMergeDistinctIdentitiesStaySeparate(t *testing.T) {
	m := New(WithClock(testClock()))
	records := m.Merge([]catalog.Listing{
		{CanonicalID: "hub:org-model-a", Source: catalog.SourceHub},
		{CanonicalID: "router:org-model-a", Source: catalog.SourceRouter},
	})

	assert.Len(t, records, 2)
}

func TestMergePublisherNameCollision(t *testing.T) {
	// Neither listing carries a source-specific id, so both fall back
	// to the publisher:name identity and merge into one record.
	m := New(WithClock(testClock()))
	records := m.Merge([]catalog.Listing{
		{
			CanonicalID: "org:model-a",
			Source:      catalog.SourceHub,
			Publisher:   "org",
			Name:        "model-a",
			Downloads:   10,
		},
		{
			CanonicalID: "org:model-a",
			Source:      catalog.SourceRouter,
			Publisher:   "org",
			Name:        "model-a",
			Downloads:   20,
			Pricing:     &catalog.Pricing{Prompt: 1, Completion: 2},
		},
	})

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, int64(20), rec.Downloads)
	require.NotNil(t, rec.Pricing)
	assert.Equal(t, float64(1), rec.Pricing.Prompt)
	assert.Equal(t, float64(2), rec.Pricing.Completion)
	assert.Equal(t, 2, rec.SourcesMerged)
}

func TestMergeSameSourceSameModelIDStillFolds(t *testing.T) {
	// Two hub listings sharing a model id must both contribute; only
	// the chosen primary itself is exempt from folding.
	m := New(WithClock(testClock()))
	records := m.Merge([]catalog.Listing{
		{
			CanonicalID: "hub:org-model-a",
			Source:      catalog.SourceHub,
			ModelID:     "org/model-a",
			Downloads:   10,
			Tags:        []string{"x"},
		},
		{
			CanonicalID: "hub:org-model-a",
			Source:      catalog.SourceHub,
			ModelID:     "org/model-a",
			Downloads:   40,
			Tags:        []string{"y"},
		},
	})

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, int64(40), rec.Downloads)
	assert.ElementsMatch(t, []string{"x", "y"}, rec.Tags)
	assert.Equal(t, 2, rec.SourcesMerged)
}

func TestMergeURLFirstNonEmptyWins(t *testing.T) {
	m := New(WithClock(testClock()))
	records := m.Merge([]catalog.Listing{
		{
			CanonicalID: "org:model-a",
			Source:      catalog.SourceHub,
			HubURL:      "https://hub.example.com/org/model-a",
		},
		{
			CanonicalID: "org:model-a",
			Source:      catalog.SourceRouter,
			RouterURL:   "https://router.example.com/org/model-a",
			HubURL:      "https://hub.example.com/stale",
		},
	})

	require.Len(t, records, 1)
	assert.Equal(t, "https://hub.example.com/org/model-a", records[0].HubURL)
	assert.Equal(t, "https://router.example.com/org/model-a", records[0].RouterURL)
}

func TestMergeLongerDescriptionWins(t *testing.T) {
	m := New(WithClock(testClock()))
	records := m.Merge([]catalog.Listing{
		{CanonicalID: "org:model-a", Source: catalog.SourceHub, ShortDescription: "short"},
		{CanonicalID: "org:model-a", Source: catalog.SourceRouter, ShortDescription: "a longer description"},
	})

	require.Len(t, records, 1)
	assert.Equal(t, "a longer description", records[0].ShortDescription)
}

func TestMergeModelIDFallback(t *testing.T) {
	tests := []struct {
		name     string
		listings []catalog.Listing
		want     string
	}{
		{
			name: "hub id first",
			listings: []catalog.Listing{
				{CanonicalID: "k", Source: catalog.SourceHub, HubID: "org/model-a"},
				{CanonicalID: "k", Source: catalog.SourceRouter, RouterID: "org/model-a-r"},
			},
			want: "org/model-a",
		},
		{
			name: "router id second",
			listings: []catalog.Listing{
				{CanonicalID: "k", Source: catalog.SourceRouter, RouterID: "org/model-a"},
			},
			want: "org/model-a",
		},
		{
			name: "synthesized from publisher and name",
			listings: []catalog.Listing{
				{CanonicalID: "k", Source: catalog.SourceLibrary, Publisher: "org", Name: "model-a"},
			},
			want: "org/model-a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := New(WithClock(testClock())).Merge(tt.listings)
			require.Len(t, records, 1)
			assert.Equal(t, tt.want, records[0].ModelID)
		})
	}
}

func TestMergeDeterministicOutput(t *testing.T) {
	listings := []catalog.Listing{
		{CanonicalID: "b:two", Source: catalog.SourceRouter},
		{CanonicalID: "a:one", Source: catalog.SourceHub},
		{CanonicalID: "b:two", Source: catalog.SourceHub},
	}

	m := New(WithClock(testClock()))
	first := m.Merge(listings)
	second := m.Merge(listings)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Merge output not deterministic (-first +second):\n%s", diff)
	}
	require.Len(t, first, 2)
	assert.Equal(t, "a:one", first[0].CanonicalID)
	assert.Equal(t, "b:two", first[1].CanonicalID)
}

func TestMergeDefaultsCategory(t *testing.T) {
	m := New(WithClock(testClock()))
	records := m.Merge([]catalog.Listing{
		{CanonicalID: "org:model-a", Source: catalog.SourceLibrary, Name: "model-a"},
	})

	require.Len(t, records, 1)
	assert.Equal(t, catalog.DefaultCategory, records[0].Category)
}
