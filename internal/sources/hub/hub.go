// Package hub fetches model listings from the model hub API, queried
// one organization at a time.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/modelscout/modelscout/internal/fetch"
	"github.com/modelscout/modelscout/pkg/catalog"
	"github.com/modelscout/modelscout/pkg/errors"
	"github.com/modelscout/modelscout/pkg/identity"
	"github.com/modelscout/modelscout/pkg/logging"
)

// Pagination defaults.
const (
	DefaultPageSize     = 100
	DefaultMaxPages     = 10
	DefaultPageInterval = 500 * time.Millisecond
)

// Adapter variants and LoRA checkpoints are not first-class catalog
// entries; listings whose id contains these substrings are dropped.
var excludedIDSubstrings = []string{"lora", "adapter"}

// Config configures the hub client.
type Config struct {
	BaseURL      string
	APIKey       string
	PageSize     int
	MaxPages     int
	PageInterval time.Duration
}

// Client queries the hub API for one organization at a time.
type Client struct {
	fetcher *fetch.Client
	cfg     Config
	limiter *rate.Limiter
}

// New creates a hub client. An empty API key degrades to
// unauthenticated requests.
func New(fetcher *fetch.Client, cfg Config) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.PageInterval <= 0 {
		cfg.PageInterval = DefaultPageInterval
	}
	return &Client{
		fetcher: fetcher,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(cfg.PageInterval), 1),
	}
}

// ID returns the hub source identifier.
func (c *Client) ID() catalog.Source {
	return catalog.SourceHub
}

// hubModel is the upstream hub listing shape.
type hubModel struct {
	ID           string     `json:"id"`
	PipelineTag  string     `json:"pipeline_tag"`
	Tags         []string   `json:"tags"`
	Downloads    int64      `json:"downloads"`
	Likes        int64      `json:"likes"`
	CreatedAt    *time.Time `json:"createdAt"`
	LastModified *time.Time `json:"lastModified"`
	CardData     struct {
		ShortDescription string `json:"short_description"`
	} `json:"cardData"`
}

// Organization fetches all listings published by one organization.
// Some organization names are case-sensitive upstream, so the
// lowercase spelling is probed first and the original casing second;
// when neither yields results the organization is treated as absent,
// not as an error. Pagination within an organization is sequential to
// stay inside upstream rate limits.
func (c *Client) Organization(ctx context.Context, org string) ([]catalog.Listing, error) {
	spelling, first, err := c.probe(ctx, org)
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		logging.Info().Str("organization", org).Msg("Organization not found on hub")
		return nil, nil
	}

	raw := first
	lastPage := len(first)
	for page := 1; page < c.cfg.MaxPages && lastPage == c.cfg.PageSize; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		next, err := c.page(ctx, spelling, page*c.cfg.PageSize)
		if err != nil {
			return nil, err
		}
		raw = append(raw, next...)
		lastPage = len(next)
	}

	listings := make([]catalog.Listing, 0, len(raw))
	for _, m := range raw {
		if excluded(m.ID) {
			continue
		}
		listings = append(listings, c.convert(m))
	}

	logging.Debug().
		Str("organization", org).
		Int("listings", len(listings)).
		Int("raw", len(raw)).
		Msg("Fetched hub organization")

	return listings, nil
}

// probe discovers which spelling of the organization the hub knows.
func (c *Client) probe(ctx context.Context, org string) (string, []hubModel, error) {
	spellings := []string{strings.ToLower(org)}
	if org != spellings[0] {
		spellings = append(spellings, org)
	}

	for _, spelling := range spellings {
		models, err := c.page(ctx, spelling, 0)
		if err != nil {
			return "", nil, err
		}
		if len(models) > 0 {
			return spelling, models, nil
		}
	}
	return "", nil, nil
}

// page fetches one page of listings for an organization spelling.
func (c *Client) page(ctx context.Context, org string, skip int) ([]hubModel, error) {
	endpoint := fmt.Sprintf("%s/api/models?author=%s&limit=%d&skip=%d&full=true",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.QueryEscape(org), c.cfg.PageSize, skip)

	data, err := c.fetcher.Get(ctx, endpoint, fetch.WithBearer(c.cfg.APIKey))
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var models []hubModel
	if err := json.Unmarshal(data, &models); err != nil {
		logging.Warn().Err(err).Str("organization", org).Msg("Malformed hub response, skipping page")
		return nil, nil
	}
	return models, nil
}

// convert maps a hub model into the common listing shape.
func (c *Client) convert(m hubModel) catalog.Listing {
	publisher, name, found := strings.Cut(m.ID, "/")
	if !found {
		publisher, name = "", m.ID
	}

	l := catalog.Listing{
		Name:             name,
		ModelID:          m.ID,
		HubID:            m.ID,
		Publisher:        publisher,
		Category:         catalog.DefaultCategory,
		Tags:             m.Tags,
		Downloads:        m.Downloads,
		Likes:            m.Likes,
		ShortDescription: m.CardData.ShortDescription,
		HubURL:           strings.TrimRight(c.cfg.BaseURL, "/") + "/" + m.ID,
		Source:           catalog.SourceHub,
		CreatedAt:        m.CreatedAt,
		LastModified:     m.LastModified,
	}
	if m.PipelineTag != "" {
		l.Tasks = []string{m.PipelineTag}
	}

	identity.Normalize(&l)
	return l
}

// excluded reports whether a hub id names an adapter or LoRA variant.
func excluded(id string) bool {
	lower := strings.ToLower(id)
	for _, sub := range excludedIDSubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
