// Package router fetches the API-router model catalog in a single
// request. The router is the only source that reports pricing.
package router

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/modelscout/modelscout/internal/fetch"
	"github.com/modelscout/modelscout/pkg/catalog"
	"github.com/modelscout/modelscout/pkg/errors"
	"github.com/modelscout/modelscout/pkg/identity"
	"github.com/modelscout/modelscout/pkg/logging"
)

// Config configures the router adapter.
type Config struct {
	BaseURL string
	APIKey  string
}

// Adapter fetches the router catalog.
type Adapter struct {
	fetcher *fetch.Client
	cfg     Config
}

// New creates a router adapter.
func New(fetcher *fetch.Client, cfg Config) *Adapter {
	return &Adapter{fetcher: fetcher, cfg: cfg}
}

// ID returns the router source identifier.
func (a *Adapter) ID() catalog.Source {
	return catalog.SourceRouter
}

// routerResponse is the upstream catalog envelope.
type routerResponse struct {
	Data []routerModel `json:"data"`
}

// routerModel is one entry of the router catalog. Prices arrive as
// decimal strings.
type routerModel struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	ContextLength int64    `json:"context_length"`
	Pricing       *pricing `json:"pricing"`
	Architecture  *struct {
		Modality        string   `json:"modality"`
		InputModalities []string `json:"input_modalities"`
		Tokenizer       string   `json:"tokenizer"`
	} `json:"architecture"`
}

type pricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
	Request    string `json:"request"`
	Image      string `json:"image"`
}

// Fetch retrieves the full router catalog. A response missing the
// expected data array is logged and yields an empty list rather than
// an error.
func (a *Adapter) Fetch(ctx context.Context) ([]catalog.Listing, error) {
	endpoint := strings.TrimRight(a.cfg.BaseURL, "/") + "/api/v1/models"

	data, err := a.fetcher.Get(ctx, endpoint, fetch.WithBearer(a.cfg.APIKey))
	if err != nil {
		if errors.IsNotFound(err) {
			logging.Info().Msg("Router catalog returned no data")
			return nil, nil
		}
		return nil, err
	}

	var resp routerResponse
	if err := json.Unmarshal(data, &resp); err != nil || resp.Data == nil {
		logging.Warn().
			AnErr("error", err).
			Msg("Malformed router response, skipping source")
		return nil, nil
	}

	listings := make([]catalog.Listing, 0, len(resp.Data))
	for _, m := range resp.Data {
		listings = append(listings, a.convert(m))
	}

	logging.Debug().Int("listings", len(listings)).Msg("Fetched router catalog")
	return listings, nil
}

// convert maps a router entry into the common listing shape. The
// compound id splits on the first slash into publisher and name.
func (a *Adapter) convert(m routerModel) catalog.Listing {
	publisher, name, found := strings.Cut(m.ID, "/")
	if !found {
		publisher, name = "", m.ID
	}

	l := catalog.Listing{
		Name:          name,
		ModelID:       m.ID,
		RouterID:      m.ID,
		Publisher:     publisher,
		Category:      catalog.DefaultCategory,
		Description:   m.Description,
		ContextWindow: m.ContextLength,
		RouterURL:     strings.TrimRight(a.cfg.BaseURL, "/") + "/models/" + m.ID,
		Source:        catalog.SourceRouter,
	}

	if m.Pricing != nil {
		l.Pricing = &catalog.Pricing{
			Prompt:     parsePrice(m.Pricing.Prompt),
			Completion: parsePrice(m.Pricing.Completion),
			Request:    parsePrice(m.Pricing.Request),
			Image:      parsePrice(m.Pricing.Image),
		}
	}
	if m.Architecture != nil {
		if m.Architecture.Modality != "" {
			l.Tasks = append(l.Tasks, m.Architecture.Modality)
		}
		l.Tags = append(l.Tags, m.Architecture.InputModalities...)
	}

	identity.Normalize(&l)
	return l
}

// parsePrice tolerates malformed price strings; missing or bad values
// read as zero.
func parsePrice(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
