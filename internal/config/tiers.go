package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/modelscout/modelscout/pkg/errors"
)

// Preset names accepted by the collect command.
const (
	PresetTop      = "top"
	PresetExtended = "extended"
	PresetAll      = "all"
)

// Tiers holds the organization lists queried against the hub source,
// grouped by how prominent the organizations are.
type Tiers struct {
	Top      []string `yaml:"top"`
	Extended []string `yaml:"extended"`
}

// DefaultTiers returns the built-in organization lists used when no
// tier file is configured.
func DefaultTiers() Tiers {
	return Tiers{
		Top: []string{
			"meta-llama", "mistralai", "google", "microsoft",
			"Qwen", "deepseek-ai", "openai", "anthropic",
		},
		Extended: []string{
			"stabilityai", "tiiuae", "bigscience", "EleutherAI",
			"databricks", "NousResearch", "CohereForAI", "allenai",
			"HuggingFaceH4", "ibm-granite",
		},
	}
}

// LoadTiers reads organization tiers from a YAML file, or returns the
// built-in defaults when no path is given.
func LoadTiers(path string) (Tiers, error) {
	if path == "" {
		return DefaultTiers(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tiers{}, errors.NewConfigError("tiers", fmt.Sprintf("read %s", path), err)
	}

	var tiers Tiers
	if err := yaml.Unmarshal(data, &tiers); err != nil {
		return Tiers{}, errors.NewConfigError("tiers", fmt.Sprintf("parse %s", path), err)
	}
	if len(tiers.Top) == 0 && len(tiers.Extended) == 0 {
		return Tiers{}, errors.NewConfigError("tiers", fmt.Sprintf("%s defines no organizations", path), errors.ErrInvalidConfig)
	}
	return tiers, nil
}

// Resolve returns the organization list for a preset name. The "all"
// preset covers every known organization and is the only preset that
// also enables the library scrape.
func (t Tiers) Resolve(preset string) ([]string, error) {
	switch strings.ToLower(preset) {
	case PresetTop:
		return append([]string(nil), t.Top...), nil
	case PresetExtended:
		return append([]string(nil), t.Extended...), nil
	case PresetAll:
		return t.All(), nil
	}
	return nil, errors.NewConfigError("tiers", fmt.Sprintf("unknown preset %q (expected %s, %s, or %s)",
		preset, PresetTop, PresetExtended, PresetAll), errors.ErrInvalidConfig)
}

// All returns every known organization, deduplicated and sorted.
func (t Tiers) All() []string {
	seen := make(map[string]bool)
	var all []string
	for _, org := range append(append([]string(nil), t.Top...), t.Extended...) {
		if !seen[org] {
			seen[org] = true
			all = append(all, org)
		}
	}
	sort.Strings(all)
	return all
}

// ParseOrgList splits an explicit comma-separated organization list.
func ParseOrgList(s string) []string {
	var orgs []string
	for _, part := range strings.Split(s, ",") {
		if org := strings.TrimSpace(part); org != "" {
			orgs = append(orgs, org)
		}
	}
	return orgs
}
