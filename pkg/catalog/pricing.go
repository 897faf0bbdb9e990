package catalog

// Pricing holds per-unit USD prices as reported by the router. Values
// are zero when the upstream omits or malforms them.
type Pricing struct {
	Prompt     float64 `json:"prompt,omitempty"`
	Completion float64 `json:"completion,omitempty"`
	Request    float64 `json:"request,omitempty"`
	Image      float64 `json:"image,omitempty"`
}

// IsZero reports whether no price component is set.
func (p *Pricing) IsZero() bool {
	return p == nil || (p.Prompt == 0 && p.Completion == 0 && p.Request == 0 && p.Image == 0)
}
