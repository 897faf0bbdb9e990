package catalog

import "time"

// Task queue constants. The queue holds work for a separate
// enrichment consumer; this system only enqueues.
const (
	TaskTypeFetchReadme = "fetch_readme"
	TaskStatusPending   = "pending"
)

// EnrichmentTask is one queued unit of enrichment work for a
// canonical record.
type EnrichmentTask struct {
	TaskType    string    `json:"task_type"`
	CanonicalID string    `json:"canonical_id"`
	SourceURL   string    `json:"source_url,omitempty"`
	ModelID     string    `json:"model_id,omitempty"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// NewReadmeTask builds a pending fetch_readme task for a record.
func NewReadmeTask(r *Record, now time.Time) EnrichmentTask {
	return EnrichmentTask{
		TaskType:    TaskTypeFetchReadme,
		CanonicalID: r.CanonicalID,
		SourceURL:   r.SourceURL(),
		ModelID:     r.ModelID,
		Status:      TaskStatusPending,
		ScheduledAt: now,
	}
}
