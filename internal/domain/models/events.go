package models

import "time"

type EventType string

const (
	EventBootstrapLoaded     EventType = "bootstrap_loaded"
	EventBootstrapFailed     EventType = "bootstrap_failed"
	EventFiltersChanged      EventType = "filters_changed"
	EventBatchCommitted      EventType = "batch_committed"
	EventBatchFailed         EventType = "batch_failed"
	EventHeatmapCommitted    EventType = "heatmap_committed"
	EventHeatmapFailed       EventType = "heatmap_failed"
	EventResultDropped       EventType = "result_dropped"
	EventSelectionChanged    EventType = "selection_changed"
	EventPredictionCommitted EventType = "prediction_committed"
	EventPredictionFailed    EventType = "prediction_failed"
)

// DashboardEvent records one state transition of a session.
type DashboardEvent struct {
	ID      string                 `json:"id"`
	Session string                 `json:"session"`
	Type    EventType              `json:"type"`
	Time    time.Time              `json:"time"`
	Seq     uint64                 `json:"seq,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
}
