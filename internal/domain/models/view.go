package models

import "time"

// PointRef identifies a clicked scatter point.
//
// Record is the filing attached to the point, if the chart carried it.
// Index is the point's position in the rendered sequence, and Revision the
// dataset revision that sequence was rendered from. An index is only honoured
// against the same revision; a non-zero Revision also guards Record.
type PointRef struct {
	Record   *FilingRecord `json:"record,omitempty"`
	Index    *int          `json:"index,omitempty"`
	Revision uint64        `json:"revision,omitempty"`
}

// ViewSnapshot is a read-only copy of the committed view.
type ViewSnapshot struct {
	// Revision increments on every committed full batch. Zero means nothing committed yet.
	Revision         uint64             `json:"revision"`
	Loading          bool               `json:"loading"`
	Basis            *FilterState       `json:"basis,omitempty"`
	HeatmapDimension SentimentDimension `json:"heatmap_dimension,omitempty"`
	Metrics          *Metrics           `json:"metrics,omitempty"`
	Histogram        []HistogramBin     `json:"histogram"`
	Heatmap          *Heatmap           `json:"heatmap,omitempty"`
	Scatter          *Scatter           `json:"scatter,omitempty"`
	Selected         *FilingRecord      `json:"selected,omitempty"`
	Error            string             `json:"error,omitempty"`
	HeatmapError     string             `json:"heatmap_error,omitempty"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// Loaded reports whether a full batch has ever been committed.
func (v ViewSnapshot) Loaded() bool {
	return v.Revision > 0
}

// PredictionSnapshot is a read-only copy of the prediction workstation.
type PredictionSnapshot struct {
	Draft   PredictionInput   `json:"draft"`
	Result  *PredictionResult `json:"result,omitempty"`
	Running bool              `json:"running"`
	Error   string            `json:"error,omitempty"`
}

// DashboardSnapshot is everything the presentation layer renders.
type DashboardSnapshot struct {
	Session        string             `json:"session"`
	Bootstrapped   bool               `json:"bootstrapped"`
	BootstrapError string             `json:"bootstrap_error,omitempty"`
	Options        *FilterBounds      `json:"options,omitempty"`
	Filters        FilterState        `json:"filters"`
	View           ViewSnapshot       `json:"view"`
	Prediction     PredictionSnapshot `json:"prediction"`
}
