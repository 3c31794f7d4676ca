package models

// Metrics are the scalar aggregates over the filtered set.
type Metrics struct {
	TotalFilings    int     `json:"total_filings"`
	AvgComplexity   float64 `json:"avg_ccti"`
	AvgExcessReturn float64 `json:"avg_excess_return"`
	AvgVolatility   float64 `json:"avg_volatility"`
}

type HistogramBin struct {
	Bin   string `json:"bin"`
	Count int    `json:"count"`
}

// Heatmap is a grid of mean excess return. Z rows follow Y, columns follow X.
type Heatmap struct {
	X []string    `json:"x"`
	Y []string    `json:"y"`
	Z [][]float64 `json:"z"`
}

// Empty reports whether the engine had nothing to bin.
func (h Heatmap) Empty() bool {
	return len(h.Z) == 0
}

type TrendPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Scatter holds the plotted filings and the fitted trend, ascending by X.
type Scatter struct {
	Points []FilingRecord `json:"points"`
	Trend  []TrendPoint   `json:"trend"`
}

// QueryBatchResult is one full query: all four payloads for one FilterState.
type QueryBatchResult struct {
	Metrics   Metrics        `json:"metrics"`
	Histogram []HistogramBin `json:"histogram"`
	Heatmap   Heatmap        `json:"heatmap"`
	Scatter   Scatter        `json:"scatter"`
}
