package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"FilingLens/internal/domain/models"
)

// filterRequest is the engine's filter body. Unset fields are omitted,
// which the engine reads as "no constraint".
type filterRequest struct {
	StartDate        string   `json:"start_date,omitempty"`
	EndDate          string   `json:"end_date,omitempty"`
	Sics             []int    `json:"sics,omitempty"`
	Forms            []string `json:"forms,omitempty"`
	MarketConditions []int    `json:"market_conditions,omitempty"`
}

func toFilterRequest(f models.FilterState) filterRequest {
	req := filterRequest{
		Sics:  f.IndustryCodes,
		Forms: f.FormTypes,
	}
	if f.StartDate != nil {
		req.StartDate = f.StartDate.String()
	}
	if f.EndDate != nil {
		req.EndDate = f.EndDate.String()
	}
	for _, m := range f.MarketConditions {
		req.MarketConditions = append(req.MarketConditions, int(m))
	}
	return req
}

// number decodes a JSON number and treats null as zero.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

type boundsResponse struct {
	MinDate          models.Date `json:"min_date"`
	MaxDate          models.Date `json:"max_date"`
	Sics             []number    `json:"sics"`
	Forms            []string    `json:"forms"`
	MarketConditions []int       `json:"market_conditions"`
}

func (r boundsResponse) toModel() models.FilterBounds {
	out := models.FilterBounds{
		MinDate:   r.MinDate,
		MaxDate:   r.MaxDate,
		FormTypes: models.NormalizeStrings(r.Forms),
	}
	codes := make([]int, 0, len(r.Sics))
	for _, s := range r.Sics {
		if f := float64(s); !math.IsNaN(f) {
			codes = append(codes, int(math.Round(f)))
		}
	}
	out.IndustryCodes = models.NormalizeInts(codes)
	for _, m := range r.MarketConditions {
		if mc := models.MarketCondition(m); mc.Valid() {
			out.MarketConditions = append(out.MarketConditions, mc)
		}
	}
	return out
}

type metricsResponse struct {
	TotalFilings int    `json:"total_filings"`
	AvgCCTI      number `json:"avg_ccti"`
	AvgExcessRet number `json:"avg_excess_ret"`
	AvgVol       number `json:"avg_vol"`
}

func (r metricsResponse) toModel() models.Metrics {
	return models.Metrics{
		TotalFilings:    r.TotalFilings,
		AvgComplexity:   float64(r.AvgCCTI),
		AvgExcessReturn: float64(r.AvgExcessRet),
		AvgVolatility:   float64(r.AvgVol),
	}
}

type histogramBin struct {
	Bin   string `json:"bin"`
	Count int    `json:"count"`
}

// heatmapResponse accepts both {x, y, z} and the bare [] the engine sends
// for an empty filtered set.
type heatmapResponse struct {
	X []string   `json:"x"`
	Y []string   `json:"y"`
	Z [][]number `json:"z"`
}

func (r *heatmapResponse) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return err
		}
		if len(arr) != 0 {
			return fmt.Errorf("heatmap: unexpected array of %d elements", len(arr))
		}
		*r = heatmapResponse{}
		return nil
	}
	type plain heatmapResponse
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*r = heatmapResponse(p)
	return nil
}

func (r heatmapResponse) toModel() (models.Heatmap, error) {
	h := models.Heatmap{X: r.X, Y: r.Y, Z: make([][]float64, len(r.Z))}
	if len(r.Z) > 0 && len(r.Z) != len(r.Y) {
		return models.Heatmap{}, fmt.Errorf("heatmap: %d rows for %d y labels", len(r.Z), len(r.Y))
	}
	for i, row := range r.Z {
		if len(row) != len(r.X) {
			return models.Heatmap{}, fmt.Errorf("heatmap: row %d has %d cells for %d x labels", i, len(row), len(r.X))
		}
		h.Z[i] = make([]float64, len(row))
		for j, v := range row {
			h.Z[i][j] = float64(v)
		}
	}
	return h, nil
}

type scatterPoint struct {
	CCTI         number      `json:"CCTI"`
	ExcessRet    number      `json:"ExcessRet"`
	CoName       string      `json:"CoName"`
	FilingDate   models.Date `json:"FILING_DATE"`
	AccNum       string      `json:"ACC_NUM"`
	Vol30d       number      `json:"Vol_30d"`
	Momentum12_1 number      `json:"Momentum_12_1"`
	BMw          number      `json:"BM_w"`
	SizeW        number      `json:"Size_w"`
	Negative     number      `json:"Negative"`
	Positive     number      `json:"Positive"`
	Uncertainty  number      `json:"Uncertainty"`
	Litigious    number      `json:"Litigious"`
	StrongModal  number      `json:"StrongModal"`
	FormType     string      `json:"FORM_TYPE"`
}

func (p scatterPoint) toModel() models.FilingRecord {
	return models.FilingRecord{
		CompanyName:     p.CoName,
		AccessionNumber: p.AccNum,
		FilingDate:      p.FilingDate,
		FormType:        p.FormType,
		Complexity:      float64(p.CCTI),
		ExcessReturn:    float64(p.ExcessRet),
		Volatility30d:   float64(p.Vol30d),
		Momentum12_1:    float64(p.Momentum12_1),
		BookToMarket:    float64(p.BMw),
		Size:            float64(p.SizeW),
		Positive:        float64(p.Positive),
		Negative:        float64(p.Negative),
		Uncertainty:     float64(p.Uncertainty),
		Litigious:       float64(p.Litigious),
		StrongModal:     float64(p.StrongModal),
	}
}

type trendPoint struct {
	CCTI  number `json:"CCTI"`
	Trend number `json:"Trend"`
}

type scatterResponse struct {
	Points []scatterPoint `json:"points"`
	Trend  []trendPoint   `json:"trend"`
}

// toModel keeps point order as sent (it is the rendered order) and sorts the trend by x.
func (r scatterResponse) toModel() models.Scatter {
	s := models.Scatter{
		Points: make([]models.FilingRecord, len(r.Points)),
		Trend:  make([]models.TrendPoint, len(r.Trend)),
	}
	for i, p := range r.Points {
		s.Points[i] = p.toModel()
	}
	for i, t := range r.Trend {
		s.Trend[i] = models.TrendPoint{X: float64(t.CCTI), Y: float64(t.Trend)}
	}
	sort.SliceStable(s.Trend, func(i, j int) bool { return s.Trend[i].X < s.Trend[j].X })
	return s
}

type similarFiling struct {
	CoName     string      `json:"CoName"`
	FilingDate models.Date `json:"FILING_DATE"`
	AccNum     string      `json:"ACC_NUM"`
	ExcessRet  number      `json:"ExcessRet"`
	CCTI       number      `json:"CCTI"`
}

type predictResponse struct {
	PredictedExcessReturn number          `json:"predicted_excess_return"`
	SimilarFilings        []similarFiling `json:"similar_filings"`
}

func (r predictResponse) toModel() models.PredictionResult {
	out := models.PredictionResult{
		PredictedExcessReturn: float64(r.PredictedExcessReturn),
		SimilarFilings:        make([]models.SimilarFiling, len(r.SimilarFilings)),
	}
	for i, s := range r.SimilarFilings {
		out.SimilarFilings[i] = models.SimilarFiling{
			CompanyName:     s.CoName,
			AccessionNumber: s.AccNum,
			FilingDate:      s.FilingDate,
			ExcessReturn:    float64(s.ExcessRet),
			Complexity:      float64(s.CCTI),
		}
	}
	return out
}

type importanceEntry struct {
	Feature    string `json:"feature"`
	Importance number `json:"importance"`
}
