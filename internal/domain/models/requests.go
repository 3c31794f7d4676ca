package models

// SetFilterRequest sets one filter field. Value follows the field: a
// "YYYY-MM-DD" string for dates, an array for multi-selects, a dimension name
// for sentiment_dimension. Null or [] clears a field.
type SetFilterRequest struct {
	Field string      `json:"field" validate:"required,oneof=start_date end_date sics forms market_conditions sentiment_dimension"`
	Value interface{} `json:"value"`
}

type SetSentimentRequest struct {
	Dimension string `json:"dimension" validate:"required,oneof=Negative Positive Uncertainty Litigious StrongModal"`
}

// SelectPointRequest carries a clicked scatter point.
type SelectPointRequest struct {
	Record   *FilingRecord `json:"record" validate:"required_without=Index"`
	Index    *int          `json:"index" validate:"required_without=Record"`
	Revision uint64        `json:"revision"`
}

func (r SelectPointRequest) PointRef() PointRef {
	return PointRef{Record: r.Record, Index: r.Index, Revision: r.Revision}
}

type SetFeatureRequest struct {
	Feature string   `json:"feature" validate:"required,oneof=CCTI Vol_30d Momentum_12_1 BM_w Size_w Negative Positive"`
	Value   *float64 `json:"value" validate:"required"`
}

// RunPredictionRequest predicts Input when given, the current draft otherwise.
type RunPredictionRequest struct {
	Input *PredictionInput `json:"input"`
}
