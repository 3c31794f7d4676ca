package models

// FilingRecord is one filing with its computed features. Treat as immutable.
type FilingRecord struct {
	CompanyName     string  `json:"company_name"`
	AccessionNumber string  `json:"accession_number"`
	FilingDate      Date    `json:"filing_date"`
	FormType        string  `json:"form_type"`
	Complexity      float64 `json:"ccti"`
	ExcessReturn    float64 `json:"excess_return"`
	Volatility30d   float64 `json:"vol_30d"`
	Momentum12_1    float64 `json:"momentum_12_1"`
	BookToMarket    float64 `json:"bm"`
	Size            float64 `json:"size"`
	Positive        float64 `json:"positive"`
	Negative        float64 `json:"negative"`
	Uncertainty     float64 `json:"uncertainty"`
	Litigious       float64 `json:"litigious"`
	StrongModal     float64 `json:"strong_modal"`
}

// FilterBounds is the bootstrap metadata: valid dates and option lists.
type FilterBounds struct {
	MinDate          Date              `json:"min_date"`
	MaxDate          Date              `json:"max_date"`
	IndustryCodes    []int             `json:"industry_codes"`
	FormTypes        []string          `json:"form_types"`
	MarketConditions []MarketCondition `json:"market_conditions"`
}
