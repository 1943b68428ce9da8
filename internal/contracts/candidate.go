package contracts

// SourceReference points to the location in uploaded research material
// that a claim was extracted from
type SourceReference struct {
	FileName string `json:"file_name"`
	Location string `json:"location"` // 페이지/섹션 등
}

// CandidateCompany is one company as described by source material.
// 문서 학습 단계가 생성하는 불변 입력 (이 코어는 수정하지 않음)
type CandidateCompany struct {
	Name     string `json:"name"`
	Market   string `json:"market"`   // 상장 시장 힌트 (KRX, KOSDAQ, NYSE, NASDAQ, ...)
	Currency string `json:"currency"` // 문서에 기재된 통화

	TargetPrice         *float64 `json:"target_price,omitempty"`
	RecommendedBuyPrice *float64 `json:"recommended_buy_price,omitempty"`

	// 문서에서 추출한 지표 (키: PER, PBR, ROE, ...)
	Metrics map[string]float64 `json:"metrics,omitempty"`

	Thesis      string            `json:"thesis"`
	RiskFactors []string          `json:"risk_factors,omitempty"`
	Sources     []SourceReference `json:"sources,omitempty"`

	// Document-derived confidence in [0,1]
	Confidence float64 `json:"confidence"`
}

// HasPriceOpinion reports whether the document stated any actionable price
func (c *CandidateCompany) HasPriceOpinion() bool {
	return c.TargetPrice != nil || c.RecommendedBuyPrice != nil
}

// Metric returns a named document metric if present
func (c *CandidateCompany) Metric(name string) (float64, bool) {
	v, ok := c.Metrics[name]
	return v, ok
}
