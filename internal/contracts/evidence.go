package contracts

// CheckStatus classifies a real-time corroboration check
type CheckStatus string

const (
	CheckFavorable   CheckStatus = "favorable"
	CheckNeutral     CheckStatus = "neutral"
	CheckUnfavorable CheckStatus = "unfavorable"
)

// EvidenceFactor is one weighted factor drawn from source material
type EvidenceFactor struct {
	Description string           `json:"description"`
	Weight      float64          `json:"weight"`
	Source      *SourceReference `json:"source,omitempty"`
}

// RealTimeCheck contrasts a document claim against live market data
type RealTimeCheck struct {
	Name          string      `json:"name"`
	DocumentValue float64     `json:"document_value"`
	LiveValue     float64     `json:"live_value"`
	Status        CheckStatus `json:"status"`
}

// EvidenceChain reconstructs why a candidate scored as it did.
// 스코어링에는 쓰이지 않고 투명성(표시)용으로만 생성된다.
type EvidenceChain struct {
	Decision string           `json:"decision"`
	Factors  []EvidenceFactor `json:"factors"`
	Checks   []RealTimeCheck  `json:"checks"`
}
