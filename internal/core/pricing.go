package core

// ModelPricing 每個模型的計價（美元）
type ModelPricing struct {
	PerImage           float64 `json:"perImage"`
	InputPerMillion    float64 `json:"inputPerMillion"`
	OutputPerMillion   float64 `json:"outputPerMillion"`
	ThinkingPerMillion float64 `json:"thinkingPerMillion"`
}

// DefaultPricingModel 找不到模型時採用的計價
const DefaultPricingModel = "gemini-2.5-flash-image-preview"

// PricingTable 靜態計價表
var PricingTable = map[string]ModelPricing{
	"gemini-2.5-flash-image-preview": {
		PerImage:           0.039,
		InputPerMillion:    0.30,
		OutputPerMillion:   2.50,
		ThinkingPerMillion: 2.50,
	},
	"gemini-2.5-flash-image": {
		PerImage:           0.039,
		InputPerMillion:    0.30,
		OutputPerMillion:   2.50,
		ThinkingPerMillion: 2.50,
	},
	"gemini-2.5-flash-lite": {
		InputPerMillion:    0.10,
		OutputPerMillion:   0.40,
		ThinkingPerMillion: 0.40,
	},
	"gemini-2.5-flash": {
		InputPerMillion:    0.30,
		OutputPerMillion:   2.50,
		ThinkingPerMillion: 2.50,
	},
	"gpt-image-1": {
		PerImage:         0.042,
		InputPerMillion:  5.00,
		OutputPerMillion: 40.00,
	},
}

// PricingFor 取得模型計價，未知模型回傳預設計價
func PricingFor(model string) ModelPricing {
	if p, ok := PricingTable[model]; ok {
		return p
	}
	return PricingTable[DefaultPricingModel]
}
