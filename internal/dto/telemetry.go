package dto

import "imagegate/internal/database/mongodb/model"

type CostSummaryResponseDto struct {
	Total        *model.TokenUsageAggregate   `json:"total"`
	ByOperation  []*model.TokenUsageAggregate `json:"byOperation"`
	ByCredential []*model.TokenUsageAggregate `json:"byCredential"`
	ByModel      []*model.TokenUsageAggregate `json:"byModel"`
}
