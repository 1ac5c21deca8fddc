package cron

import (
	"context"
	"time"

	"imagegate/internal/dto"
	"imagegate/internal/telemetry"

	"go.uber.org/zap"
)

// CostSummarizer 提供費用彙總
type CostSummarizer interface {
	Summary(ctx context.Context) (*dto.CostSummaryResponseDto, error)
}

// CostSnapshotJob 定期把累計費用寫進 log 與 gauge
type CostSnapshotJob struct {
	logger  *zap.Logger
	metric  *telemetry.Metric
	cost    CostSummarizer
	timeout time.Duration
}

func NewCostSnapshotJob(logger *zap.Logger, metric *telemetry.Metric, cost CostSummarizer) *CostSnapshotJob {
	return &CostSnapshotJob{
		logger:  logger,
		metric:  metric,
		cost:    cost,
		timeout: 30 * time.Second,
	}
}

func (job *CostSnapshotJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), job.timeout)
	defer cancel()

	summary, err := job.cost.Summary(ctx)
	if err != nil {
		job.logger.Warn("cost snapshot failed", zap.Error(err))
		return
	}

	for _, row := range summary.ByModel {
		job.metric.SetCostSnapshot(row.Group, row.Cost)
	}

	fields := []zap.Field{
		zap.Int64("requests", summary.Total.RequestCount),
		zap.Int64("total_tokens", summary.Total.TotalTokens),
		zap.Int64("images", summary.Total.ImagesGenerated),
		zap.Float64("cost_usd", summary.Total.Cost),
		zap.Int("models", len(summary.ByModel)),
	}
	job.logger.Info("cost snapshot", fields...)
}
