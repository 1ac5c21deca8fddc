package cron

import (
	"context"
	"errors"
	"testing"

	"imagegate/internal/database/mongodb/model"
	"imagegate/internal/dto"
	"imagegate/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubSummarizer struct {
	summary *dto.CostSummaryResponseDto
	err     error
	calls   int
}

func (s *stubSummarizer) Summary(ctx context.Context) (*dto.CostSummaryResponseDto, error) {
	s.calls++
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("summary called without deadline")
	}
	return s.summary, s.err
}

func TestCostSnapshotJob_Run(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "test_cost_snapshot_usd"}, []string{"model"})
	metric := &telemetry.Metric{CostSnapshot: gauge}

	summarizer := &stubSummarizer{summary: &dto.CostSummaryResponseDto{
		Total: &model.TokenUsageAggregate{RequestCount: 3, TotalTokens: 1500, ImagesGenerated: 2, Cost: 0.117},
		ByModel: []*model.TokenUsageAggregate{
			{Group: "gemini-2.5-flash-image-preview", Cost: 0.078},
			{Group: "gemini-2.5-flash-lite", Cost: 0.039},
		},
	}}

	NewCostSnapshotJob(zap.New(core), metric, summarizer).Run()

	assert.Equal(t, 1, summarizer.calls)
	assert.InDelta(t, 0.078, testutil.ToFloat64(gauge.WithLabelValues("gemini-2.5-flash-image-preview")), 1e-9)
	assert.InDelta(t, 0.039, testutil.ToFloat64(gauge.WithLabelValues("gemini-2.5-flash-lite")), 1e-9)

	entries := logs.FilterMessage("cost snapshot").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, int64(3), fields["requests"])
		assert.Equal(t, int64(2), fields["images"])
		assert.Equal(t, int64(2), fields["models"])
	}
}

func TestCostSnapshotJob_SummaryError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	summarizer := &stubSummarizer{err: errors.New("mongo unavailable")}

	assert.NotPanics(t, func() {
		NewCostSnapshotJob(zap.New(core), &telemetry.Metric{}, summarizer).Run()
	})
	assert.Equal(t, 1, logs.FilterMessage("cost snapshot failed").Len())
	assert.Equal(t, 0, logs.FilterMessage("cost snapshot").Len())
}

func TestCron_RunAndStop(t *testing.T) {
	job := NewCostSnapshotJob(zap.NewNop(), &telemetry.Metric{}, &stubSummarizer{})
	c := NewCron(zap.NewNop(), job)

	assert.NoError(t, c.Run())
	assert.Len(t, c.server.Entries(), 1)
	assert.NoError(t, c.Stop(context.Background()))
}
