package cron

import (
	"context"

	"imagegate/internal/service"

	"github.com/google/wire"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(
	NewCron,
	NewCostSnapshotJob,
	wire.Bind(new(CostSummarizer), new(*service.CostService)),
)

// 每 10 分鐘（秒欄位為 0）
const costSnapshotSpec = "0 */10 * * * *"

type Cron struct {
	logger          *zap.Logger
	server          *cron.Cron
	costSnapshotJob *CostSnapshotJob
}

// NewCron .
func NewCron(logger *zap.Logger, costSnapshotJob *CostSnapshotJob) *Cron {
	server := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)

	return &Cron{
		logger:          logger,
		server:          server,
		costSnapshotJob: costSnapshotJob,
	}
}

func (c *Cron) Run() error {
	if _, err := c.server.AddFunc(costSnapshotSpec, c.costSnapshotJob.Run); err != nil {
		return err
	}

	c.server.Start()
	return nil
}

func (c *Cron) Stop(ctx context.Context) error {
	stopped := c.server.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		c.logger.Warn("cron stop timeout, running jobs abandoned")
	}
	return nil
}
