package command

import (
	"fmt"
	"text/tabwriter"

	"imagegate/internal/database/mongodb/model"
	"imagegate/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ReportHandler 用量與費用報表
type ReportHandler struct {
	logger       *zap.Logger
	usageService *service.UsageService
	costService  *service.CostService
}

func NewReportHandler(logger *zap.Logger, usageService *service.UsageService, costService *service.CostService) *ReportHandler {
	return &ReportHandler{
		logger:       logger,
		usageService: usageService,
		costService:  costService,
	}
}

// UsageReport 指定 code 時列出各使用者用量，並附上依 groupBy 的費用彙總
func (handler *ReportHandler) UsageReport(cmd *cobra.Command, code string, groupBy string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if code != "" {
		usages, err := handler.usageService.ListByCode(ctx, code)
		if err != nil {
			return err
		}
		cmd.Printf("usage for credential %s\n", code)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "USER\tIMAGES\tSUGGESTIONS")
		for _, u := range usages {
			fmt.Fprintf(w, "%s\t%d\t%d\n", u.UserID, u.ImageCount, u.SuggestionCount)
		}
		w.Flush()
		cmd.Println()
	}

	rows, err := handler.costService.Aggregate(ctx, groupBy)
	if err != nil {
		return err
	}
	printAggregates(cmd, groupBy, rows)
	handler.logger.Debug("usage report printed", zap.String("code", code), zap.String("groupBy", groupBy), zap.Int("rows", len(rows)))
	return nil
}

func printAggregates(cmd *cobra.Command, groupBy string, rows []*model.TokenUsageAggregate) {
	if groupBy == "" {
		groupBy = "total"
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tREQUESTS\tPROMPT\tCOMPLETION\tTHINKING\tTOTAL\tIMAGES\tCOST_USD\n", groupBy)
	for _, r := range rows {
		group := r.Group
		if group == "" {
			group = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%.4f\n",
			group, r.RequestCount, r.PromptTokens, r.CompletionTokens, r.ThinkingTokens,
			r.TotalTokens, r.ImagesGenerated, r.Cost)
	}
	w.Flush()
}
