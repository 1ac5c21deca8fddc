package command

import (
	commandHandler "imagegate/internal/command/handler"

	"github.com/google/wire"
	"github.com/spf13/cobra"
)

var ProviderSet = wire.NewSet(NewCommand, commandHandler.NewCredentialHandler, commandHandler.NewReportHandler)

type Command struct {
	credentialHandler *commandHandler.CredentialHandler
	reportHandler     *commandHandler.ReportHandler
}

// NewCommand .
func NewCommand(
	credentialHandler *commandHandler.CredentialHandler,
	reportHandler *commandHandler.ReportHandler,
) *Command {
	return &Command{
		credentialHandler: credentialHandler,
		reportHandler:     reportHandler,
	}
}

// 延遲建立依賴，只有真正執行子命令時才連線資料庫
func withCommand(newCmd func() (*Command, func(), error), run func(*Command) error) error {
	command, cleanup, err := newCmd()
	if err != nil {
		return err
	}
	defer cleanup()
	return run(command)
}

func Register(rootCmd *cobra.Command, newCmd func() (*Command, func(), error)) {
	credentialCmd := &cobra.Command{
		Use:   "credential",
		Short: "manage access codes",
	}

	var upsertOpts commandHandler.UpsertOptions
	upsertCmd := &cobra.Command{
		Use:   "upsert <code>",
		Short: "create or overwrite an access code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommand(newCmd, func(command *Command) error {
				return command.credentialHandler.Upsert(cmd, args[0], upsertOpts)
			})
		},
	}
	upsertCmd.Flags().IntVar(&upsertOpts.ValidDays, "days", 30, "validity in days")
	upsertCmd.Flags().IntVar(&upsertOpts.ImageQuota, "images", 0, "image generation/edit quota per user")
	upsertCmd.Flags().IntVar(&upsertOpts.SuggestionQuota, "suggestions", 0, "AI suggestion quota per user")
	upsertCmd.Flags().BoolVar(&upsertOpts.BypassModeration, "bypass-moderation", false, "skip content moderation")
	upsertCmd.Flags().StringVar(&upsertOpts.ImageBackend, "backend", "default", "image backend: default or alternate")

	var patchDays int
	patchDaysCmd := &cobra.Command{
		Use:   "patch-days <code>",
		Short: "change validity days (expiry is recomputed from creation time)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommand(newCmd, func(command *Command) error {
				return command.credentialHandler.PatchDays(cmd, args[0], patchDays)
			})
		},
	}
	patchDaysCmd.Flags().IntVar(&patchDays, "days", 0, "new validity in days")
	_ = patchDaysCmd.MarkFlagRequired("days")

	deleteCmd := &cobra.Command{
		Use:   "delete <code>",
		Short: "delete an access code and its usage counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommand(newCmd, func(command *Command) error {
				return command.credentialHandler.Delete(cmd, args[0])
			})
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list access codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommand(newCmd, func(command *Command) error {
				return command.credentialHandler.List(cmd)
			})
		},
	}
	credentialCmd.AddCommand(upsertCmd, patchDaysCmd, deleteCmd, listCmd)

	var reportCode, reportGroupBy string
	usageReportCmd := &cobra.Command{
		Use:   "usage-report",
		Short: "print per-user usage and token cost aggregates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommand(newCmd, func(command *Command) error {
				return command.reportHandler.UsageReport(cmd, reportCode, reportGroupBy)
			})
		},
	}
	usageReportCmd.Flags().StringVar(&reportCode, "code", "", "access code to break down per user")
	usageReportCmd.Flags().StringVar(&reportGroupBy, "group-by", "model_name", "operation_type, credential_code, model_name or empty for total")

	rootCmd.AddCommand(credentialCmd, usageReportCmd)
}
