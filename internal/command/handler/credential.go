package command

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"imagegate/internal/core"
	"imagegate/internal/dto"
	"imagegate/internal/service"
	"imagegate/utils/validate"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// UpsertOptions `credential upsert` 的參數
type UpsertOptions struct {
	ValidDays        int
	ImageQuota       int
	SuggestionQuota  int
	BypassModeration bool
	ImageBackend     string
}

// CredentialHandler 維運用的通行碼管理命令
type CredentialHandler struct {
	logger            *zap.Logger
	credentialService *service.CredentialService
}

func NewCredentialHandler(logger *zap.Logger, credentialService *service.CredentialService) *CredentialHandler {
	return &CredentialHandler{
		logger:            logger,
		credentialService: credentialService,
	}
}

func (handler *CredentialHandler) Upsert(cmd *cobra.Command, code string, opts UpsertOptions) error {
	if opts.ValidDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	if opts.ImageQuota < 0 || opts.SuggestionQuota < 0 {
		return fmt.Errorf("quotas cannot be negative")
	}
	if opts.ImageBackend == "" {
		opts.ImageBackend = string(core.ImageBackendDefault)
	}
	if !validate.IsValidImageBackend(opts.ImageBackend) {
		return fmt.Errorf("invalid --backend %q, expected default or alternate", opts.ImageBackend)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	credential, err := handler.credentialService.Upsert(ctx, &dto.UpsertCredentialDto{
		Code:             code,
		ValidDays:        opts.ValidDays,
		ImageQuota:       opts.ImageQuota,
		SuggestionQuota:  opts.SuggestionQuota,
		BypassModeration: opts.BypassModeration,
		ImageBackend:     core.ImageBackend(opts.ImageBackend),
	})
	if err != nil {
		return err
	}
	handler.logger.Info("credential upserted", zap.String("code", credential.Code))
	printCredentials(cmd, []*dto.CredentialResponseDto{credential})
	return nil
}

func (handler *CredentialHandler) PatchDays(cmd *cobra.Command, code string, validDays int) error {
	if validDays < 1 {
		return fmt.Errorf("days must be at least 1")
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	credential, err := handler.credentialService.Patch(ctx, code, &dto.PatchCredentialDto{ValidDays: &validDays})
	if err != nil {
		return err
	}
	handler.logger.Info("credential validity updated", zap.String("code", credential.Code), zap.Int("validDays", validDays))
	printCredentials(cmd, []*dto.CredentialResponseDto{credential})
	return nil
}

func (handler *CredentialHandler) Delete(cmd *cobra.Command, code string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := handler.credentialService.Delete(ctx, code); err != nil {
		return err
	}
	handler.logger.Info("credential deleted", zap.String("code", code))
	cmd.Printf("credential %s deleted\n", strings.ToLower(strings.TrimSpace(code)))
	return nil
}

func (handler *CredentialHandler) List(cmd *cobra.Command) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	credentials, err := handler.credentialService.List(ctx)
	if err != nil {
		return err
	}
	if len(credentials) == 0 {
		cmd.Println("no credentials")
		return nil
	}
	printCredentials(cmd, credentials)
	return nil
}

func printCredentials(cmd *cobra.Command, credentials []*dto.CredentialResponseDto) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tDAYS\tIMAGES\tSUGGESTIONS\tBYPASS\tBACKEND\tEXPIRES\tEXPIRED")
	for _, c := range credentials {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%t\t%s\t%s\t%t\n",
			c.Code, c.ValidDays, c.ImageQuota, c.SuggestionQuota,
			c.BypassModeration, c.ImageBackend, c.ExpiresAt.Format(time.RFC3339), c.Expired)
	}
	w.Flush()
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, 30*time.Second)
}
