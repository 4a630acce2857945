package cmd

import (
	"context"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/precise-imaging/radflow-mcp/internal/mcp"
	"github.com/precise-imaging/radflow-mcp/internal/radflow"
	"github.com/precise-imaging/radflow-mcp/internal/web"
	"github.com/precise-imaging/radflow-mcp/library/log"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `serve the RadFlow MCP tools over HTTP`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		rfSettings := radflow.LoadSettingsFromConfig()

		client, err := radflow.NewClient(log.Logger)
		if err != nil {
			log.Logger.Panic("new radflow client", zap.Error(err))
		}

		tokens, err := radflow.NewTokenCache(client,
			rfSettings.PartnerTokenURL, rfSettings.PartnerAPIKey, log.Logger)
		if err != nil {
			log.Logger.Panic("new token cache", zap.Error(err))
		}

		srv, err := mcp.NewServer(client, tokens, rfSettings,
			mcp.LoadToolsSettingsFromConfig(), log.Logger)
		if err != nil {
			log.Logger.Panic("new mcp server", zap.Error(err))
		}

		web.RunServer(gconfig.Shared.GetString("listen"), srv.Handler())
	},
}

func init() {
	rootCMD.AddCommand(apiCMD)
}
