package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/placeholder-mcp/internal/config"
	"github.com/ironsheep/placeholder-mcp/internal/server"
)

// newRootCmd builds the command tree. Without a sub-command the binary runs
// the MCP server on stdin/stdout.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "placeholder-mcp",
		Short: "Low-quality image placeholders over MCP, HTTP or the command line",
		Long: `placeholder-mcp - tiny blurred JPEG placeholders (LQIP) for images.

Run without arguments to serve MCP over stdin/stdout; configure it in your
MCP client (e.g., Claude Desktop). Use "serve" for the HTTP API and
"generate" for one-off placeholders.

Configuration is read from defaults, an optional YAML file (--config or
` + config.EnvConfigFile + `), an optional .env file and ` + config.EnvPrefix + `*
environment variables, in that order.`,
		Version:       Version,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          runMCP,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML config file")
	flags.String("env-file", ".env", "dotenv file to load if present")
	flags.String("log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(newServeCmd(), newGenerateCmd(), newVersionCmd())
	return rootCmd
}

func runMCP(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	a.logger.Debug("starting mcp server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	srv := server.New(a.svc, server.WithLogger(a.logger), server.WithVersion(Version))
	return srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}
