package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cfg "c2paview/src/configuration"
	server "c2paview/src/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "c2paview",
	Short:         "Image metadata and content credentials viewer",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the viewer HTTP server",
	Long: `Serve the viewer page and its JSON API.

Configuration is read from the environment (HTTP_*, META_*, S3_*, VIEWER_*,
LOG_LEVEL).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, inspectCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	config, err := cfg.ParseProperties()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(config.LogLevel)
	return server.RunServer(cmd.Context(), config, logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
