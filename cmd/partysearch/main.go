package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	clientcmd "github.com/rzbill/partysearch/internal/cmd/client"
	serverrun "github.com/rzbill/partysearch/internal/cmd/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "partysearch",
		Short:         "Party search server and client",
		Long:          "partysearch runs the party search service and offers client commands to submit and watch searches.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the party search server (HTTP and gRPC)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := serverrun.Options{}
			opts.ConfigPath, _ = cmd.Flags().GetString("config")
			opts.EnvFiles, _ = cmd.Flags().GetStringSlice("env-file")
			opts.DataDir, _ = cmd.Flags().GetString("data-dir")
			opts.HTTPAddr, _ = cmd.Flags().GetString("http")
			opts.GRPCAddr, _ = cmd.Flags().GetString("grpc")
			opts.Fsync, _ = cmd.Flags().GetString("fsync")
			opts.LogLevel, _ = cmd.Flags().GetString("log-level")
			opts.LogFormat, _ = cmd.Flags().GetString("log-format")
			if err := serverrun.Run(cmd.Context(), opts); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	serverStartCmd.Flags().StringP("config", "c", os.Getenv("PARTYSEARCH_CONFIG"), "Config file (JSON or YAML)")
	serverStartCmd.Flags().StringSlice("env-file", nil, ".env files to load (default ./.env when present)")
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("http", "", "HTTP listen address (default :8080)")
	serverStartCmd.Flags().String("grpc", "", "gRPC listen address (default :9090)")
	serverStartCmd.Flags().String("fsync", "", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().String("log-level", "", "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", "", "Log format: text|json")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	clientcmd.AddCommands(rootCmd, apiURL)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		cancel()
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("PARTYSEARCH_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
