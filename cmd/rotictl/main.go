// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// rotictl votes and reads results from a ROTI server.
package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/roti/client"
)

const (
	programName   = "rotictl"
	defaultServer = "http://localhost:3001"
)

type globalOptions struct {
	server  string
	token   string
	debug   bool
	timeout time.Duration
}

func (o *globalOptions) client() *client.Client {
	return client.New(o.server, client.WithToken(o.token))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Vote and read results from a ROTI server",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Configure logger
			logLevel := slog.LevelWarn
			if opts.debug {
				logLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: logLevel,
			})))
		},
	}

	// Global flags
	rootCmd.PersistentFlags().
		StringVarP(&opts.server, "server", "s", envOr("ROTI_URL", defaultServer), "server base URL (env ROTI_URL)")
	rootCmd.PersistentFlags().
		StringVar(&opts.token, "token", os.Getenv("ROTI_TOKEN"), "admin bearer token (env ROTI_TOKEN)")
	rootCmd.PersistentFlags().
		BoolVarP(&opts.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall timeout for one command")

	// Subcommands
	rootCmd.AddCommand(voteCommand(opts))
	rootCmd.AddCommand(statusCommand(opts))
	rootCmd.AddCommand(statsCommand(opts))
	rootCmd.AddCommand(adminCommand(opts))

	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}
