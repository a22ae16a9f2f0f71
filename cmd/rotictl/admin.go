// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/roti/client"
	"github.com/danielhkuo/roti/models"
)

const barWidth = 30

var errNoToken = errors.New("admin token required (use --token or ROTI_TOKEN, see 'rotictl admin login')")

func adminCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator commands",
	}

	cmd.AddCommand(adminLoginCommand(opts))
	cmd.AddCommand(adminLogoutCommand(opts))
	cmd.AddCommand(adminStatsCommand(opts))
	cmd.AddCommand(adminVotesCommand(opts))
	cmd.AddCommand(adminResetCommand(opts))
	cmd.AddCommand(adminWatchCommand(opts))

	return cmd
}

// requireToken fails early instead of letting the server answer 401
func requireToken(opts *globalOptions) error {
	if opts.token == "" {
		return errNoToken
	}
	return nil
}

func adminLoginCommand(opts *globalOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange the admin password for a token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ROTI_ADMIN_PASSWORD")
			}
			if password == "" {
				return errors.New("password required (use --password or ROTI_ADMIN_PASSWORD)")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			resp, err := opts.client().Login(ctx, password)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.Token)
			fmt.Fprintf(cmd.ErrOrStderr(), "token expires %s\n", humanize.Time(resp.ExpiresAt))
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "admin password (env ROTI_ADMIN_PASSWORD)")
	return cmd
}

func adminLogoutCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the admin token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(opts); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			if err := opts.client().Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func adminStatsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the per-rating histogram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(opts); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			stats, err := opts.client().AdminStats(ctx)
			if err != nil {
				return err
			}

			printHistogram(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

func printHistogram(w io.Writer, stats models.AdminStats) {
	for r := models.MaxRating; r >= models.MinRating; r-- {
		n := stats.Count(r)
		width := 0
		if stats.Total > 0 {
			width = n * barWidth / stats.Total
		}
		fmt.Fprintf(w, "%d | %-*s %s\n", r, barWidth, strings.Repeat("#", width), humanize.Comma(int64(n)))
	}
	fmt.Fprintf(w, "%s votes, average %.2f\n", humanize.Comma(int64(stats.Total)), stats.Average)
}

func adminVotesCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "votes",
		Short: "List raw votes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(opts); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			list, err := opts.client().Votes(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, v := range list {
				fmt.Fprintf(out, "%d\t%d\t%s\t%s\n", v.ID, v.Rating, humanize.Time(v.CreatedAt), v.SessionID)
			}
			fmt.Fprintf(out, "%s votes\n", humanize.Comma(int64(len(list))))
			return nil
		},
	}
}

func adminResetCommand(opts *globalOptions) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every vote and session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("refusing to delete all votes without --yes")
			}
			if err := requireToken(opts); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			resp, err := opts.client().ResetVotes(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s votes and %s sessions\n",
				humanize.Comma(resp.DeletedVotes), humanize.Comma(resp.DeletedSessions))
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm the reset")
	return cmd
}

func adminWatchCommand(opts *globalOptions) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the histogram until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(opts); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			view := client.NewAdminView(opts.client())
			out := cmd.OutOrStdout()

			// Set when the poller gives up on a rejected token
			rejected := make(chan error, 1)

			view.StartPolling(ctx, interval, func(s client.Snapshot) {
				if s.Err != nil {
					if client.IsUnauthorized(s.Err) {
						select {
						case rejected <- s.Err:
						default:
						}
					}
					return
				}
				fmt.Fprintln(out, view.Summary(time.Now()))
			})
			defer view.Stop()

			select {
			case <-ctx.Done():
				return nil
			case err := <-rejected:
				return err
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", client.DefaultPollInterval, "refresh interval")
	return cmd
}
