// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/roti/client"
	"github.com/danielhkuo/roti/models"
)

func voteCommand(opts *globalOptions) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "vote <rating>",
		Short: "Submit a 1-5 rating for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("rating must be an integer: %w", err)
			}
			if sessionID == "" {
				sessionID = client.NewSessionID()
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			view := client.NewVoteView(opts.client(), sessionID)
			if err := view.Refresh(ctx); err != nil {
				return err
			}

			voteID, err := view.Vote(ctx, rating)
			if errors.Is(err, models.ErrAlreadyVoted) {
				_, selected := view.State()
				if selected != nil {
					return fmt.Errorf("session %s already voted %d", sessionID, *selected)
				}
				return fmt.Errorf("session %s already voted", sessionID)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Vote %d recorded for %s\n", voteID, sessionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default: a new one)")
	return cmd
}

func statusCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <session>",
		Short: "Show whether a session has voted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			status, err := opts.client().SessionStatus(ctx, args[0])
			if err != nil {
				return err
			}

			if !status.HasVoted || status.SelectedRating == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s has not voted\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s voted %d\n", args[0], *status.SelectedRating)
			return nil
		},
	}
}

func statsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the public vote count and average",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			stats, err := opts.client().PublicStats(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s votes, average %.2f\n",
				humanize.Comma(int64(stats.Total)), stats.Average)
			return nil
		},
	}
}
