// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/roti/models"
)

// DefaultPollInterval is how often AdminView refreshes while polling
const DefaultPollInterval = 5 * time.Second

// VoteView holds the voting screen state for one session
type VoteView struct {
	client    *Client
	sessionID string

	mu       sync.Mutex
	hasVoted bool
	selected *int
}

func NewVoteView(c *Client, sessionID string) *VoteView {
	return &VoteView{client: c, sessionID: sessionID}
}

func (v *VoteView) SessionID() string {
	return v.sessionID
}

// State returns whether the session has voted and with which rating
func (v *VoteView) State() (bool, *int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hasVoted, v.selected
}

// Refresh reloads the session status. On error the previous state is kept.
func (v *VoteView) Refresh(ctx context.Context) error {
	status, err := v.client.SessionStatus(ctx, v.sessionID)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.hasVoted = status.HasVoted
	v.selected = status.SelectedRating
	v.mu.Unlock()
	return nil
}

// Vote submits rating once. A session known to have voted, locally or by
// the server, gets models.ErrAlreadyVoted.
func (v *VoteView) Vote(ctx context.Context, rating int) (int64, error) {
	if voted, _ := v.State(); voted {
		return 0, models.ErrAlreadyVoted
	}

	resp, err := v.client.SubmitVote(ctx, rating, v.sessionID)
	if IsAlreadyVoted(err) {
		// Another tab or device won; show what it recorded
		if rerr := v.Refresh(ctx); rerr != nil {
			slog.Warn("failed to refresh session after rejected vote", "error", rerr)
		}
		return 0, models.ErrAlreadyVoted
	}
	if err != nil {
		return 0, err
	}

	v.mu.Lock()
	v.hasVoted = true
	v.selected = &rating
	v.mu.Unlock()

	return resp.VoteID, nil
}

// Snapshot is one refresh of the admin dashboard
type Snapshot struct {
	Stats     models.AdminStats
	Votes     []models.Vote
	UpdatedAt time.Time
	Err       error
}

// AdminView holds the admin dashboard state and owns its polling task
type AdminView struct {
	client *Client
	now    func() time.Time

	mu   sync.RWMutex
	snap Snapshot

	pollMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewAdminView(c *Client) *AdminView {
	return &AdminView{client: c, now: time.Now}
}

func (a *AdminView) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap
}

// Refresh loads the histogram and raw votes. A failure is recorded in the
// snapshot and the previous data is kept.
func (a *AdminView) Refresh(ctx context.Context) error {
	stats, err := a.client.AdminStats(ctx)
	var list []models.Vote
	if err == nil {
		list, err = a.client.Votes(ctx)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.snap.Err = err
	if err != nil {
		return err
	}
	a.snap.Stats = stats
	a.snap.Votes = list
	a.snap.UpdatedAt = a.now()
	return nil
}

// StartPolling refreshes now and then every interval until ctx is cancelled,
// Stop is called or the token is rejected. onUpdate, if set, runs after each
// refresh on the polling goroutine. Starting again replaces the running task.
func (a *AdminView) StartPolling(ctx context.Context, interval time.Duration, onUpdate func(Snapshot)) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	a.Stop()

	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	a.pollMu.Lock()
	a.cancel = cancel
	a.done = done
	a.pollMu.Unlock()

	go a.poll(pollCtx, interval, onUpdate, done)
}

// Stop cancels the polling task and waits for it to exit
func (a *AdminView) Stop() {
	a.pollMu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.pollMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (a *AdminView) poll(ctx context.Context, interval time.Duration, onUpdate func(Snapshot), done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		err := a.Refresh(ctx)
		if ctx.Err() != nil {
			return
		}
		if onUpdate != nil {
			onUpdate(a.Snapshot())
		}
		if IsUnauthorized(err) {
			slog.Warn("admin token rejected, polling stopped")
			return
		}
		if err != nil {
			slog.Warn("failed to refresh admin stats", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Summary renders the snapshot as one line, relative to now
func (a *AdminView) Summary(now time.Time) string {
	snap := a.Snapshot()
	if snap.UpdatedAt.IsZero() {
		return "no data yet"
	}
	return fmt.Sprintf("%s votes, average %.2f, updated %s",
		humanize.Comma(int64(snap.Stats.Total)),
		snap.Stats.Average,
		humanize.RelTime(snap.UpdatedAt, now, "ago", "from now"),
	)
}
