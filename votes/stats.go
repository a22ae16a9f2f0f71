// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"context"
	"fmt"

	"github.com/danielhkuo/roti/models"
)

// Histogram holds vote counts indexed by rating; index 0 is unused
type Histogram [models.MaxRating + 1]int

// Total returns the number of votes
func (h Histogram) Total() int {
	total := 0
	for r := models.MinRating; r <= models.MaxRating; r++ {
		total += h[r]
	}
	return total
}

// Average returns the mean rating, or 0 with no votes
func (h Histogram) Average() float64 {
	total := h.Total()
	if total == 0 {
		return 0
	}
	sum := 0
	for r := models.MinRating; r <= models.MaxRating; r++ {
		sum += r * h[r]
	}
	return float64(sum) / float64(total)
}

func (h Histogram) AdminStats() models.AdminStats {
	return models.AdminStats{
		One:     h[1],
		Two:     h[2],
		Three:   h[3],
		Four:    h[4],
		Five:    h[5],
		Total:   h.Total(),
		Average: h.Average(),
	}
}

// Histogram counts stored votes per rating. Nothing is cached; every call
// reads the votes table.
func (s *Service) Histogram(ctx context.Context) (Histogram, error) {
	var h Histogram

	rows, err := s.db.QueryContext(ctx, `
		SELECT rating, COUNT(*) FROM votes GROUP BY rating
	`)
	if err != nil {
		return h, fmt.Errorf("failed to aggregate votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return h, fmt.Errorf("failed to scan rating count: %w", err)
		}
		if rating < models.MinRating || rating > models.MaxRating {
			// schema CHECK forbids this; skip rather than index out of range
			continue
		}
		h[rating] = count
	}
	if err := rows.Err(); err != nil {
		return h, fmt.Errorf("failed to iterate rating counts: %w", err)
	}

	return h, nil
}

// PublicStats returns the total and average only
func (s *Service) PublicStats(ctx context.Context) (models.PublicStats, error) {
	h, err := s.Histogram(ctx)
	if err != nil {
		return models.PublicStats{}, err
	}
	return models.PublicStats{Total: h.Total(), Average: h.Average()}, nil
}

// AdminStats returns the full histogram with total and average
func (s *Service) AdminStats(ctx context.Context) (models.AdminStats, error) {
	h, err := s.Histogram(ctx)
	if err != nil {
		return models.AdminStats{}, err
	}
	return h.AdminStats(), nil
}
