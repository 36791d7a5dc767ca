package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-shorty/shorty/internal/database"
	"github.com/go-shorty/shorty/internal/models"
)

const (
	// statsLimit caps the top/recent link lists and the referrer breakdown.
	statsLimit = 10
	// dailyStatsWindow is the trailing period covered by the per-day counts.
	dailyStatsWindow = 7 * 24 * time.Hour
)

// browserPriority is the fixed classification order. An agent string
// containing "Chrome" counts as Chrome even when it also contains "Safari",
// which almost every Chrome agent string does. Changing the order changes
// observed stats, so it stays as is.
var browserPriority = []string{"Chrome", "Firefox", "Safari", "Edge"}

// Stats assembles the admin summary: totals and top/recent listings come
// straight from the store, the per-day, per-browser and per-referrer
// breakdowns are computed from one scan of the recorded click events.
// An empty store yields zero totals and empty breakdowns.
func (s *LinkService) Stats(ctx context.Context) (*models.Summary, error) {
	const op = "service.LinkService.Stats"

	totalURLs, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to count links: %w", op, err)
	}

	totalClicks, err := s.repo.SumClicks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to sum clicks: %w", op, err)
	}

	topURLs, err := s.repo.List(ctx, database.SortByClicks, statsLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list top links: %w", op, err)
	}

	recent, err := s.repo.List(ctx, database.SortByCreatedAt, statsLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list recent links: %w", op, err)
	}

	events, err := s.repo.ClickEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list click events: %w", op, err)
	}

	return &models.Summary{
		TotalURLs:      totalURLs,
		TotalClicks:    totalClicks,
		TopURLs:        topURLs,
		RecentActivity: recent,
		DailyStats:     dailyStats(events, time.Now()),
		BrowserStats:   browserStats(events),
		ReferrerStats:  referrerStats(events),
	}, nil
}

// classifyBrowser maps a user agent string to a browser family using
// case-insensitive substring matching in browserPriority order.
func classifyBrowser(userAgent string) string {
	agent := strings.ToLower(userAgent)
	for _, browser := range browserPriority {
		if strings.Contains(agent, strings.ToLower(browser)) {
			return browser
		}
	}

	return "Other"
}

// dailyStats buckets events from the trailing seven days by UTC calendar
// date, ascending. Days without clicks are omitted.
func dailyStats(events []models.ClickEvent, now time.Time) []models.DailyStat {
	cutoff := now.Add(-dailyStatsWindow)

	counts := make(map[string]int64)
	for _, event := range events {
		if event.Timestamp.Before(cutoff) {
			continue
		}
		counts[event.Timestamp.UTC().Format(time.DateOnly)]++
	}

	stats := make([]models.DailyStat, 0, len(counts))
	for date, clicks := range counts {
		stats = append(stats, models.DailyStat{Date: date, Clicks: clicks})
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Date < stats[j].Date
	})

	return stats
}

// browserStats counts events per browser family, most clicked first.
func browserStats(events []models.ClickEvent) []models.BrowserStat {
	counts := make(map[string]int64)
	for _, event := range events {
		counts[classifyBrowser(event.UserAgent)]++
	}

	stats := make([]models.BrowserStat, 0, len(counts))
	for browser, count := range counts {
		stats = append(stats, models.BrowserStat{Browser: browser, Count: count})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Browser < stats[j].Browser
	})

	return stats
}

// referrerStats counts events per distinct referrer, most clicked first,
// capped at statsLimit entries. Events without a referrer count as "Direct".
func referrerStats(events []models.ClickEvent) []models.ReferrerStat {
	counts := make(map[string]int64)
	for _, event := range events {
		referer := event.Referer
		if referer == "" {
			referer = models.DirectReferer
		}
		counts[referer]++
	}

	stats := make([]models.ReferrerStat, 0, len(counts))
	for referrer, count := range counts {
		stats = append(stats, models.ReferrerStat{Referrer: referrer, Count: count})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Referrer < stats[j].Referrer
	})

	if len(stats) > statsLimit {
		stats = stats[:statsLimit]
	}

	return stats
}
