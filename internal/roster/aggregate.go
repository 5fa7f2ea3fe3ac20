package roster

import (
	"sort"
	"time"

	"github.com/noah-isme/teacher-admin/internal/models"
)

// Bucket is one labelled count of a summary.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatusSummary counts records per status, always Active then Inactive.
func StatusSummary(records []models.Teacher) []Bucket {
	out := make([]Bucket, len(models.Statuses))
	for i, s := range models.Statuses {
		out[i].Label = string(s)
	}
	for _, t := range records {
		for i, s := range models.Statuses {
			if t.Status == s {
				out[i].Count++
				break
			}
		}
	}
	return out
}

// LocationSummary counts records per location present, in first-seen order.
func LocationSummary(records []models.Teacher) []Bucket {
	index := make(map[string]int)
	out := make([]Bucket, 0)
	for _, t := range records {
		i, ok := index[t.Location]
		if !ok {
			i = len(out)
			index[t.Location] = i
			out = append(out, Bucket{Label: t.Location})
		}
		out[i].Count++
	}
	return out
}

// MonthKey is the YYYY-MM bucket of ts in loc.
func MonthKey(ts time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return ts.In(loc).Format("2006-01")
}

// MonthlyTrend counts records per creation month, sorted by key. Records
// without a creation time are left out.
func MonthlyTrend(records []models.Teacher, loc *time.Location) []Bucket {
	counts := make(map[string]int)
	for _, t := range records {
		if !t.HasCreatedAt() {
			continue
		}
		counts[MonthKey(t.CreatedAt, loc)]++
	}
	out := make([]Bucket, 0, len(counts))
	for k, v := range counts {
		out = append(out, Bucket{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// GrowthRate is the percentage change from last month to this month, 100 when
// last month had nothing to compare against.
func GrowthRate(thisMonth, lastMonth int) float64 {
	if lastMonth == 0 {
		return 100
	}
	return float64(thisMonth-lastMonth) / float64(lastMonth) * 100
}

// Stats are the dashboard counters.
type Stats struct {
	Total           int     `json:"total"`
	Active          int     `json:"active"`
	Inactive        int     `json:"inactive"`
	Locations       int     `json:"unique_locations"`
	ThisWeek        int     `json:"this_week"`
	ThisMonth       int     `json:"this_month"`
	LastMonth       int     `json:"last_month"`
	GrowthRate      float64 `json:"growth_rate"`
	ActivePercent   float64 `json:"active_percent"`
	InactivePercent float64 `json:"inactive_percent"`
}

// WeekStart is Sunday 00:00 of the week containing now, in now's location.
func WeekStart(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// DeriveStats computes every counter in one pass. Month comparisons use year
// and month in now's location.
func DeriveStats(records []models.Teacher, now time.Time) Stats {
	loc := now.Location()
	weekStart := WeekStart(now)
	thisY, thisM, _ := now.Date()
	lastY, lastM, _ := time.Date(thisY, thisM, 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0).Date()

	stats := Stats{Total: len(records)}
	locations := make(map[string]struct{})
	for _, t := range records {
		switch t.Status {
		case models.StatusActive:
			stats.Active++
		case models.StatusInactive:
			stats.Inactive++
		}
		locations[t.Location] = struct{}{}

		if !t.HasCreatedAt() {
			continue
		}
		created := t.CreatedAt.In(loc)
		if !created.Before(weekStart) {
			stats.ThisWeek++
		}
		y, m, _ := created.Date()
		switch {
		case y == thisY && m == thisM:
			stats.ThisMonth++
		case y == lastY && m == lastM:
			stats.LastMonth++
		}
	}
	stats.Locations = len(locations)
	stats.GrowthRate = GrowthRate(stats.ThisMonth, stats.LastMonth)
	stats.ActivePercent = percent(stats.Active, stats.Total)
	stats.InactivePercent = percent(stats.Inactive, stats.Total)
	return stats
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
