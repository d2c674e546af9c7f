// Package stats derives read-only daily and weekly views from diary entries.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/vbonduro/nutriscan/internal/domain"
)

// DailyGoalKcal is the fixed daily calorie goal.
const DailyGoalKcal = 2200

// SeriesDays is the length of the trailing calorie series.
const SeriesDays = 7

// shortWeekday holds pl-PL short weekday names indexed by time.Weekday.
var shortWeekday = [...]string{"niedz.", "pon.", "wt.", "śr.", "czw.", "pt.", "sob."}

// FormatDate renders t as a diary calendar day in t's location.
func FormatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// DailyTotal sums the totals of every entry recorded on date.
func DailyTotal(entries []domain.DiaryEntry, date string) domain.Totals {
	var t domain.Totals
	for _, e := range entries {
		if e.Date != date {
			continue
		}
		t.Calories += e.TotalCalories
		t.Protein += e.TotalProtein
		t.Carbs += e.TotalCarbs
		t.Fats += e.TotalFats
	}
	return t
}

// Trailing7Days returns one point per calendar day for the seven days ending
// at today, oldest first.
func Trailing7Days(entries []domain.DiaryEntry, today time.Time) []domain.DayPoint {
	byDate := make(map[string]float64, len(entries))
	for _, e := range entries {
		byDate[e.Date] += e.TotalCalories
	}

	points := make([]domain.DayPoint, 0, SeriesDays)
	for i := SeriesDays - 1; i >= 0; i-- {
		// AddDate keeps wall-clock time across DST changes.
		day := today.AddDate(0, 0, -i)
		date := FormatDate(day)
		points = append(points, domain.DayPoint{
			Date:     date,
			Label:    shortWeekday[day.Weekday()],
			Calories: byDate[date],
		})
	}
	return points
}

// ProgressPercent is consumed as a share of goal, rounded and capped at 100.
func ProgressPercent(consumed, goal float64) int {
	if goal <= 0 {
		return 0
	}
	p := math.Round(consumed / goal * 100)
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return int(p)
}

// GroupByDay buckets entries per date, newest date first. Entries keep their
// insertion order within a day.
func GroupByDay(entries []domain.DiaryEntry) []domain.DayGroup {
	idx := make(map[string]int)
	var groups []domain.DayGroup
	for _, e := range entries {
		i, ok := idx[e.Date]
		if !ok {
			i = len(groups)
			idx[e.Date] = i
			groups = append(groups, domain.DayGroup{Date: e.Date})
		}
		groups[i].Entries = append(groups[i].Entries, e.Clone())
	}
	for i := range groups {
		groups[i].Totals = DailyTotal(groups[i].Entries, groups[i].Date)
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].Date > groups[b].Date })
	return groups
}
