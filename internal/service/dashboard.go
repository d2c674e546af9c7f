package service

import (
	"time"

	"github.com/vbonduro/nutriscan/internal/domain"
	"github.com/vbonduro/nutriscan/internal/stats"
)

// Summary is everything the start screen and diary screen show.
type Summary struct {
	Date     string            `json:"date"`
	Today    domain.Totals     `json:"today"`
	GoalKcal float64           `json:"goalKcal"`
	Progress int               `json:"progress"`
	Week     []domain.DayPoint `json:"week"`
	Days     []domain.DayGroup `json:"days"`
	Loading  bool              `json:"loading"`
}

// Dashboard derives Summary from the diary's current entries.
type Dashboard struct {
	diary *Diary
	goal  float64
}

func NewDashboard(diary *Diary) *Dashboard {
	return &Dashboard{diary: diary, goal: stats.DailyGoalKcal}
}

// Summary computes the view for the calendar day of today in today's location.
func (d *Dashboard) Summary(today time.Time) Summary {
	entries := d.diary.Entries()
	date := stats.FormatDate(today)
	totals := stats.DailyTotal(entries, date)

	days := stats.GroupByDay(entries)
	if days == nil {
		days = []domain.DayGroup{}
	}

	return Summary{
		Date:     date,
		Today:    totals,
		GoalKcal: d.goal,
		Progress: stats.ProgressPercent(totals.Calories, d.goal),
		Week:     stats.Trailing7Days(entries, today),
		Days:     days,
		Loading:  d.diary.Loading(),
	}
}
