package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardSummary(t *testing.T) {
	d, _ := newTestDiary(t)
	ctx := context.Background()
	require.NoError(t, d.Load(ctx))
	require.NoError(t, d.Add(ctx, diaryEntry("a", "2026-10-19", 800)))
	require.NoError(t, d.Add(ctx, diaryEntry("b", "2026-10-19", 300)))
	require.NoError(t, d.Add(ctx, diaryEntry("c", "2026-10-15", 1500)))

	today := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	s := NewDashboard(d).Summary(today)

	assert.Equal(t, "2026-10-19", s.Date)
	assert.Equal(t, 1100.0, s.Today.Calories)
	assert.Equal(t, 2200.0, s.GoalKcal)
	assert.Equal(t, 50, s.Progress)
	assert.False(t, s.Loading)

	require.Len(t, s.Week, 7)
	assert.Equal(t, "2026-10-19", s.Week[6].Date)
	assert.Equal(t, 1100.0, s.Week[6].Calories)
	assert.Equal(t, 1500.0, s.Week[2].Calories)

	require.Len(t, s.Days, 2)
	assert.Equal(t, "2026-10-19", s.Days[0].Date)
	assert.Len(t, s.Days[0].Entries, 2)
}

func TestDashboardSummary_Empty(t *testing.T) {
	d, _ := newTestDiary(t)

	s := NewDashboard(d).Summary(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC))

	assert.True(t, s.Loading)
	assert.Zero(t, s.Progress)
	assert.Len(t, s.Week, 7)
	assert.NotNil(t, s.Days)
	assert.Empty(t, s.Days)
}
