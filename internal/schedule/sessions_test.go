package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsOnDate(t *testing.T) {
	sessions := []Session{
		{TaskID: "a", Date: day(0), Duration: 60},
		{TaskID: "b", Date: day(1), Duration: 30},
		{TaskID: "c", Date: day(0), Duration: 15},
	}

	got := SessionsOnDate(sessions, day(0))
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].TaskID)
	assert.Equal(t, "c", got[1].TaskID)

	assert.Empty(t, SessionsOnDate(sessions, day(5)))

	// time of day on the probe date is irrelevant
	noon := day(1).Add(12 * time.Hour)
	assert.Len(t, SessionsOnDate(sessions, noon), 1)
}

func TestMarkCompletedRecomputesRemainingPlan(t *testing.T) {
	s := testScheduler()

	task := Task{
		ID:            "a",
		Title:         "Essay",
		DueDate:       day(4).Format(time.RFC3339),
		Priority:      "high",
		EstimatedTime: 4.0,
	}

	sessions, _ := s.ScheduleAll(context.Background(), []Task{task}, monday)
	require.Len(t, sessions, 4) // 60 minutes Monday through Thursday

	// Complete Wednesday's block on Wednesday. The task's whole plan is
	// rebuilt from Wednesday, not patched: 4 hours over the two days left
	// before the Friday due date.
	wednesday := day(2)
	plan := s.MarkCompleted(context.Background(), "a", wednesday, sessions, wednesday)

	require.Len(t, plan, 2)
	assert.Equal(t, wednesday, plan[0].Date)
	assert.Equal(t, 120, plan[0].Duration)
	assert.Equal(t, day(3), plan[1].Date)
	assert.Equal(t, 120, plan[1].Duration)
	for _, sess := range plan {
		assert.Equal(t, "a", sess.TaskID)
		assert.False(t, sess.Completed)
	}
}

func TestMarkCompletedLastSession(t *testing.T) {
	s := testScheduler()

	sessions, _ := s.ScheduleAll(context.Background(), []Task{{
		ID:            "b",
		Title:         "Quiz prep",
		DueDate:       day(0).Format(time.RFC3339),
		Priority:      3.0,
		EstimatedTime: 1.0,
	}}, monday)
	require.Len(t, sessions, 1)

	// Nothing incomplete remains, so the flagged list comes back as is.
	plan := s.MarkCompleted(context.Background(), "b", day(0), sessions, day(0))
	require.Len(t, plan, 1)
	assert.True(t, plan[0].Completed)
}

func TestMarkCompletedRecomputesOncePerTask(t *testing.T) {
	s := testScheduler()

	tasks := []Task{
		{ID: "a", Title: "a", DueDate: day(4).Format(time.RFC3339), Priority: "high", EstimatedTime: 4.0},
		{ID: "b", Title: "b", DueDate: day(4).Format(time.RFC3339), Priority: "low", EstimatedTime: 2.0},
	}
	sessions, _ := s.ScheduleAll(context.Background(), tasks, monday)

	tuesday := day(1)
	plan := s.MarkCompleted(context.Background(), "b", tuesday, sessions, tuesday)

	// Task a still has several incomplete sessions, but its source task is
	// scheduled exactly once in the recompute: totals match single-task runs.
	totals := map[string]int{}
	for _, sess := range plan {
		totals[sess.TaskID] += sess.Duration
	}
	assert.Equal(t, 240, totals["a"])
	assert.Equal(t, 120, totals["b"])
}

func TestMarkCompletedIgnoresUnknownSession(t *testing.T) {
	s := testScheduler()

	task := Task{ID: "a", Title: "a", DueDate: day(4).Format(time.RFC3339), Priority: 3.0, EstimatedTime: 2.0}
	sessions, _ := s.ScheduleAll(context.Background(), []Task{task}, monday)
	require.NotEmpty(t, sessions)

	// No session matches, so nothing is flagged and the recompute covers the
	// same single task.
	plan := s.MarkCompleted(context.Background(), "zzz", day(0), sessions, monday)
	totals := 0
	for _, sess := range plan {
		assert.False(t, sess.Completed)
		totals += sess.Duration
	}
	assert.Equal(t, 120, totals)
}
