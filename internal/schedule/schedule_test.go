package schedule

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 is a Monday.
var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testScheduler(opts ...Option) *Scheduler {
	opts = append([]Option{WithLogger(log.New(io.Discard, "", 0))}, opts...)
	return New(opts...)
}

func day(offset int) time.Time {
	return monday.AddDate(0, 0, offset)
}

func TestEnergyLevels(t *testing.T) {
	p := DefaultPolicy()

	testCases := []struct {
		date     time.Time
		expected float64
	}{
		{day(0), 1.0},       // Monday
		{day(1), 1.0},       // Tuesday
		{day(2), 0.9},       // Wednesday
		{day(3), 0.9},       // Thursday
		{day(4), 0.8},       // Friday
		{day(5), 0.7 * 0.6}, // Saturday, weekend reduction stacks
		{day(6), 0.6 * 0.6}, // Sunday
	}

	for _, tc := range testCases {
		assert.InDelta(t, tc.expected, p.energyLevel(tc.date), 1e-9, tc.date.Weekday().String())
	}
}

func TestEvenDistribution(t *testing.T) {
	s := testScheduler()

	// 4 hours due in 4 days: one 60-minute session per day Monday-Thursday.
	sessions, skipped := s.ScheduleAll(context.Background(), []Task{{
		ID:            "a",
		Title:         "Essay",
		DueDate:       day(4).Format(time.RFC3339),
		Priority:      "high",
		EstimatedTime: 4.0,
	}}, monday)

	assert.Empty(t, skipped)
	require.Len(t, sessions, 4)
	for i, sess := range sessions {
		assert.Equal(t, "a", sess.TaskID)
		assert.Equal(t, 60, sess.Duration)
		assert.Equal(t, day(i), sess.Date)
		assert.False(t, sess.Completed)
	}
}

func TestConservation(t *testing.T) {
	// With no competition the scheduled total equals the effort rounded to
	// the 15-minute grid.
	testCases := []struct {
		name    string
		hours   float64
		daysOut int
		total   int
	}{
		{name: "exact grid", hours: 4, daysOut: 4, total: 240},
		{name: "rounds to grid", hours: 1.4, daysOut: 3, total: 90},
		{name: "small task floors to minimum", hours: 0.1, daysOut: 2, total: 15},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := testScheduler()
			sessions, _ := s.ScheduleAll(context.Background(), []Task{{
				ID:            "a",
				Title:         "Reading",
				DueDate:       day(tc.daysOut).Format(time.RFC3339),
				Priority:      3.0,
				EstimatedTime: tc.hours,
			}}, monday)

			total := 0
			for _, sess := range sessions {
				total += sess.Duration
			}
			assert.Equal(t, tc.total, total)
		})
	}
}

func TestQuantization(t *testing.T) {
	s := testScheduler()

	tasks := []Task{
		{ID: "a", Title: "a", DueDate: day(3).Format(time.RFC3339), Priority: 2.0, EstimatedTime: 1.3},
		{ID: "b", Title: "b", DueDate: day(5).Format(time.RFC3339), Priority: "high", EstimatedTime: "100 minutes"},
		{ID: "c", Title: "c", DueDate: day(1).Format(time.RFC3339), Priority: "low", EstimatedTime: 0.4},
	}

	sessions, _ := s.ScheduleAll(context.Background(), tasks, monday)
	require.NotEmpty(t, sessions)
	for _, sess := range sessions {
		assert.GreaterOrEqual(t, sess.Duration, MinWorkTime)
		assert.Zero(t, sess.Duration%TimeIncrement, "duration %d not on the grid", sess.Duration)
	}
}

func TestDueSoonSingleSession(t *testing.T) {
	s := testScheduler()

	for _, offset := range []int{0, 1} {
		sessions, _ := s.ScheduleAll(context.Background(), []Task{{
			ID:            "a",
			Title:         "Quiz prep",
			DueDate:       day(offset).Format(time.RFC3339),
			Priority:      "high",
			EstimatedTime: 8.0,
		}}, monday)

		require.Len(t, sessions, 1, "due in %d days", offset)
		assert.Equal(t, day(0), sessions[0].Date)
	}
}

func TestMinimumSessionFloor(t *testing.T) {
	s := testScheduler()

	// 0.2 hours is 12 minutes; a task never gets less than one 15-minute block.
	sessions, _ := s.ScheduleAll(context.Background(), []Task{{
		ID:            "b",
		Title:         "Flashcards",
		DueDate:       day(0).Format(time.RFC3339),
		Priority:      3.0,
		EstimatedTime: 0.2,
	}}, monday)

	require.Len(t, sessions, 1)
	assert.Equal(t, 15, sessions[0].Duration)
}

func TestDueSoonContention(t *testing.T) {
	s := testScheduler()
	tuesday := day(1)
	tomorrow := day(2).Format(time.RFC3339)

	// Both due tomorrow, 5 hours each, Tuesday cap is 360. The higher-urgency
	// task claims 300 minutes first; the other gets the 60 left over, and its
	// remainder stays unscheduled because the due-soon path never spills.
	sessions, _ := s.ScheduleAll(context.Background(), []Task{
		{ID: "lo", Title: "lo", DueDate: tomorrow, Priority: "low", EstimatedTime: 5.0},
		{ID: "hi", Title: "hi", DueDate: tomorrow, Priority: "high", EstimatedTime: 5.0},
	}, tuesday)

	require.Len(t, sessions, 2)
	assert.Equal(t, "hi", sessions[0].TaskID)
	assert.Equal(t, 300, sessions[0].Duration)
	assert.Equal(t, "lo", sessions[1].TaskID)
	assert.Equal(t, 60, sessions[1].Duration)
}

func TestCapacityBound(t *testing.T) {
	s := testScheduler()
	p := DefaultPolicy()

	var tasks []Task
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		tasks = append(tasks, Task{
			ID:            id,
			Title:         id,
			DueDate:       day(4).Format(time.RFC3339),
			Priority:      3.0,
			EstimatedTime: 5.0,
		})
	}

	sessions, _ := s.ScheduleAll(context.Background(), tasks, monday)
	require.NotEmpty(t, sessions)

	perDay := map[string]int{}
	for _, sess := range sessions {
		perDay[dateKey(sess.Date)] += sess.Duration
	}
	for key, total := range perDay {
		date, err := time.Parse("2006-01-02", key)
		require.NoError(t, err)
		limit := int(float64(p.MaxDailyMinutes) * p.energyLevel(date))
		assert.LessOrEqual(t, total, limit, "overcommitted on %s", key)
	}
}

func TestRejectionIsolation(t *testing.T) {
	s := testScheduler()

	tasks := []Task{
		{ID: "ok1", Title: "ok1", DueDate: day(2).Format(time.RFC3339), Priority: 3.0, EstimatedTime: 1.0},
		{ID: "bad", Title: "bad", Priority: 3.0, EstimatedTime: 1.0}, // no due date
		{ID: "ok2", Title: "ok2", DueDate: day(3).Format(time.RFC3339), Priority: 3.0, EstimatedTime: 1.0},
	}

	sessions, skipped := s.ScheduleAll(context.Background(), tasks, monday)

	require.Len(t, skipped, 1)
	assert.Equal(t, "bad", skipped[0].Task.ID)

	sources := map[string]bool{}
	for _, sess := range sessions {
		sources[sess.TaskID] = true
	}
	assert.Equal(t, map[string]bool{"ok1": true, "ok2": true}, sources)
}

func TestEmptyBatch(t *testing.T) {
	s := testScheduler()

	sessions, skipped := s.ScheduleAll(context.Background(), nil, monday)
	assert.Empty(t, sessions)
	assert.Empty(t, skipped)

	sessions, skipped = s.ScheduleAll(context.Background(), []Task{{Title: "nope"}}, monday)
	assert.Empty(t, sessions)
	assert.Len(t, skipped, 1)
}

func TestPastDueTaskSchedulesNothing(t *testing.T) {
	s := testScheduler()

	sessions, skipped := s.ScheduleAll(context.Background(), []Task{{
		ID:            "late",
		Title:         "late",
		DueDate:       day(-3).Format(time.RFC3339),
		Priority:      3.0,
		EstimatedTime: 2.0,
	}}, monday)

	assert.Empty(t, skipped) // past due is not a validation failure
	assert.Empty(t, sessions)
}

func TestDeterminism(t *testing.T) {
	tasks := []Task{
		{ID: "a", Title: "a", DueDate: day(4).Format(time.RFC3339), Priority: "high", EstimatedTime: 4.0,
			ClassID: "c1", Class: &Class{Name: "Math", Difficulty: 8, TeacherStrictness: 6}},
		{ID: "b", Title: "b", DueDate: day(4).Format(time.RFC3339), Priority: "low", EstimatedTime: "3 hours"},
		{ID: "c", Title: "c", DueDate: day(1).Format(time.RFC3339), Priority: 2.0, EstimatedTime: 1.0},
	}

	first, _ := testScheduler().ScheduleAll(context.Background(), tasks, monday)
	second, _ := testScheduler().ScheduleAll(context.Background(), tasks, monday)
	assert.Equal(t, first, second)
}

func TestUrgencyScore(t *testing.T) {
	testCases := []struct {
		name     string
		task     Task
		expected float64
	}{
		{
			name:     "priority only",
			task:     Task{Priority: 5.0},
			expected: 0.5,
		},
		{
			name: "class factors add up",
			task: Task{Priority: 3.0,
				Class: &Class{Difficulty: 4, TeacherStrictness: 2}},
			expected: 0.3 + 0.4 + 0.2,
		},
		{
			name: "clamped to 1",
			task: Task{Priority: 5.0,
				Class: &Class{Difficulty: 10, TeacherStrictness: 10}},
			expected: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, urgencyScore(tc.task), 1e-9)
		})
	}
}

func TestPrioritizeOrdersByDueDateThenUrgency(t *testing.T) {
	due := day(5).Format(time.RFC3339)
	tasks := []Task{
		{ID: "later", Title: "later", DueDate: day(9).Format(time.RFC3339), Priority: 5.0, EstimatedTime: 1.0},
		{ID: "calm", Title: "calm", DueDate: due, Priority: 1.0, EstimatedTime: 1.0},
		{ID: "urgent", Title: "urgent", DueDate: due, Priority: 5.0, EstimatedTime: 1.0},
	}

	sorted := prioritize(tasks)

	assert.Equal(t, "urgent", sorted[0].ID)
	assert.Equal(t, "calm", sorted[1].ID)
	assert.Equal(t, "later", sorted[2].ID)
}

func TestPrioritizeIsStable(t *testing.T) {
	due := day(5).Format(time.RFC3339)
	tasks := []Task{
		{ID: "first", Title: "first", DueDate: due, Priority: 3.0, EstimatedTime: 1.0},
		{ID: "second", Title: "second", DueDate: due, Priority: 3.0, EstimatedTime: 1.0},
	}

	sorted := prioritize(tasks)
	assert.Equal(t, "first", sorted[0].ID)
	assert.Equal(t, "second", sorted[1].ID)
}
