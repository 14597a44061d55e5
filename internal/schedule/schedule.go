// Package schedule is the workload distribution engine: it turns a batch of
// tasks (due date, estimated effort, priority, optional class context) into a
// day-by-day plan of 15-minute-quantized work sessions, bounded by a per-day
// capacity that follows a weekday energy table.
//
// The engine is pure computation: no I/O, no clock reads, no global state.
// Every run gets its own capacity tracker, so concurrent runs for different
// users never interfere, and the same inputs with the same "today" always
// produce the same plan.
package schedule

import (
	"context"
	"log"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "studyplan/schedule"

type Scheduler struct {
	policy Policy
	logger *log.Logger
}

type Option func(*Scheduler)

func WithPolicy(p Policy) Option {
	return func(s *Scheduler) { s.policy = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		policy: DefaultPolicy(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ----------------------
//   DAY-CAPACITY TRACKER
// ----------------------

// tracker owns the per-date committed minutes for one scheduling run.
// Keyed by "YYYY-MM-DD"; days are created lazily on first touch.
type tracker struct {
	policy Policy
	days   map[string]*daySchedule
}

func newTracker(p Policy) *tracker {
	return &tracker{policy: p, days: make(map[string]*daySchedule)}
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func (tr *tracker) day(date time.Time) *daySchedule {
	key := dateKey(date)
	d, ok := tr.days[key]
	if !ok {
		d = &daySchedule{
			date:   truncateDay(date),
			energy: tr.policy.energyLevel(date),
		}
		tr.days[key] = d
	}
	return d
}

// remainingMinutes is the day's energy-scaled ceiling minus what previous
// tasks in this run already committed.
func (tr *tracker) remainingMinutes(date time.Time) int {
	d := tr.day(date)
	maxMinutes := int(math.Floor(float64(tr.policy.MaxDailyMinutes) * d.energy))
	return maxMinutes - hoursToMinutes(d.totalHours)
}

func (tr *tracker) commit(date time.Time, s Session) {
	d := tr.day(date)
	d.sessions = append(d.sessions, s)
	d.totalHours += float64(s.Duration) / 60
}

// ----------------------
//      PRIORITIZER
// ----------------------

// urgencyScore derives the [0,1] tie-break signal: class difficulty and
// teacher strictness (when present) plus stated priority, each on a /10
// scale, clamped to 1.
func urgencyScore(task Task) float64 {
	score := 0.0
	if task.Class != nil {
		if task.Class.Difficulty > 0 {
			score += task.Class.Difficulty / 10
		}
		if task.Class.TeacherStrictness > 0 {
			score += task.Class.TeacherStrictness / 10
		}
	}
	score += priorityValue(task) / 10
	return math.Min(score, 1)
}

// prioritize orders validated tasks by due date ascending, then urgency
// descending. This is the commitment order: earlier-due and more urgent
// tasks claim daily capacity first. Stable, so equal tasks keep input order.
func prioritize(tasks []Task) []Task {
	sorted := make([]Task, len(tasks))
	copy(sorted, tasks)

	sort.SliceStable(sorted, func(i, j int) bool {
		di, _ := parseDueDate(sorted[i].DueDate)
		dj, _ := parseDueDate(sorted[j].DueDate)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return urgencyScore(sorted[i]) > urgencyScore(sorted[j])
	})
	return sorted
}

// ----------------------
//    WORK DISTRIBUTOR
// ----------------------

func hoursToMinutes(hours float64) int {
	return int(math.Round(hours * 60))
}

func (s *Scheduler) roundToIncrement(minutes int) int {
	inc := s.policy.TimeIncrement
	return int(math.Round(float64(minutes)/float64(inc))) * inc
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isDueTodayOrTomorrow(dueDate, today time.Time) bool {
	d := truncateDay(dueDate)
	t := truncateDay(today)
	return d.Equal(t) || d.Equal(t.AddDate(0, 0, 1))
}

// taskLoad converts a validated task's effort to minutes on the increment
// grid. Anything below the minimum session length floors to the minimum, so
// small tasks are never scheduled for less than one 15-minute block.
func (s *Scheduler) taskLoad(task Task) int {
	maxMinutes := hoursToMinutes(estimatedHours(task))
	if maxMinutes < s.policy.MinWorkTime {
		return s.policy.MinWorkTime
	}
	return s.roundToIncrement(maxMinutes)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// distributeWorkOverDays allocates one task's load across the days between
// startDate and its due date, consuming capacity from the shared tracker.
func (s *Scheduler) distributeWorkOverDays(task Task, startDate time.Time, tr *tracker) []Session {
	load := s.taskLoad(task)
	dueDate, _ := parseDueDate(task.DueDate)

	var scheduled []Session

	// Due today or tomorrow: put everything in a single session today. This
	// path never spans multiple days; whatever does not fit today stays
	// unscheduled.
	if isDueTodayOrTomorrow(dueDate, startDate) {
		remaining := tr.remainingMinutes(startDate)

		// a task due this soon gets at least the minimum block
		minutesForToday := max(s.policy.MinWorkTime, min(load, remaining))

		if minutesForToday >= s.policy.MinWorkTime {
			rounded := s.roundToIncrement(minutesForToday)
			session := Session{
				TaskID:       task.ID,
				Date:         truncateDay(startDate),
				Duration:     rounded,
				OriginalTask: task,
			}
			tr.commit(startDate, session)
			scheduled = append(scheduled, session)
		} else {
			s.logger.Printf("[WARN] no capacity today for task %q (%s): need %d min, have %d",
				task.Title, task.ID, s.policy.MinWorkTime, remaining)
		}
		return scheduled
	}

	totalDays := int(math.Ceil(dueDate.Sub(startDate).Hours() / 24))
	if totalDays < 1 {
		// due date already behind us
		s.logger.Printf("[WARN] task %q (%s) is past due, nothing scheduled", task.Title, task.ID)
		return nil
	}
	idealDailyMinutes := ceilDiv(load, totalDays)

	remainingWork := load
	for current := startDate; remainingWork > 0 && !current.After(dueDate); current = current.AddDate(0, 0, 1) {
		remainingMinutes := tr.remainingMinutes(current)

		daysUntilDue := int(math.Ceil(dueDate.Sub(current).Hours() / 24))
		if daysUntilDue < 1 {
			daysUntilDue = 1
		}

		minutes := min(idealDailyMinutes, ceilDiv(remainingWork, daysUntilDue), remainingMinutes)
		rounded := s.roundToIncrement(minutes)
		if rounded > remainingMinutes {
			// never round up past what the day has left
			rounded = minutes / s.policy.TimeIncrement * s.policy.TimeIncrement
		}
		minutes = rounded

		if minutes < s.policy.MinWorkTime {
			continue // capacity exhausted or nothing left worth a block
		}

		session := Session{
			TaskID:       task.ID,
			Date:         truncateDay(current),
			Duration:     minutes,
			OriginalTask: task,
		}
		tr.commit(current, session)
		scheduled = append(scheduled, session)
		remainingWork -= minutes
	}

	if remainingWork > 0 {
		s.logger.Printf("[WARN] could not place all work for task %q (%s): %d min unscheduled",
			task.Title, task.ID, remainingWork)
	}
	return scheduled
}

// ----------------------
//     ORCHESTRATION
// ----------------------

// ScheduleAll validates, prioritizes and distributes a batch of tasks from
// the given "today". Returns the flat session list in per-task emission
// order plus the tasks rejected by validation. A batch with no valid tasks
// yields an empty plan; malformed input never aborts the run.
func (s *Scheduler) ScheduleAll(ctx context.Context, tasks []Task, today time.Time) ([]Session, []SkippedTask) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "schedule.ScheduleAll",
		trace.WithAttributes(attribute.Int("tasks.total", len(tasks))))
	defer span.End()

	validTasks, skippedTasks := ValidateTasks(tasks)
	for _, sk := range skippedTasks {
		s.logger.Printf("[WARN] skipping %s", issuesText(sk))
	}
	span.SetAttributes(
		attribute.Int("tasks.valid", len(validTasks)),
		attribute.Int("tasks.skipped", len(skippedTasks)),
	)

	if len(validTasks) == 0 {
		return nil, skippedTasks
	}

	sorted := prioritize(validTasks)

	tr := newTracker(s.policy)
	var sessions []Session
	for _, task := range sorted {
		_, taskSpan := otel.Tracer(tracerName).Start(ctx, "schedule.distribute",
			trace.WithAttributes(attribute.String("task.id", task.ID)))
		sessions = append(sessions, s.distributeWorkOverDays(task, today, tr)...)
		taskSpan.End()
	}

	span.SetAttributes(attribute.Int("sessions", len(sessions)))
	return sessions, skippedTasks
}
