package schedule

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scheduling policy constants. These are the tunables; the engine itself
// never hardcodes them.
const (
	MaxDailyMinutes        = 360 // 6 hours maximum work per day, before energy scaling
	BreaksPerDay           = 1   // reserved, not used by the allocation math yet
	TimeIncrement          = 15  // all work times are multiples of 15 minutes
	MinWorkTime            = 15  // minimum schedulable session length in minutes
	WeekendEnergyReduction = 0.6
)

// Policy bundles the tunables so a deployment can override them from a
// YAML file without touching the engine.
type Policy struct {
	MaxDailyMinutes        int                      `yaml:"max_daily_minutes"`
	BreaksPerDay           int                      `yaml:"breaks_per_day"`
	TimeIncrement          int                      `yaml:"time_increment"`
	MinWorkTime            int                      `yaml:"min_work_time"`
	WeekendEnergyReduction float64                  `yaml:"weekend_energy_reduction"`
	Energy                 map[time.Weekday]float64 `yaml:"-"`

	// EnergyByName is the YAML-facing form of Energy ("monday": 1.0).
	EnergyByName map[string]float64 `yaml:"energy"`
}

// DefaultPolicy returns the stock tunables: base energy per weekday, with a
// further weekend reduction stacked on top of the Saturday/Sunday values.
func DefaultPolicy() Policy {
	return Policy{
		MaxDailyMinutes:        MaxDailyMinutes,
		BreaksPerDay:           BreaksPerDay,
		TimeIncrement:          TimeIncrement,
		MinWorkTime:            MinWorkTime,
		WeekendEnergyReduction: WeekendEnergyReduction,
		Energy: map[time.Weekday]float64{
			time.Sunday:    0.6,
			time.Monday:    1.0,
			time.Tuesday:   1.0,
			time.Wednesday: 0.9,
			time.Thursday:  0.9,
			time.Friday:    0.8,
			time.Saturday:  0.7,
		},
	}
}

// LoadPolicy reads overrides from a YAML file on top of the defaults.
// Only the keys present in the file are replaced.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse policy %s: %w", path, err)
	}

	for name, v := range p.EnergyByName {
		day, ok := weekdayByName[name]
		if !ok {
			return p, fmt.Errorf("parse policy %s: unknown weekday %q", path, name)
		}
		p.Energy[day] = v
	}
	p.EnergyByName = nil

	return p, nil
}

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// energyLevel computes the capacity multiplier for a date: the weekday base,
// reduced again on weekends.
func (p Policy) energyLevel(date time.Time) float64 {
	energy := p.Energy[date.Weekday()]
	if isWeekend(date) {
		energy *= p.WeekendEnergyReduction
	}
	return energy
}

func isWeekend(date time.Time) bool {
	day := date.Weekday()
	return day == time.Sunday || day == time.Saturday
}
