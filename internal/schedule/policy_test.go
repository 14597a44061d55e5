package schedule

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 360, p.MaxDailyMinutes)
	assert.Equal(t, 15, p.TimeIncrement)
	assert.Equal(t, 15, p.MinWorkTime)
	assert.Equal(t, 1, p.BreaksPerDay)
	assert.InDelta(t, 0.6, p.WeekendEnergyReduction, 1e-9)
	assert.Len(t, p.Energy, 7)
}

func TestLoadPolicyOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
max_daily_minutes: 480
energy:
  monday: 0.5
`), 0o644))

	p, err := LoadPolicy(path)
	require.NoError(t, err)

	assert.Equal(t, 480, p.MaxDailyMinutes)
	assert.InDelta(t, 0.5, p.Energy[time.Monday], 1e-9)
	// untouched keys keep their defaults
	assert.Equal(t, 15, p.MinWorkTime)
	assert.InDelta(t, 1.0, p.Energy[time.Tuesday], 1e-9)
}

func TestLoadPolicyBadWeekday(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("energy:\n  someday: 0.5\n"), 0o644))

	_, err := LoadPolicy(path)
	assert.Error(t, err)
}

func TestLoadPolicyMissingFile(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
