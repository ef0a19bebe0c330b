package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Parse(nil, "empty")
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, cfg.Loop.TickRate)
	assert.Equal(t, 16, cfg.Scheduler.WarnPasses)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "logs/station.log", cfg.Logging.File)
	assert.Equal(t, 20, cfg.Snapshot.Keep)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "station.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
name = "orbital-7"

[loop]
tick_rate = "50ms"

[scheduler]
warn_passes = 4

[hud]
entry = ""
template = "resources"

[database]
enabled = true
conn_max_lifetime = "5m"

[snapshot]
interval_ticks = 0
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "orbital-7", cfg.Server.Name)
	assert.Equal(t, 50*time.Millisecond, cfg.Loop.TickRate)
	assert.Equal(t, 4, cfg.Scheduler.WarnPasses)
	assert.Equal(t, "", cfg.HUD.Entry)
	assert.Equal(t, "resources", cfg.HUD.Template)
	assert.Equal(t, "scripts", cfg.HUD.ScriptDir, "unset keys keep defaults")
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 0, cfg.Snapshot.IntervalTicks)
}

func TestInvalid(t *testing.T) {
	cases := map[string]string{
		"syntax":      "[loop\n",
		"tick rate":   "[loop]\ntick_rate = \"-1s\"\n",
		"warn passes": "[scheduler]\nwarn_passes = 0\n",
		"interval":    "[snapshot]\ninterval_ticks = -2\n",
		"keep":        "[snapshot]\nkeep = -1\n",
		"no hud":      "[hud]\nentry = \"\"\ntemplate = \"\"\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src), name)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "read config")
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, DefaultPath, Path())
	t.Setenv(EnvPath, "/etc/station.toml")
	assert.Equal(t, "/etc/station.toml", Path())
}
