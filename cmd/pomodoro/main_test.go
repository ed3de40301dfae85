package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomodoro/timer/internal/model"
	"pomodoro/timer/internal/service"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("POMODORO_DATA_DIR", t.TempDir())
	t.Setenv("POMODORO_BELL", "false")
	t.Setenv("POMODORO_LANG", "en")

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--no-log-file"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSettingsSetAndShow(t *testing.T) {
	t.Setenv("POMODORO_DATA_DIR", t.TempDir())

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--no-log-file", "settings", "set", "--work", "50", "--auto-start-work=true"})
	require.NoError(t, cmd.Execute())

	cmd = rootCmd()
	out.Reset()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--no-log-file", "settings", "show"})
	require.NoError(t, cmd.Execute())

	var shown model.Settings
	require.NoError(t, json.Unmarshal(out.Bytes(), &shown))
	assert.Equal(t, 50, shown.WorkMinutes)
	assert.True(t, shown.AutoStartWork)
	assert.Equal(t, model.DefaultShortBreakMinutes, shown.ShortBreakMinutes)
}

func TestSettingsSetRejectsOutOfBounds(t *testing.T) {
	out, err := execute(t, "", "settings", "set", "--work", "0", "--cycles", "20")

	require.Error(t, err)
	assert.Contains(t, out, "work_minutes")
	assert.Contains(t, out, "cycles_before_long_break")
}

func TestStatsEmpty(t *testing.T) {
	out, err := execute(t, "", "stats", "--days", "3")

	require.NoError(t, err)
	assert.Contains(t, out, "All time:    0")
	assert.Equal(t, 3, strings.Count(out, "  0  "))
}

func TestRunQuitsOnCommand(t *testing.T) {
	out, err := execute(t, "s\np\nbogus\nq\n", "run")

	require.NoError(t, err)
	assert.Contains(t, out, "[Focus] 25:00")
	assert.Contains(t, out, `unknown command "bogus"`)
}

func TestRunKeepsInfoLogsOffTheConsole(t *testing.T) {
	out, err := execute(t, "s\nq\n", "run")

	require.NoError(t, err)
	assert.Contains(t, out, "[Focus] 25:00")
	assert.NotContains(t, out, "timer started")
	assert.NotContains(t, out, "level=INFO")
}

func TestRunShowsRussianLabels(t *testing.T) {
	t.Setenv("POMODORO_DATA_DIR", t.TempDir())
	t.Setenv("POMODORO_BELL", "false")
	t.Setenv("POMODORO_LANG", "ru_RU.UTF-8")

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader("q\n"))
	cmd.SetArgs([]string{"--no-log-file", "run"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "[Фокус] 25:00")
}

func TestLogLevelFlag(t *testing.T) {
	out, err := execute(t, "", "--log-level", "debug", "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "app ready")

	out, err = execute(t, "", "--log-level", "warn", "settings", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "level=INFO")

	_, err = execute(t, "", "--log-level", "loud", "settings", "show")
	assert.Error(t, err)
}

func TestInvalidTickIntervalFallsBack(t *testing.T) {
	t.Setenv("POMODORO_TICK_MS", "0")
	out, err := execute(t, "q\n", "run")

	require.NoError(t, err)
	assert.Contains(t, out, "[Focus] 25:00")
}

func TestReadLinesStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lines := readLines(ctx, strings.NewReader("s\np\nq\n"))

	var got []string
	for line := range lines {
		got = append(got, line)
	}
	assert.Empty(t, got)
}

func TestReadLinesDeliversInput(t *testing.T) {
	var got []string
	for line := range readLines(context.Background(), strings.NewReader("s\np\n")) {
		got = append(got, line)
	}
	assert.Equal(t, []string{"s", "p"}, got)
}

func TestTokenNeedsSecret(t *testing.T) {
	_, err := execute(t, "", "token")
	assert.Error(t, err)

	t.Setenv("POMODORO_API_SECRET", "secret")
	out, err := execute(t, "", "token")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(strings.TrimSpace(out), "."))
}

func TestStatusLine(t *testing.T) {
	view := service.StateView{
		TimerState: model.TimerState{
			Phase:            model.PhaseWork,
			RunState:         model.RunStateRunning,
			RemainingSeconds: 90,
			TotalSeconds:     1500,
		},
		Label:         "Focus",
		Clock:         "01:30",
		WarningZone:   true,
		CyclePosition: 2,
		Settings:      model.DefaultSettings(),
	}

	assert.Equal(t, "![Focus] 01:30  running  cycle 2/4  today 0  week 0  streak 0d", statusLine(view))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "25m", formatMinutes(25))
	assert.Equal(t, "2h05m", formatMinutes(125))
}
