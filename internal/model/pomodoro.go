package model

import (
	"fmt"
)

type Phase int

const (
	PhaseWork Phase = iota
	PhaseShortBreak
	PhaseLongBreak
)

const (
	phaseWorkText       = "work"
	phaseShortBreakText = "short_break"
	phaseLongBreakText  = "long_break"
)

func (p Phase) String() string {
	switch p {
	case PhaseWork:
		return phaseWorkText
	case PhaseShortBreak:
		return phaseShortBreakText
	case PhaseLongBreak:
		return phaseLongBreakText
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) IsBreak() bool {
	return p == PhaseShortBreak || p == PhaseLongBreak
}

func (p Phase) Valid() bool {
	return p == PhaseWork || p == PhaseShortBreak || p == PhaseLongBreak
}

func ParsePhase(raw string) (Phase, error) {
	switch raw {
	case phaseWorkText:
		return PhaseWork, nil
	case phaseShortBreakText:
		return PhaseShortBreak, nil
	case phaseLongBreakText:
		return PhaseLongBreak, nil
	default:
		return PhaseWork, fmt.Errorf("unknown phase %q", raw)
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid phase %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

type RunState int

const (
	RunStateIdle RunState = iota
	RunStateRunning
	RunStatePaused
)

func (s RunState) String() string {
	switch s {
	case RunStateIdle:
		return "idle"
	case RunStateRunning:
		return "running"
	case RunStatePaused:
		return "paused"
	default:
		return fmt.Sprintf("run_state(%d)", int(s))
	}
}

func (s RunState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *RunState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = RunStateIdle
	case "running":
		*s = RunStateRunning
	case "paused":
		*s = RunStatePaused
	default:
		return fmt.Errorf("unknown run state %q", string(text))
	}
	return nil
}

// WarningThreshold is the fraction of a work phase left when renderers switch
// to the "finishing" look.
const WarningThreshold = 0.1

type TimerState struct {
	Phase              Phase    `json:"phase"`
	RunState           RunState `json:"runState"`
	RemainingSeconds   int      `json:"remainingSeconds"`
	TotalSeconds       int      `json:"totalSeconds"`
	CompletedWorkCount int      `json:"completedWorkCount"`
}

func (s TimerState) ElapsedSeconds() int {
	return s.TotalSeconds - s.RemainingSeconds
}

// Clock renders the remaining time as MM:SS. Minutes are not wrapped at 60.
func (s TimerState) Clock() string {
	return FormatClock(s.RemainingSeconds)
}

func (s TimerState) CyclePosition(cycles int) int {
	if cycles <= 0 {
		return 0
	}
	return s.CompletedWorkCount % cycles
}

func (s TimerState) InWarningZone() bool {
	if s.Phase != PhaseWork || s.RunState == RunStateIdle || s.TotalSeconds <= 0 {
		return false
	}
	return float64(s.RemainingSeconds) <= WarningThreshold*float64(s.TotalSeconds)
}

func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
