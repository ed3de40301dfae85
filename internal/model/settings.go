package model

const (
	MinPhaseMinutes = 1
	MaxPhaseMinutes = 180
	MinCycles       = 1
	MaxCycles       = 12
)

const (
	DefaultWorkMinutes           = 25
	DefaultShortBreakMinutes     = 5
	DefaultLongBreakMinutes      = 15
	DefaultCyclesBeforeLongBreak = 4
)

type Settings struct {
	WorkMinutes           int  `json:"work_minutes" yaml:"work_minutes"`
	ShortBreakMinutes     int  `json:"short_break_minutes" yaml:"short_break_minutes"`
	LongBreakMinutes      int  `json:"long_break_minutes" yaml:"long_break_minutes"`
	CyclesBeforeLongBreak int  `json:"cycles_before_long_break" yaml:"cycles_before_long_break"`
	AutoStartBreak        bool `json:"auto_start_break" yaml:"auto_start_break"`
	AutoStartWork         bool `json:"auto_start_work" yaml:"auto_start_work"`
}

func DefaultSettings() Settings {
	return Settings{
		WorkMinutes:           DefaultWorkMinutes,
		ShortBreakMinutes:     DefaultShortBreakMinutes,
		LongBreakMinutes:      DefaultLongBreakMinutes,
		CyclesBeforeLongBreak: DefaultCyclesBeforeLongBreak,
		AutoStartBreak:        true,
		AutoStartWork:         false,
	}
}

func (s Settings) PhaseMinutes(phase Phase) int {
	switch phase {
	case PhaseShortBreak:
		return s.ShortBreakMinutes
	case PhaseLongBreak:
		return s.LongBreakMinutes
	default:
		return s.WorkMinutes
	}
}

func (s Settings) PhaseSeconds(phase Phase) int {
	return s.PhaseMinutes(phase) * 60
}

// AutoStarts reports whether entering phase should begin counting down
// without an explicit resume.
func (s Settings) AutoStarts(phase Phase) bool {
	if phase.IsBreak() {
		return s.AutoStartBreak
	}
	return s.AutoStartWork
}
