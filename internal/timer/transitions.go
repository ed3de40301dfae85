package timer

import "pomodoro/timer/internal/model"

type command string

const (
	cmdStart          command = "start"
	cmdPause          command = "pause"
	cmdResume         command = "resume"
	cmdSkip           command = "skip"
	cmdTick           command = "tick"
	cmdUpdateSettings command = "update settings"
)

// Stop is absent: it is accepted in every state.
var allowedFrom = map[command][]model.RunState{
	cmdStart:          {model.RunStateIdle, model.RunStatePaused},
	cmdPause:          {model.RunStateRunning},
	cmdResume:         {model.RunStatePaused},
	cmdSkip:           {model.RunStateRunning, model.RunStatePaused},
	cmdTick:           {model.RunStateRunning},
	cmdUpdateSettings: {model.RunStateIdle},
}

func allowed(cmd command, from model.RunState) bool {
	for _, s := range allowedFrom[cmd] {
		if s == from {
			return true
		}
	}
	return false
}

// nextPhase is the phase that follows finished. completedWork already
// includes finished when it was a work phase.
func nextPhase(finished model.Phase, completedWork, cycles int) model.Phase {
	switch finished {
	case model.PhaseWork:
		if completedWork%cycles == 0 {
			return model.PhaseLongBreak
		}
		return model.PhaseShortBreak
	default:
		return model.PhaseWork
	}
}
