// Package i18n picks the display language for phase labels.
package i18n

import (
	"strings"

	"golang.org/x/text/language"

	"pomodoro/timer/internal/model"
)

type Lang string

const (
	English Lang = "en"
	Russian Lang = "ru"
)

// Default is used when nothing better matches.
const Default = English

var (
	supported = []Lang{English, Russian}
	matcher   = language.NewMatcher([]language.Tag{language.English, language.Russian})
)

var phaseLabels = map[Lang]map[model.Phase]string{
	English: {
		model.PhaseWork:       "Focus",
		model.PhaseShortBreak: "Short Break",
		model.PhaseLongBreak:  "Long Break",
	},
	Russian: {
		model.PhaseWork:       "Фокус",
		model.PhaseShortBreak: "Короткий перерыв",
		model.PhaseLongBreak:  "Длинный перерыв",
	},
}

// Match maps a BCP 47 tag or a POSIX locale such as "ru_RU.UTF-8" to a
// supported language.
func Match(raw string) Lang {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, ".@"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.ReplaceAll(raw, "_", "-")
	if raw == "" || raw == "C" || raw == "POSIX" {
		return Default
	}

	tag, err := language.Parse(raw)
	if err != nil {
		return Default
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return Default
	}
	return supported[index]
}

// Detect reads the locale the way the C library does: LC_ALL, then
// LC_MESSAGES, then LANG.
func Detect(getenv func(string) string) Lang {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if value := getenv(key); value != "" {
			return Match(value)
		}
	}
	return Default
}

// Resolve returns Match(explicit) when set, otherwise the detected locale.
func Resolve(explicit string, getenv func(string) string) Lang {
	if explicit != "" {
		return Match(explicit)
	}
	return Detect(getenv)
}

func PhaseLabel(lang Lang, phase model.Phase) string {
	labels, ok := phaseLabels[lang]
	if !ok {
		labels = phaseLabels[Default]
	}
	if label, ok := labels[phase]; ok {
		return label
	}
	return phaseLabels[Default][model.PhaseWork]
}
