package pomodoro

import "time"

// Phase is one of the three timer phases.
type Phase string

const (
	Work       Phase = "work"
	ShortBreak Phase = "shortBreak"
	LongBreak  Phase = "longBreak"
)

func (p Phase) Valid() bool {
	switch p {
	case Work, ShortBreak, LongBreak:
		return true
	}
	return false
}

// Label returns a human readable phase name.
func (p Phase) Label() string {
	switch p {
	case ShortBreak:
		return "Short Break"
	case LongBreak:
		return "Long Break"
	default:
		return "Work"
	}
}

// Settings are the user's pomodoro preferences. Durations are minutes.
type Settings struct {
	WorkDuration       int  `json:"workDuration"`
	ShortBreakDuration int  `json:"shortBreakDuration"`
	LongBreakDuration  int  `json:"longBreakDuration"`
	LongBreakInterval  int  `json:"longBreakInterval"`
	AutoStartBreaks    bool `json:"autoStartBreaks"`
	AutoStartPomodoros bool `json:"autoStartPomodoros"`
}

func DefaultSettings() Settings {
	return Settings{
		WorkDuration:       25,
		ShortBreakDuration: 5,
		LongBreakDuration:  15,
		LongBreakInterval:  4,
	}
}

// sanitize replaces non-positive values with the defaults.
func (s Settings) sanitize() Settings {
	d := DefaultSettings()
	if s.WorkDuration <= 0 {
		s.WorkDuration = d.WorkDuration
	}
	if s.ShortBreakDuration <= 0 {
		s.ShortBreakDuration = d.ShortBreakDuration
	}
	if s.LongBreakDuration <= 0 {
		s.LongBreakDuration = d.LongBreakDuration
	}
	if s.LongBreakInterval <= 0 {
		s.LongBreakInterval = d.LongBreakInterval
	}
	return s
}

// Seconds returns the full length of phase p.
func (s Settings) Seconds(p Phase) int {
	switch p {
	case ShortBreak:
		return s.ShortBreakDuration * 60
	case LongBreak:
		return s.LongBreakDuration * 60
	default:
		return s.WorkDuration * 60
	}
}

// Duration is Seconds as a time.Duration.
func (s Settings) Duration(p Phase) time.Duration {
	return time.Duration(s.Seconds(p)) * time.Second
}

// SettingsPatch carries a partial settings update. Nil fields are kept;
// non-positive numbers are ignored.
type SettingsPatch struct {
	WorkDuration       *int
	ShortBreakDuration *int
	LongBreakDuration  *int
	LongBreakInterval  *int
	AutoStartBreaks    *bool
	AutoStartPomodoros *bool
}

func (s Settings) apply(p SettingsPatch) Settings {
	setPositive := func(dst *int, v *int) {
		if v != nil && *v > 0 {
			*dst = *v
		}
	}
	setPositive(&s.WorkDuration, p.WorkDuration)
	setPositive(&s.ShortBreakDuration, p.ShortBreakDuration)
	setPositive(&s.LongBreakDuration, p.LongBreakDuration)
	setPositive(&s.LongBreakInterval, p.LongBreakInterval)
	if p.AutoStartBreaks != nil {
		s.AutoStartBreaks = *p.AutoStartBreaks
	}
	if p.AutoStartPomodoros != nil {
		s.AutoStartPomodoros = *p.AutoStartPomodoros
	}
	return s
}
