package nlu

import (
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Date-time components. A component is relative when the user said it
// relative to now ("tomorrow", "in two hours").
const (
	ComponentYear   = "year"
	ComponentMonth  = "month"
	ComponentDay    = "day"
	ComponentHour   = "hour"
	ComponentMinute = "minute"
)

type DateTimeEntity struct {
	span     TokenSpan
	Year     *int
	Month    *int
	Day      *int
	Hour     *int
	Minute   *int
	relative map[string]bool
}

type dateTimeValue struct {
	Year   *int `mapstructure:"year"`
	Month  *int `mapstructure:"month"`
	Day    *int `mapstructure:"day"`
	Hour   *int `mapstructure:"hour"`
	Minute *int `mapstructure:"minute"`
}

func newDateTime(span TokenSpan, value any) (Entity, error) {
	var v dateTimeValue
	if err := mapstructure.Decode(value, &v); err != nil {
		return nil, err
	}

	e := &DateTimeEntity{
		span:     span,
		Year:     v.Year,
		Month:    v.Month,
		Day:      v.Day,
		Hour:     v.Hour,
		Minute:   v.Minute,
		relative: make(map[string]bool, 2),
	}

	if m, ok := value.(map[string]any); ok {
		for key, flag := range m {
			component, found := strings.CutSuffix(key, "_is_relative")
			if !found {
				continue
			}
			if b, ok := flag.(bool); ok && b {
				e.relative[component] = true
			}
		}
	}
	return e, nil
}

func (e *DateTimeEntity) IsRelative(component string) bool {
	return e.relative[component]
}

// HasDate reports whether any calendar component was stated.
func (e *DateTimeEntity) HasDate() bool {
	return e.Year != nil || e.Month != nil || e.Day != nil
}

// Date resolves the calendar part against now. Absolute components replace
// now's, relative ones are added as offsets. The result is midnight in now's
// location.
func (e *DateTimeEntity) Date(now time.Time) time.Time {
	y, m, d := now.Date()
	var dy, dm, dd int

	if e.Year != nil {
		if e.IsRelative(ComponentYear) {
			dy = *e.Year
		} else {
			y = *e.Year
		}
	}
	if e.Month != nil {
		if e.IsRelative(ComponentMonth) {
			dm = *e.Month
		} else {
			m = time.Month(*e.Month)
		}
	}
	if e.Day != nil {
		if e.IsRelative(ComponentDay) {
			dd = *e.Day
		} else {
			d = *e.Day
		}
	}

	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(dy, dm, dd)
}
