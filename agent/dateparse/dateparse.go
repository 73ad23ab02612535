// Package dateparse turns spoken Russian date phrases into calendar dates.
package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/ru"
	contractx "github.com/tanpawarit/voice-diary/agent/contract"
)

// ISOLayout is how dates are stored in carried data and in the database.
const ISOLayout = "2006-01-02"

var monthsGenitive = map[string]time.Month{
	"января":   time.January,
	"февраля":  time.February,
	"марта":    time.March,
	"апреля":   time.April,
	"мая":      time.May,
	"июня":     time.June,
	"июля":     time.July,
	"августа":  time.August,
	"сентября": time.September,
	"октября":  time.October,
	"ноября":   time.November,
	"декабря":  time.December,
}

var spokenDate = regexp.MustCompile(`^(\d{1,2})\s+([а-яё]+)(?:\s+(\d{4})(?:\s+(?:года|год|г\.?))?)?$`)

var keywordOffsets = map[string]int{
	"сегодня":     0,
	"вчера":       -1,
	"позавчера":   -2,
	"завтра":      1,
	"послезавтра": 2,
}

// Parser tries exact layouts first and falls back to the when rule set.
type Parser struct {
	w *when.Parser
}

func New() *Parser {
	w := when.New(nil)
	w.Add(ru.All...)
	w.Add(common.All...)
	return &Parser{w: w}
}

// ParseDate returns midnight of the named day in now's location.
func (p *Parser) ParseDate(text string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", contractx.ErrUnparseableDate)
	}
	loc := now.Location()

	for _, layout := range []string{ISOLayout, "02.01.2006", "2.1.2006"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	if offset, ok := keywordOffsets[s]; ok {
		return Midnight(now).AddDate(0, 0, offset), nil
	}

	if t, matched, err := parseSpoken(s, now); matched {
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q: %v", contractx.ErrUnparseableDate, text, err)
		}
		return t, nil
	}

	r, err := p.w.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", contractx.ErrUnparseableDate, text, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", contractx.ErrUnparseableDate, text)
	}
	return Midnight(r.Time.In(loc)), nil
}

// parseSpoken handles "5 мая" and "5 мая 2024 года". Without a year the
// current one is assumed. matched is false when s is not in that form.
func parseSpoken(s string, now time.Time) (t time.Time, matched bool, err error) {
	m := spokenDate.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false, nil
	}
	month, ok := monthsGenitive[m[2]]
	if !ok {
		return time.Time{}, false, nil
	}
	day, _ := strconv.Atoi(m[1])
	year := now.Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
	}

	t = time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	if day < 1 || t.Day() != day {
		return time.Time{}, true, fmt.Errorf("no day %d in %s", day, month)
	}
	return t, true, nil
}

func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
