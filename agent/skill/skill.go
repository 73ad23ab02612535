// Package skill implements the voice diary: one handler per dialog state.
package skill

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	"github.com/tanpawarit/voice-diary/agent/dateparse"
	dialogx "github.com/tanpawarit/voice-diary/agent/dialog"
	"github.com/tanpawarit/voice-diary/agent/nlu"
	statex "github.com/tanpawarit/voice-diary/agent/state"
)

// Carried data keys.
const (
	keyTitle     = "title"
	keyDate      = "date"
	keySelection = "selection"
	keyPage      = "page"
)

// How a find flow narrowed down its note.
const (
	selectionTitleOnly    = "title_only"
	selectionTitleAndDate = "title_and_date"
)

// Slot names of the diary intents.
const (
	slotTitle = "title"
	slotDate  = "date"
)

type Config struct {
	Timezone string `envconfig:"TIMEZONE" split_words:"true" default:"Europe/Moscow"`
	PageSize int    `envconfig:"PAGE_SIZE" split_words:"true" default:"3"`
}

type Option func(*Skill)

func WithClock(now func() time.Time) Option {
	return func(s *Skill) {
		if now != nil {
			s.now = now
		}
	}
}

type Skill struct {
	notes    contractx.NoteStore
	queue    contractx.SummaryQueue
	dates    contractx.DateParser
	loc      *time.Location
	pageSize int
	now      func() time.Time
}

func New(cfg Config, notes contractx.NoteStore, queue contractx.SummaryQueue, dates contractx.DateParser, opts ...Option) (*Skill, error) {
	if notes == nil {
		return nil, fmt.Errorf("%w: note store is required", contractx.ErrConfiguration)
	}
	if queue == nil {
		return nil, fmt.Errorf("%w: summary queue is required", contractx.ErrConfiguration)
	}
	if dates == nil {
		dates = dateparse.New()
	}

	loc := time.UTC
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("%w: timezone %q: %v", contractx.ErrConfiguration, tz, err)
		}
		loc = l
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 3
	}

	s := &Skill{
		notes:    notes,
		queue:    queue,
		dates:    dates,
		loc:      loc,
		pageSize: pageSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Register binds every dialog state to its handler.
func (s *Skill) Register(reg *dialogx.Registry) error {
	bindings := map[statex.Status]dialogx.Handler{
		statex.StatusIdle:               s.idle,
		statex.StatusNewNote:            s.newNote,
		statex.StatusNewNoteTitleInput:  s.newNoteTitleInput,
		statex.StatusNewNoteTextInput:   s.newNoteTextInput,
		statex.StatusDelNote:            s.delNote,
		statex.StatusDelNoteTitleInput:  s.delNoteTitleInput,
		statex.StatusDelNoteDateInput:   s.delNoteDateInput,
		statex.StatusFindNote:           s.findNote,
		statex.StatusFindNoteTitleInput: s.findNoteTitleInput,
		statex.StatusFindNoteDateInput:  s.findNoteDateInput,
		statex.StatusFindNoteFormInput:  s.findNoteFormInput,
		statex.StatusListAllNotes:       s.listAllNotes,
		statex.StatusListNext:           s.listNext,
	}

	var errs []error
	for _, st := range statex.AllStatuses() {
		h, ok := bindings[st]
		if !ok {
			continue
		}
		if err := reg.Register(st, h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// location is the user's time zone when the platform sent a usable one.
func (s *Skill) location(ctx context.Context, req *dialogx.Request) *time.Location {
	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		return s.loc
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("timezone", tz).Msg("unknown request timezone, using default")
		return s.loc
	}
	return loc
}

func (s *Skill) userNow(ctx context.Context, req *dialogx.Request) time.Time {
	return s.now().In(s.location(ctx, req))
}

func (s *Skill) today(ctx context.Context, req *dialogx.Request) time.Time {
	return dateparse.Midnight(s.userNow(ctx, req))
}

// slotDate resolves a date slot. Structured date entities are resolved
// against the user's now, free strings go through the date parser.
func (s *Skill) slotDate(ctx context.Context, req *dialogx.Request, e nlu.Entity) (time.Time, error) {
	now := s.userNow(ctx, req)
	switch v := e.(type) {
	case *nlu.DateTimeEntity:
		if !v.HasDate() {
			return time.Time{}, fmt.Errorf("%w: date entity has no calendar part", contractx.ErrUnparseableDate)
		}
		return v.Date(now), nil
	case *nlu.StringEntity:
		return s.dates.ParseDate(v.Value, now)
	default:
		return time.Time{}, fmt.Errorf("%w: %s slot", contractx.ErrUnparseableDate, e.Type())
	}
}

// utteranceDate reads a date the user said in reply to a date question. A
// date entity found by the platform wins over parsing the raw text.
func (s *Skill) utteranceDate(ctx context.Context, req *dialogx.Request) (time.Time, error) {
	for _, e := range req.NLU.Entities {
		if dt, ok := e.(*nlu.DateTimeEntity); ok && dt.HasDate() {
			return dt.Date(s.userNow(ctx, req)), nil
		}
	}
	return s.dates.ParseDate(req.Utterance, s.userNow(ctx, req))
}

// carriedDate decodes a date stored in carried data by an earlier turn.
func carriedDate(req *dialogx.Request, key string) (time.Time, bool, error) {
	raw, ok := req.String(key)
	if !ok {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(dateparse.ISOLayout, raw)
	if err != nil {
		return time.Time{}, true, fmt.Errorf("%w: %q is not a date: %v", contractx.ErrMalformedPayload, key, err)
	}
	return t, true, nil
}

// intentSlots returns the title and date slots of an intent, either of which
// may be nil.
func intentSlots(req *dialogx.Request, intent string) (title string, date nlu.Entity) {
	i, ok := req.Intent(intent)
	if !ok {
		return "", nil
	}
	title, _ = i.StringSlot(slotTitle)
	date, _ = i.Slot(slotDate)
	return strings.TrimSpace(title), date
}

// spokenText is what the user said, trimmed.
func spokenText(req *dialogx.Request) string {
	if t := strings.TrimSpace(req.Utterance); t != "" {
		return t
	}
	return strings.TrimSpace(req.Command)
}

// say appends each message in order.
func say(resp *dialogx.Response, msgs ...string) error {
	for _, m := range msgs {
		if err := resp.AppendMessage(m); err != nil {
			return err
		}
	}
	return nil
}
