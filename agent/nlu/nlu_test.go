package nlu

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
)

const sampleNLU = `{
	"tokens": ["найди", "заметку", "поход", "в", "москве", "завтра"],
	"entities": [
		{"type": "YANDEX.GEO", "tokens": {"start": 4, "end": 5}, "value": {"city": "москва"}},
		{"type": "YANDEX.DATETIME", "tokens": {"start": 5, "end": 6}, "value": {"day": 1, "day_is_relative": true}},
		{"type": "YANDEX.NUMBER", "tokens": {"start": 0, "end": 1}, "value": 42},
		{"type": "YANDEX.FIO", "tokens": {"start": 1, "end": 2}, "value": {"first_name": "иван", "last_name": "петров"}}
	],
	"intents": {
		"find_note": {
			"slots": {
				"title": {"type": "YANDEX.STRING", "tokens": {"start": 2, "end": 3}, "value": "поход"}
			}
		}
	}
}`

func decodeRaw(t *testing.T, body string) RawNLU {
	t.Helper()
	var raw RawNLU
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("unmarshal raw nlu: %v", err)
	}
	return raw
}

func TestBuildDispatchesOnTypeTag(t *testing.T) {
	t.Parallel()

	got, err := Build(decodeRaw(t, sampleNLU))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(got.Tokens) != 6 {
		t.Fatalf("tokens = %v", got.Tokens)
	}
	if len(got.Entities) != 4 {
		t.Fatalf("entities = %d, want 4", len(got.Entities))
	}

	geo, ok := got.Entities[0].(*GeoEntity)
	if !ok || geo.City != "москва" {
		t.Fatalf("entity[0] = %#v, want geo with city", got.Entities[0])
	}
	if geo.Span() != (TokenSpan{Start: 4, End: 5}) {
		t.Fatalf("geo span = %+v", geo.Span())
	}

	dt, ok := got.Entities[1].(*DateTimeEntity)
	if !ok {
		t.Fatalf("entity[1] = %T, want *DateTimeEntity", got.Entities[1])
	}
	if !dt.IsRelative(ComponentDay) || dt.IsRelative(ComponentMonth) {
		t.Fatal("only the day component is relative")
	}

	num, ok := got.Entities[2].(*NumberEntity)
	if !ok || num.Value != 42 {
		t.Fatalf("entity[2] = %#v, want number 42", got.Entities[2])
	}

	name, ok := got.Entities[3].(*NameEntity)
	if !ok || name.FirstName != "иван" || name.LastName != "петров" {
		t.Fatalf("entity[3] = %#v", got.Entities[3])
	}

	intent, ok := got.Intents["find_note"]
	if !ok {
		t.Fatal("find_note intent missing")
	}
	title, ok := intent.StringSlot("title")
	if !ok || title != "поход" {
		t.Fatalf("title slot = %q, %v", title, ok)
	}
	if _, ok := intent.StringSlot("date"); ok {
		t.Fatal("date slot must be absent")
	}
}

func TestBuildUnknownEntityTypeFails(t *testing.T) {
	t.Parallel()

	raw := decodeRaw(t, `{
		"tokens": ["x"],
		"entities": [{"type": "CUSTOM.COLOR", "tokens": {"start": 0, "end": 1}, "value": "red"}],
		"intents": {}
	}`)

	_, err := Build(raw)
	if !errors.Is(err, contractx.ErrUnknownEntityType) {
		t.Fatalf("Build() error = %v, want ErrUnknownEntityType", err)
	}
	if !errors.Is(err, contractx.ErrProtocolViolation) {
		t.Fatalf("Build() error = %v, want protocol violation class", err)
	}
}

func TestBuildUnknownSlotTypeFails(t *testing.T) {
	t.Parallel()

	raw := decodeRaw(t, `{
		"tokens": [],
		"entities": [],
		"intents": {"new_note": {"slots": {"title": {"type": "CUSTOM.X", "tokens": {"start": 0, "end": 1}, "value": "a"}}}}
	}`)

	if _, err := Build(raw); !errors.Is(err, contractx.ErrUnknownEntityType) {
		t.Fatalf("Build() error = %v, want ErrUnknownEntityType", err)
	}
}

func TestBuildMalformedStringValueFails(t *testing.T) {
	t.Parallel()

	raw := decodeRaw(t, `{
		"tokens": [],
		"entities": [{"type": "YANDEX.STRING", "tokens": {"start": 0, "end": 1}, "value": {"nested": true}}],
		"intents": {}
	}`)

	if _, err := Build(raw); !errors.Is(err, contractx.ErrMalformedPayload) {
		t.Fatalf("Build() error = %v, want ErrMalformedPayload", err)
	}
}

func TestDateTimeEntityDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{
			name:  "tomorrow",
			value: `{"day": 1, "day_is_relative": true}`,
			want:  time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "absolute day and month",
			value: `{"day": 5, "month": 5, "day_is_relative": false, "month_is_relative": false}`,
			want:  time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "last year same day",
			value: `{"year": -1, "year_is_relative": true}`,
			want:  time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "full absolute date",
			value: `{"year": 2024, "month": 2, "day": 29}`,
			want:  time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var value map[string]any
			if err := json.Unmarshal([]byte(tt.value), &value); err != nil {
				t.Fatalf("unmarshal value: %v", err)
			}
			e, err := NewEntity(RawEntity{Type: TypeDateTime, Value: value})
			if err != nil {
				t.Fatalf("NewEntity() error = %v", err)
			}
			dt := e.(*DateTimeEntity)
			if !dt.HasDate() {
				t.Fatal("HasDate() = false")
			}
			if got := dt.Date(now); !got.Equal(tt.want) {
				t.Fatalf("Date() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntentNamesAreSorted(t *testing.T) {
	t.Parallel()

	n := NLU{Intents: map[string]Intent{"new_note": {}, "del_note": {}, "find_note": {}}}
	got := n.IntentNames()
	want := []string{"del_note", "find_note", "new_note"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IntentNames() = %v, want %v", got, want)
		}
	}
}
