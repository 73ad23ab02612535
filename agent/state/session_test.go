package state

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
)

func TestPayloadPutKeepsPersistentKeys(t *testing.T) {
	t.Parallel()

	p := NewPayload()
	p.Put(map[string]any{"title": "trip log"}, true)
	p.Put(map[string]any{"title": "trip log 2", "date": "2026-10-19"}, false)

	if !p.IsPersistent("title") {
		t.Fatal("title must stay persistent after a non-persistent write")
	}
	if p.IsPersistent("date") {
		t.Fatal("date must not become persistent")
	}
	if p.UserData["title"] != "trip log 2" {
		t.Fatalf("title = %v, want overwritten value", p.UserData["title"])
	}
	if !reflect.DeepEqual(p.Persistence, []string{"title"}) {
		t.Fatalf("persistence = %v", p.Persistence)
	}
}

func TestPayloadPutPersistentOrderIsSorted(t *testing.T) {
	t.Parallel()

	p := NewPayload()
	p.Put(map[string]any{"selection": "title_only", "title": "a", "date": "b"}, true)

	want := []string{"date", "selection", "title"}
	if !reflect.DeepEqual(p.Persistence, want) {
		t.Fatalf("persistence = %v, want %v", p.Persistence, want)
	}
}

func TestPayloadDropIsAtomic(t *testing.T) {
	t.Parallel()

	p := NewPayload()
	p.Put(map[string]any{"title": "x"}, true)
	p.Put(map[string]any{"page": 1}, false)

	err := p.Drop("title", "page")
	if !errors.Is(err, contractx.ErrKeyNotPersistent) {
		t.Fatalf("Drop() error = %v, want ErrKeyNotPersistent", err)
	}
	if !p.IsPersistent("title") || p.UserData["title"] != "x" {
		t.Fatal("failed Drop must not remove anything")
	}

	if err := p.Drop("title"); err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	if _, ok := p.UserData["title"]; ok {
		t.Fatal("title must be removed from user_data")
	}
	if p.IsPersistent("title") {
		t.Fatal("title must be removed from persistence")
	}
	if err := p.Drop("title"); !errors.Is(err, contractx.ErrKeyNotPersistent) {
		t.Fatalf("second Drop() error = %v, want ErrKeyNotPersistent", err)
	}
	if !errors.Is(err, contractx.ErrConsistencyViolation) {
		t.Fatalf("Drop() error class = %v, want ErrConsistencyViolation", err)
	}
}

func TestPayloadValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload Payload
		wantErr error
	}{
		{
			name:    "ok",
			payload: Payload{Status: StatusFindNoteDateInput, Persistence: []string{"title"}, UserData: map[string]any{"title": "a"}},
		},
		{
			name:    "dangling persistent key",
			payload: Payload{Status: StatusIdle, Persistence: []string{"title"}, UserData: map[string]any{}},
			wantErr: contractx.ErrMalformedPayload,
		},
		{
			name:    "duplicate persistent key",
			payload: Payload{Status: StatusIdle, Persistence: []string{"a", "a"}, UserData: map[string]any{"a": 1}},
			wantErr: contractx.ErrMalformedPayload,
		},
		{
			name:    "status out of range",
			payload: Payload{Status: statusCount},
			wantErr: contractx.ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.payload.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPayloadCloneIsDeep(t *testing.T) {
	t.Parallel()

	p := NewPayload()
	p.Put(map[string]any{"cursor": map[string]any{"page": 1}}, true)

	c := p.Clone()
	c.UserData["cursor"].(map[string]any)["page"] = 2
	c.Persistence[0] = "other"

	if p.UserData["cursor"].(map[string]any)["page"] != 1 {
		t.Fatal("clone shares nested maps with the original")
	}
	if p.Persistence[0] != "cursor" {
		t.Fatal("clone shares persistence slice with the original")
	}
}

func TestStatusJSONUsesNames(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Payload{Status: StatusDelNoteDateInput, Persistence: []string{}, UserData: map[string]any{}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded["dialog_status"] != "DEL_NOTE_DATE_INPUT" {
		t.Fatalf("dialog_status = %v", decoded["dialog_status"])
	}

	var back Payload
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal(Payload) error = %v", err)
	}
	if back.Status != StatusDelNoteDateInput {
		t.Fatalf("Status = %v", back.Status)
	}
}

func TestParseStatusRejectsUnknownName(t *testing.T) {
	t.Parallel()

	_, err := ParseStatus("SING_A_SONG")
	if !errors.Is(err, contractx.ErrInvalidState) {
		t.Fatalf("ParseStatus() error = %v, want ErrInvalidState", err)
	}
	if len(AllStatuses()) != int(statusCount) {
		t.Fatalf("AllStatuses() returned %d values", len(AllStatuses()))
	}
}
