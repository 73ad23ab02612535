package state

import (
	"fmt"
	"slices"
	"sort"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
)

// Payload is the only state that outlives a turn. The platform stores it and
// echoes it back on the next request.
//   - Status: the dialog state the next turn starts from
//   - UserData: data for the next turn only
//   - Persistence: keys of UserData that keep travelling forward until dropped
type Payload struct {
	Status      Status         `json:"dialog_status"`
	Persistence []string       `json:"persistence"`
	UserData    map[string]any `json:"user_data"`
}

func NewPayload() *Payload {
	return &Payload{
		Status:      StatusIdle,
		Persistence: []string{},
		UserData:    make(map[string]any, 4),
	}
}

// EnsureUserData makes sure p.UserData and p.Persistence are initialized.
func (p *Payload) EnsureUserData() {
	if p.UserData == nil {
		p.UserData = make(map[string]any, 4)
	}
	if p.Persistence == nil {
		p.Persistence = []string{}
	}
}

func (p *Payload) IsPersistent(key string) bool {
	return p != nil && slices.Contains(p.Persistence, key)
}

// Put merges entries into UserData. With persistent set, every key is also
// marked persistent. A key that is already persistent stays persistent.
func (p *Payload) Put(entries map[string]any, persistent bool) {
	p.EnsureUserData()

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		p.UserData[k] = CloneValue(entries[k])
		if persistent && !p.IsPersistent(k) {
			p.Persistence = append(p.Persistence, k)
		}
	}
}

// Drop removes persistent keys from both Persistence and UserData. Nothing is
// removed unless every key is persistent.
func (p *Payload) Drop(keys ...string) error {
	for _, k := range keys {
		if !p.IsPersistent(k) {
			return fmt.Errorf("%w: %q", contractx.ErrKeyNotPersistent, k)
		}
	}
	for _, k := range keys {
		p.Persistence = slices.DeleteFunc(p.Persistence, func(v string) bool { return v == k })
		delete(p.UserData, k)
	}
	return nil
}

// PersistentData returns a copy of the persistent subset of UserData.
func (p *Payload) PersistentData() map[string]any {
	out := make(map[string]any, len(p.Persistence))
	for _, k := range p.Persistence {
		out[k] = CloneValue(p.UserData[k])
	}
	return out
}

func (p *Payload) Clone() *Payload {
	if p == nil {
		return nil
	}
	return &Payload{
		Status:      p.Status,
		Persistence: slices.Clone(p.Persistence),
		UserData:    CloneData(p.UserData),
	}
}

func (p *Payload) Validate() error {
	if !p.Status.Valid() {
		return fmt.Errorf("%w: %d", contractx.ErrInvalidState, int(p.Status))
	}
	seen := make(map[string]struct{}, len(p.Persistence))
	for _, k := range p.Persistence {
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: persistence lists %q twice", contractx.ErrMalformedPayload, k)
		}
		seen[k] = struct{}{}
		if _, ok := p.UserData[k]; !ok {
			return fmt.Errorf("%w: persistent key %q has no user_data entry", contractx.ErrMalformedPayload, k)
		}
	}
	return nil
}

// CloneData deep-copies a carried-data mapping as produced by a JSON decoder.
func CloneData(in map[string]any) map[string]any {
	if in == nil {
		return make(map[string]any)
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies maps and slices decoded from JSON.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneData(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = CloneValue(t[i])
		}
		return out
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}
