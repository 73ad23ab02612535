package dialog

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	"github.com/tanpawarit/voice-diary/agent/nlu"
	statex "github.com/tanpawarit/voice-diary/agent/state"
)

// Default intent names.
const (
	IntentExit         = "exit"
	IntentCancel       = "cancel"
	IntentNewNote      = "new_note"
	IntentDelNote      = "del_note"
	IntentFindNote     = "find_note"
	IntentListAllNotes = "list_all_notes"
	IntentListNext     = "list_next"
)

// Policy decides which state a turn runs in.
//
// Precedence, first match wins:
//  1. new session: IDLE
//  2. a flow is in progress and an interrupt intent fired: IDLE, overridden
//  3. persisted state is IDLE and a trigger intent fired: the trigger's state,
//     the lexicographically smallest intent name winning when several fire
//  4. the persisted state
type Policy struct {
	interrupts   []string
	triggers     map[string]statex.Status
	triggerOrder []string
}

func NewPolicy(interrupts []string, triggers map[string]statex.Status) (*Policy, error) {
	if len(interrupts) == 0 {
		return nil, fmt.Errorf("%w: at least one interrupt intent is required", contractx.ErrConfiguration)
	}

	p := &Policy{
		interrupts:   slices.Sorted(slices.Values(interrupts)),
		triggers:     make(map[string]statex.Status, len(triggers)),
		triggerOrder: make([]string, 0, len(triggers)),
	}
	for intent, st := range triggers {
		if !st.Valid() || st == statex.StatusIdle {
			return nil, fmt.Errorf("%w: trigger %q maps to %v", contractx.ErrConfiguration, intent, st)
		}
		if slices.Contains(p.interrupts, intent) {
			return nil, fmt.Errorf("%w: %q is both an interrupt and a trigger", contractx.ErrConfiguration, intent)
		}
		p.triggers[intent] = st
		p.triggerOrder = append(p.triggerOrder, intent)
	}
	sort.Strings(p.triggerOrder)
	return p, nil
}

func DefaultPolicy() *Policy {
	p, err := NewPolicy(
		[]string{IntentExit, IntentCancel},
		map[string]statex.Status{
			IntentNewNote:      statex.StatusNewNote,
			IntentDelNote:      statex.StatusDelNote,
			IntentFindNote:     statex.StatusFindNote,
			IntentListAllNotes: statex.StatusListAllNotes,
			IntentListNext:     statex.StatusListNext,
		},
	)
	if err != nil {
		panic(err)
	}
	return p
}

// Resolve returns the current state and whether an interrupt overrode a flow.
func (p *Policy) Resolve(isNewSession bool, persisted statex.Status, n nlu.NLU) (statex.Status, bool) {
	if isNewSession {
		return statex.StatusIdle, false
	}

	if persisted != statex.StatusIdle {
		for _, name := range p.interrupts {
			if _, ok := n.Intents[name]; ok {
				return statex.StatusIdle, true
			}
		}
		return persisted, false
	}

	for _, name := range p.triggerOrder {
		if _, ok := n.Intents[name]; ok {
			return p.triggers[name], false
		}
	}
	return statex.StatusIdle, false
}

func (p *Policy) Interrupts() []string {
	return slices.Clone(p.interrupts)
}

func (p *Policy) Triggers() map[string]statex.Status {
	return maps.Clone(p.triggers)
}

// TriggerOrder returns trigger intent names in tie-break order.
func (p *Policy) TriggerOrder() []string {
	return slices.Clone(p.triggerOrder)
}
