package dialog

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	"github.com/tanpawarit/voice-diary/agent/nlu"
	statex "github.com/tanpawarit/voice-diary/agent/state"
)

// Request is the read-only view of one turn. Status is the state resolved by
// the Policy, not necessarily the one the platform echoed.
type Request struct {
	Version      string
	UserID       string
	SessionID    string
	MessageID    int64
	Timezone     string
	IsNewSession bool
	Utterance    string
	Command      string
	NLU          nlu.NLU

	Status     statex.Status
	Overridden bool

	inbound *statex.Payload
}

// NewRequest builds the turn view from a decoded envelope. A new session
// ignores whatever state the platform sent.
func NewRequest(env *Envelope, policy *Policy) (*Request, error) {
	inbound := statex.NewPayload()
	if !env.Session.New {
		p, err := DecodePayload(env.State.Session)
		if err != nil {
			return nil, err
		}
		inbound = p
	}

	parsed, err := nlu.Build(env.Request.NLU)
	if err != nil {
		return nil, err
	}

	st, overridden := policy.Resolve(env.Session.New, inbound.Status, parsed)

	return &Request{
		Version:      env.Version,
		UserID:       env.Session.User.UserID,
		SessionID:    env.Session.SessionID,
		MessageID:    env.Session.MessageID,
		Timezone:     env.Meta.Timezone,
		IsNewSession: env.Session.New,
		Utterance:    env.Request.OriginalUtterance,
		Command:      strings.ToLower(strings.TrimSpace(env.Request.Command)),
		NLU:          parsed,
		Status:       st,
		Overridden:   overridden,
		inbound:      inbound,
	}, nil
}

// Data returns a copy of the carried user data.
func (r *Request) Data() map[string]any {
	return statex.CloneData(r.inbound.UserData)
}

func (r *Request) Value(key string) (any, bool) {
	v, ok := r.inbound.UserData[key]
	if !ok {
		return nil, false
	}
	return statex.CloneValue(v), true
}

func (r *Request) String(key string) (string, bool) {
	s, ok := r.inbound.UserData[key].(string)
	return s, ok
}

// RequireString returns a carried string the current state cannot run without.
func (r *Request) RequireString(key string) (string, error) {
	s, ok := r.String(key)
	if !ok {
		return "", fmt.Errorf("%w: %q in %v", contractx.ErrMissingCarriedData, key, r.Status)
	}
	return s, nil
}

// Decode copies a carried value into out, converting loosely typed JSON
// values (float64 numbers, string dates) where needed.
func (r *Request) Decode(key string, out any) error {
	v, ok := r.inbound.UserData[key]
	if !ok {
		return fmt.Errorf("%w: %q in %v", contractx.ErrMissingCarriedData, key, r.Status)
	}
	if err := mapstructure.WeakDecode(v, out); err != nil {
		return fmt.Errorf("%w: %q: %v", contractx.ErrMalformedPayload, key, err)
	}
	return nil
}

func (r *Request) HasIntent(name string) bool {
	_, ok := r.NLU.Intents[name]
	return ok
}

func (r *Request) Intent(name string) (nlu.Intent, bool) {
	i, ok := r.NLU.Intents[name]
	return i, ok
}

// Inbound returns a copy of the payload the platform echoed.
func (r *Request) Inbound() *statex.Payload {
	return r.inbound.Clone()
}

// Persisted is the dialog state stored by the previous turn.
func (r *Request) Persisted() statex.Status {
	return r.inbound.Status
}
