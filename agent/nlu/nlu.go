// Package nlu holds the typed view of the platform's language-understanding
// output: tokens, entities and intents with slots.
package nlu

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
	contractx "github.com/tanpawarit/voice-diary/agent/contract"
)

// Entity type tags as sent by the platform.
const (
	TypeNumber   = "YANDEX.NUMBER"
	TypeString   = "YANDEX.STRING"
	TypeGeo      = "YANDEX.GEO"
	TypeName     = "YANDEX.FIO"
	TypeDateTime = "YANDEX.DATETIME"
)

// TokenSpan addresses tokens [Start, End) of the utterance.
type TokenSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Entity is one of *NumberEntity, *StringEntity, *GeoEntity, *NameEntity,
// *DateTimeEntity. The set is closed.
type Entity interface {
	Type() string
	Span() TokenSpan
	entity()
}

type NumberEntity struct {
	span  TokenSpan
	Value float64
}

type StringEntity struct {
	span  TokenSpan
	Value string
}

type GeoEntity struct {
	span        TokenSpan
	Country     string `mapstructure:"country"`
	City        string `mapstructure:"city"`
	Street      string `mapstructure:"street"`
	HouseNumber string `mapstructure:"house_number"`
	Airport     string `mapstructure:"airport"`
}

type NameEntity struct {
	span           TokenSpan
	FirstName      string `mapstructure:"first_name"`
	PatronymicName string `mapstructure:"patronymic_name"`
	LastName       string `mapstructure:"last_name"`
}

func (e *NumberEntity) Type() string   { return TypeNumber }
func (e *StringEntity) Type() string   { return TypeString }
func (e *GeoEntity) Type() string      { return TypeGeo }
func (e *NameEntity) Type() string     { return TypeName }
func (e *DateTimeEntity) Type() string { return TypeDateTime }

func (e *NumberEntity) Span() TokenSpan   { return e.span }
func (e *StringEntity) Span() TokenSpan   { return e.span }
func (e *GeoEntity) Span() TokenSpan      { return e.span }
func (e *NameEntity) Span() TokenSpan     { return e.span }
func (e *DateTimeEntity) Span() TokenSpan { return e.span }

func (*NumberEntity) entity()   {}
func (*StringEntity) entity()   {}
func (*GeoEntity) entity()      {}
func (*NameEntity) entity()     {}
func (*DateTimeEntity) entity() {}

type Intent struct {
	Name  string
	Slots map[string]Entity
}

func (i Intent) Slot(name string) (Entity, bool) {
	e, ok := i.Slots[name]
	return e, ok
}

// StringSlot returns the value of a free-string slot.
func (i Intent) StringSlot(name string) (string, bool) {
	e, ok := i.Slots[name].(*StringEntity)
	if !ok || e.Value == "" {
		return "", false
	}
	return e.Value, true
}

type NLU struct {
	Tokens   []string
	Entities []Entity
	Intents  map[string]Intent
}

// IntentNames returns the fired intent names in lexicographic order.
func (n NLU) IntentNames() []string {
	names := make([]string, 0, len(n.Intents))
	for name := range n.Intents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Raw wire shapes.

type RawEntity struct {
	Type   string    `json:"type"`
	Tokens TokenSpan `json:"tokens"`
	Value  any       `json:"value"`
}

type RawIntent struct {
	Slots map[string]RawEntity `json:"slots"`
}

type RawNLU struct {
	Tokens   []string             `json:"tokens"`
	Entities []RawEntity          `json:"entities"`
	Intents  map[string]RawIntent `json:"intents"`
}

type constructor func(span TokenSpan, value any) (Entity, error)

var constructors = map[string]constructor{
	TypeNumber:   newNumber,
	TypeString:   newString,
	TypeGeo:      newGeo,
	TypeName:     newName,
	TypeDateTime: newDateTime,
}

// NewEntity builds the variant named by raw.Type. An unknown tag fails the
// whole parse: dropping an entity would silently corrupt slot resolution.
func NewEntity(raw RawEntity) (Entity, error) {
	build, ok := constructors[raw.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", contractx.ErrUnknownEntityType, raw.Type)
	}
	e, err := build(raw.Tokens, raw.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s value: %v", contractx.ErrMalformedPayload, raw.Type, err)
	}
	return e, nil
}

func Build(raw RawNLU) (NLU, error) {
	out := NLU{
		Tokens:   append([]string(nil), raw.Tokens...),
		Entities: make([]Entity, 0, len(raw.Entities)),
		Intents:  make(map[string]Intent, len(raw.Intents)),
	}

	for _, re := range raw.Entities {
		e, err := NewEntity(re)
		if err != nil {
			return NLU{}, err
		}
		out.Entities = append(out.Entities, e)
	}

	for name, ri := range raw.Intents {
		intent := Intent{Name: name, Slots: make(map[string]Entity, len(ri.Slots))}
		for slot, re := range ri.Slots {
			e, err := NewEntity(re)
			if err != nil {
				return NLU{}, fmt.Errorf("intent %s slot %s: %w", name, slot, err)
			}
			intent.Slots[slot] = e
		}
		out.Intents[name] = intent
	}

	return out, nil
}

func newNumber(span TokenSpan, value any) (Entity, error) {
	e := &NumberEntity{span: span}
	if err := mapstructure.Decode(value, &e.Value); err != nil {
		return nil, err
	}
	return e, nil
}

func newString(span TokenSpan, value any) (Entity, error) {
	e := &StringEntity{span: span}
	if err := mapstructure.Decode(value, &e.Value); err != nil {
		return nil, err
	}
	return e, nil
}

func newGeo(span TokenSpan, value any) (Entity, error) {
	e := &GeoEntity{span: span}
	if err := mapstructure.Decode(value, e); err != nil {
		return nil, err
	}
	return e, nil
}

func newName(span TokenSpan, value any) (Entity, error) {
	e := &NameEntity{span: span}
	if err := mapstructure.Decode(value, e); err != nil {
		return nil, err
	}
	return e, nil
}
