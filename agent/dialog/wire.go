package dialog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	"github.com/tanpawarit/voice-diary/agent/nlu"
	statex "github.com/tanpawarit/voice-diary/agent/state"
)

var validate = validator.New()

// Envelope is one inbound webhook payload. The session object is kept raw so
// it can be echoed verbatim; the prior SessionPayload is decoded lazily so a
// broken one can still be answered.
type Envelope struct {
	Version    string           `json:"version" validate:"required"`
	Meta       Meta             `json:"meta"`
	RawSession json.RawMessage  `json:"session"`
	Session    SessionInfo      `json:"-"`
	Request    UtteranceRequest `json:"request"`
	State      StateEnvelope    `json:"state"`
}

type Meta struct {
	Locale   string `json:"locale"`
	Timezone string `json:"timezone"`
}

type SessionInfo struct {
	New       bool      `json:"new"`
	SessionID string    `json:"session_id"`
	MessageID int64     `json:"message_id"`
	User      *UserInfo `json:"user" validate:"required"`
}

type UserInfo struct {
	UserID string `json:"user_id" validate:"required"`
}

type UtteranceRequest struct {
	Type              string     `json:"type"`
	Command           string     `json:"command"`
	OriginalUtterance string     `json:"original_utterance"`
	NLU               nlu.RawNLU `json:"nlu"`
}

type StateEnvelope struct {
	Session json.RawMessage `json:"session"`
}

// WebhookResponse is the outbound payload.
type WebhookResponse struct {
	Version      string          `json:"version"`
	Session      json.RawMessage `json:"session,omitempty"`
	Response     ResponseBody    `json:"response"`
	SessionState *statex.Payload `json:"session_state"`
}

type ResponseBody struct {
	Text       string `json:"text"`
	EndSession bool   `json:"end_session"`
}

// DecodeEnvelope parses and validates the parts of a payload every turn needs.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", contractx.ErrMalformedPayload, err)
	}
	if isEmptyJSON(env.RawSession) {
		return nil, fmt.Errorf("%w: session is missing", contractx.ErrMalformedPayload)
	}
	if err := sonic.Unmarshal(env.RawSession, &env.Session); err != nil {
		return nil, fmt.Errorf("%w: decode session: %v", contractx.ErrMalformedPayload, err)
	}
	if err := validate.Struct(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrMalformedPayload, err)
	}
	return &env, nil
}

type wirePayload struct {
	Status      *statex.Status `json:"dialog_status"`
	Persistence []string       `json:"persistence"`
	UserData    map[string]any `json:"user_data"`
}

// DecodePayload parses the SessionPayload echoed back by the platform.
func DecodePayload(raw json.RawMessage) (*statex.Payload, error) {
	if isEmptyJSON(raw) {
		return nil, fmt.Errorf("%w: state.session is missing", contractx.ErrMalformedPayload)
	}

	var w wirePayload
	if err := sonic.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: decode state.session: %w", contractx.ErrMalformedPayload, err)
	}
	if w.Status == nil {
		return nil, fmt.Errorf("%w: dialog_status is missing", contractx.ErrMalformedPayload)
	}

	p := &statex.Payload{
		Status:      *w.Status,
		Persistence: w.Persistence,
		UserData:    w.UserData,
	}
	p.EnsureUserData()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func EncodeResponse(resp *WebhookResponse) ([]byte, error) {
	out, err := sonic.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return out, nil
}

// Fallback answers a turn that failed. The prior payload is echoed unchanged
// when it decoded, so the user can retry the same step.
func Fallback(env *Envelope, prior *statex.Payload, text string) *WebhookResponse {
	payload := prior.Clone()
	if payload == nil {
		payload = statex.NewPayload()
	}
	return &WebhookResponse{
		Version:      env.Version,
		Session:      env.RawSession,
		Response:     ResponseBody{Text: text},
		SessionState: payload,
	}
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}"))
}
