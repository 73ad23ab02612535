package dialog

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	statex "github.com/tanpawarit/voice-diary/agent/state"
)

// Response accumulates one turn's answer. Unless a handler says otherwise the
// next state is IDLE and nothing is carried forward except what CarryOver
// copies.
type Response struct {
	version  string
	messages []string
	payload  *statex.Payload
}

func NewResponse(req *Request) *Response {
	return &Response{
		version: req.Version,
		payload: statex.NewPayload(),
	}
}

// CarryOver copies the persistent part of the inbound payload. Nothing is
// carried into a new session or out of an interrupted flow.
func (r *Response) CarryOver(req *Request) {
	if req.IsNewSession || req.Overridden {
		return
	}
	r.payload.Put(req.inbound.PersistentData(), true)
}

// AppendMessage adds a line to the reply text.
func (r *Response) AppendMessage(msg string) error {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return contractx.ErrEmptyMessage
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *Response) SetNextStatus(st statex.Status) error {
	if !st.Valid() {
		return fmt.Errorf("%w: %d", contractx.ErrInvalidState, int(st))
	}
	r.payload.Status = st
	return nil
}

// PersistData stores entries for the next turn. Persistent entries keep
// travelling forward until dropped.
func (r *Response) PersistData(entries map[string]any, persistent bool) {
	r.payload.Put(entries, persistent)
}

// DropPersistentData removes persistent keys. It fails without removing
// anything if one of the keys is not persistent.
func (r *Response) DropPersistentData(keys ...string) error {
	return r.payload.Drop(keys...)
}

func (r *Response) NextStatus() statex.Status {
	return r.payload.Status
}

func (r *Response) Text() string {
	return strings.Join(r.messages, "\n")
}

// Payload returns a copy of the payload built so far.
func (r *Response) Payload() *statex.Payload {
	return r.payload.Clone()
}

// Finalize produces the wire response. The session is never ended from here.
func (r *Response) Finalize(session []byte) (*WebhookResponse, error) {
	if len(r.messages) == 0 {
		return nil, fmt.Errorf("%w: no reply text", contractx.ErrEmptyMessage)
	}
	if err := r.payload.Validate(); err != nil {
		return nil, err
	}
	return &WebhookResponse{
		Version:      r.version,
		Session:      session,
		Response:     ResponseBody{Text: r.Text(), EndSession: false},
		SessionState: r.payload.Clone(),
	}, nil
}
