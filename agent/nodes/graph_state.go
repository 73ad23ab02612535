package orchestratornode

import (
	"errors"

	dialogx "github.com/tanpawarit/voice-diary/agent/dialog"
	statex "github.com/tanpawarit/voice-diary/agent/state"
)

var ErrNilGraphState = errors.New("graph state is nil")

type GraphInput struct {
	Envelope *dialogx.Envelope
}

type GraphOutput struct {
	Response   *dialogx.WebhookResponse
	Status     statex.Status
	NextStatus statex.Status
	Overridden bool
}

// GraphState travels through the turn graph. Request is set by
// build_request, Response by carry_over.
type GraphState struct {
	Envelope *dialogx.Envelope
	Request  *dialogx.Request
	Response *dialogx.Response
}
