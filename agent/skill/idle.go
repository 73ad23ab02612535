package skill

import (
	"context"

	dialogx "github.com/tanpawarit/voice-diary/agent/dialog"
)

func (s *Skill) idle(_ context.Context, req *dialogx.Request, resp *dialogx.Response) error {
	switch {
	case req.IsNewSession:
		return resp.AppendMessage(msgWelcome)
	case req.Overridden, req.HasIntent(dialogx.IntentExit), req.HasIntent(dialogx.IntentCancel):
		return resp.AppendMessage(msgCancelled)
	default:
		return resp.AppendMessage(msgUnrecognized)
	}
}
