package orchestratornode

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	dialogx "github.com/tanpawarit/voice-diary/agent/dialog"
	statex "github.com/tanpawarit/voice-diary/agent/state"
)

const continuingTurn = `{
	"version": "1.0",
	"session": {"new": false, "session_id": "s", "message_id": 3, "user": {"user_id": "u"}},
	"request": {"command": "поход", "original_utterance": "Поход",
		"nlu": {"tokens": ["поход"], "entities": [], "intents": {}}},
	"state": {"session": {"dialog_status": "FIND_NOTE_FORM_INPUT", "persistence": ["title"],
		"user_data": {"title": "поход", "date": "2026-10-18"}}}
}`

func decodeEnvelope(t *testing.T, body string) *dialogx.Envelope {
	t.Helper()
	env, err := dialogx.DecodeEnvelope([]byte(body))
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v", err)
	}
	return env
}

func TestNodesRunOneTurn(t *testing.T) {
	t.Parallel()

	reg := dialogx.NewRegistry()
	reg.MustRegister(statex.StatusFindNoteFormInput, func(_ context.Context, req *dialogx.Request, resp *dialogx.Response) error {
		if err := resp.SetNextStatus(statex.StatusFindNoteFormInput); err != nil {
			return err
		}
		return resp.AppendMessage("ok " + req.Command)
	})

	state, err := BuildRequest(GraphInput{Envelope: decodeEnvelope(t, continuingTurn)}, dialogx.DefaultPolicy())
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}
	if state.Request.Status != statex.StatusFindNoteFormInput {
		t.Fatalf("status = %v", state.Request.Status)
	}

	if state, err = CarryOver(state); err != nil {
		t.Fatalf("CarryOver() error = %v", err)
	}
	if state, err = DispatchHandler(context.Background(), state, reg); err != nil {
		t.Fatalf("DispatchHandler() error = %v", err)
	}
	out, err := FinalizeReply(state)
	if err != nil {
		t.Fatalf("FinalizeReply() error = %v", err)
	}

	if out.Response.Response.Text != "ok поход" {
		t.Fatalf("text = %q", out.Response.Response.Text)
	}
	data := out.Response.SessionState.UserData
	if data["title"] != "поход" {
		t.Fatalf("persistent title not carried: %v", data)
	}
	if _, ok := data["date"]; ok {
		t.Fatalf("non-persistent date carried: %v", data)
	}
}

func TestDispatchUnboundState(t *testing.T) {
	t.Parallel()

	state, err := BuildRequest(GraphInput{Envelope: decodeEnvelope(t, continuingTurn)}, dialogx.DefaultPolicy())
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}
	if state, err = CarryOver(state); err != nil {
		t.Fatalf("CarryOver() error = %v", err)
	}

	_, err = DispatchHandler(context.Background(), state, dialogx.NewRegistry())
	if !errors.Is(err, contractx.ErrUnboundState) {
		t.Fatalf("DispatchHandler() error = %v, want ErrUnboundState", err)
	}
}

func TestNodesRejectNilState(t *testing.T) {
	t.Parallel()

	if _, err := BuildRequest(GraphInput{}, dialogx.DefaultPolicy()); !errors.Is(err, contractx.ErrMalformedPayload) {
		t.Fatalf("BuildRequest() error = %v", err)
	}
	if _, err := CarryOver(nil); !errors.Is(err, ErrNilGraphState) {
		t.Fatalf("CarryOver() error = %v", err)
	}
	if _, err := DispatchHandler(context.Background(), &GraphState{}, dialogx.NewRegistry()); !errors.Is(err, ErrNilGraphState) {
		t.Fatalf("DispatchHandler() error = %v", err)
	}
	if _, err := FinalizeReply(&GraphState{}); !errors.Is(err, ErrNilGraphState) {
		t.Fatalf("FinalizeReply() error = %v", err)
	}
}
