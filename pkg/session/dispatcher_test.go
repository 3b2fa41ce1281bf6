package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jarod-johnson-23/audiobot/pkg/audio/pcm"
	"github.com/jarod-johnson-23/audiobot/pkg/audio/player"
	"github.com/jarod-johnson-23/audiobot/pkg/realtime"
	"github.com/jarod-johnson-23/audiobot/pkg/transcript"
)

// fakeSender records every outbound event.
type fakeSender struct {
	mu     sync.Mutex
	events []map[string]interface{}
	err    error
}

func (s *fakeSender) Send(event interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event.(map[string]interface{}))
	return nil
}

func (s *fakeSender) sent() []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]interface{}, len(s.events))
	copy(out, s.events)
	return out
}

// fakeSearcher returns a scripted result or error.
type fakeSearcher struct {
	result string
	err    error

	mu   sync.Mutex
	args []string
}

func (f *fakeSearcher) Search(_ context.Context, arguments string) (string, error) {
	f.mu.Lock()
	f.args = append(f.args, arguments)
	f.mu.Unlock()
	return f.result, f.err
}

func newTestPlayer() *player.Player {
	return player.New(player.PCM16Decoder(pcm.L16Mono24K), pcm.Discard)
}

func newTestDispatcher(search Searcher, onReady func()) (*Dispatcher, *transcript.Store, *fakeSender) {
	store := transcript.NewStore()
	sender := &fakeSender{}
	d := NewDispatcher(store, newTestPlayer(), sender, search, onReady)
	return d, store, sender
}

func TestHandleSessionCreated(t *testing.T) {
	ready := false
	d, _, _ := newTestDispatcher(nil, func() { ready = true })

	d.Handle(&realtime.ServerEvent{Type: realtime.EventTypeSessionCreated})

	if !ready {
		t.Error("onReady was not invoked")
	}
}

func TestHandleTextDeltaFlow(t *testing.T) {
	d, store, _ := newTestDispatcher(nil, nil)

	d.Handle(&realtime.ServerEvent{
		Type:           realtime.EventTypeConversationItemCreated,
		PreviousItemID: "",
		Item:           &realtime.ConversationItem{ID: "item_1", Type: "message", Role: "assistant"},
	})
	d.Handle(&realtime.ServerEvent{Type: realtime.EventTypeResponseTextDelta, ItemID: "item_1", Delta: "hel"})
	d.Handle(&realtime.ServerEvent{Type: realtime.EventTypeResponseTextDelta, ItemID: "item_1", Delta: "lo"})

	msgs := store.Live()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Text != "hello" {
		t.Errorf("text = %q, want hello", msgs[0].Text)
	}
}

func TestHandleAudioTranscriptDelta(t *testing.T) {
	d, store, _ := newTestDispatcher(nil, nil)

	d.Handle(&realtime.ServerEvent{
		Type: realtime.EventTypeConversationItemCreated,
		Item: &realtime.ConversationItem{ID: "item_1", Type: "message", Role: "assistant"},
	})
	d.Handle(&realtime.ServerEvent{Type: realtime.EventTypeResponseAudioTranscriptDelta, ItemID: "item_1", Delta: "spoken"})
	d.Handle(&realtime.ServerEvent{Type: realtime.EventTypeResponseAudioTranscriptDone})

	if got := store.Live()[0].Text; got != "spoken" {
		t.Errorf("text = %q", got)
	}
	if !d.TranscriptFinalized() {
		t.Error("transcript should be finalized")
	}
}

func TestHandleDeltaWithoutItemIDIgnored(t *testing.T) {
	d, store, _ := newTestDispatcher(nil, nil)

	d.Handle(&realtime.ServerEvent{Type: realtime.EventTypeResponseTextDelta, Delta: "orphan"})

	if store.Len() != 0 {
		t.Errorf("store has %d messages, want 0", store.Len())
	}
}

func TestHandleUserTranscript(t *testing.T) {
	d, store, _ := newTestDispatcher(nil, nil)

	d.Handle(&realtime.ServerEvent{
		Type:       realtime.EventTypeConversationItemInputAudioTranscriptionCompleted,
		ItemID:     "item_u",
		Transcript: "what is this",
	})

	msgs := store.Live()
	if len(msgs) != 1 || msgs[0].Role != transcript.RoleUser {
		t.Fatalf("messages = %+v", msgs)
	}
	if msgs[0].Text != "what is this" {
		t.Errorf("text = %q", msgs[0].Text)
	}
}

func TestHandleBlankUserTranscript(t *testing.T) {
	d, store, _ := newTestDispatcher(nil, nil)

	d.Handle(&realtime.ServerEvent{
		Type:       realtime.EventTypeConversationItemInputAudioTranscriptionCompleted,
		ItemID:     "item_u",
		Transcript: "  \n",
	})

	if got := store.Live()[0].Text; got != transcript.InaudibleText {
		t.Errorf("text = %q, want the inaudible placeholder", got)
	}
}

func TestHandleAudioDelta(t *testing.T) {
	d, _, _ := newTestDispatcher(nil, nil)

	d.Handle(&realtime.ServerEvent{Type: realtime.EventTypeResponseAudioDelta, Audio: make([]byte, 480)})
	d.Handle(&realtime.ServerEvent{Type: realtime.EventTypeResponseAudioDone})

	deadline := time.After(time.Second)
	for d.player.Playing() {
		select {
		case <-deadline:
			t.Fatal("player never drained")
		case <-time.After(time.Millisecond):
		}
	}
	if !d.player.Done() {
		t.Error("player should report done after the final chunk")
	}
}

func TestHandleFunctionCallSuccess(t *testing.T) {
	search := &fakeSearcher{result: `{"sections":[]}`}
	d, store, sender := newTestDispatcher(search, nil)

	d.Handle(&realtime.ServerEvent{
		Type: realtime.EventTypeConversationItemCreated,
		Item: &realtime.ConversationItem{ID: "item_f", Type: "function_call", CallID: "call_1"},
	})
	d.Handle(&realtime.ServerEvent{
		Type:      realtime.EventTypeResponseFunctionCallArgumentsDone,
		CallID:    "call_1",
		Arguments: `{"query":"chapters"}`,
	})
	d.Wait()

	search.mu.Lock()
	args := search.args
	search.mu.Unlock()
	if len(args) != 1 || args[0] != `{"query":"chapters"}` {
		t.Errorf("search arguments = %v", args)
	}

	sent := sender.sent()
	if len(sent) != 2 {
		t.Fatalf("sent %d events, want 2", len(sent))
	}
	if sent[0]["type"] != realtime.EventTypeConversationItemCreate {
		t.Errorf("first event type = %v", sent[0]["type"])
	}
	item := sent[0]["item"].(map[string]interface{})
	if item["call_id"] != "call_1" || item["output"] != `{"sections":[]}` {
		t.Errorf("output item = %v", item)
	}
	if sent[1]["type"] != realtime.EventTypeResponseCreate {
		t.Errorf("second event type = %v", sent[1]["type"])
	}

	// The placeholder stays pending until the output item arrives.
	if got := store.Live()[0].Text; got != transcript.FunctionPendingText {
		t.Errorf("placeholder = %q", got)
	}
	d.Handle(&realtime.ServerEvent{
		Type: realtime.EventTypeConversationItemCreated,
		Item: &realtime.ConversationItem{ID: "item_o", Type: "function_call_output", CallID: "call_1"},
	})
	if got := store.Live()[0].Text; got != transcript.FunctionSuccessText {
		t.Errorf("resolved placeholder = %q", got)
	}
}

func TestHandleFunctionCallFailure(t *testing.T) {
	search := &fakeSearcher{err: errors.New("backend down")}
	d, _, sender := newTestDispatcher(search, nil)

	d.Handle(&realtime.ServerEvent{
		Type:      realtime.EventTypeResponseFunctionCallArgumentsDone,
		CallID:    "call_1",
		Arguments: `{"query":"x"}`,
	})
	d.Wait()

	sent := sender.sent()
	if len(sent) != 2 {
		t.Fatalf("sent %d events, want 2", len(sent))
	}
	item := sent[0]["item"].(map[string]interface{})
	if item["output"] != realtime.FunctionErrorOutput {
		t.Errorf("output = %v, want the fixed error payload", item["output"])
	}
	if sent[1]["type"] != realtime.EventTypeResponseCreate {
		t.Errorf("second event type = %v", sent[1]["type"])
	}
}

func TestHandleFunctionCallWithoutSearcher(t *testing.T) {
	d, _, sender := newTestDispatcher(nil, nil)

	d.Handle(&realtime.ServerEvent{
		Type:      realtime.EventTypeResponseFunctionCallArgumentsDone,
		CallID:    "call_1",
		Arguments: "{}",
	})
	d.Wait()

	if len(sender.sent()) != 0 {
		t.Errorf("sent events without a searcher: %v", sender.sent())
	}
}

func TestHandleUnknownEventIgnored(t *testing.T) {
	d, store, sender := newTestDispatcher(nil, nil)

	d.Handle(&realtime.ServerEvent{Type: "future.event.type"})
	d.Handle(&realtime.ServerEvent{Type: realtime.EventTypeRateLimitsUpdated})

	if store.Len() != 0 || len(sender.sent()) != 0 {
		t.Error("unknown events must be dropped silently")
	}
}
