package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jarod-johnson-23/audiobot/pkg/audio/player"
	"github.com/jarod-johnson-23/audiobot/pkg/realtime"
	"github.com/jarod-johnson-23/audiobot/pkg/transcript"
)

// Sender delivers outbound events to the live transport.
type Sender interface {
	Send(event interface{}) error
}

// Searcher is the external search collaborator.
type Searcher interface {
	Search(ctx context.Context, arguments string) (string, error)
}

// Dispatcher routes inbound protocol events to the transcript store, the
// audio player and the session status. It is the only writer to that state:
// both the transport and tests feed events exclusively through Handle.
type Dispatcher struct {
	store  *transcript.Store
	player *player.Player
	sender Sender
	search Searcher

	onReady func()

	transcriptDone atomic.Bool

	// wg tracks in-flight function call invocations.
	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher. search may be nil when no function
// tool is installed; onReady may be nil.
func NewDispatcher(store *transcript.Store, p *player.Player, sender Sender, search Searcher, onReady func()) *Dispatcher {
	return &Dispatcher{
		store:   store,
		player:  p,
		sender:  sender,
		search:  search,
		onReady: onReady,
	}
}

// Handle applies one inbound event. Unrecognized event types are ignored for
// forward compatibility.
func (d *Dispatcher) Handle(event *realtime.ServerEvent) {
	switch event.Type {
	case realtime.EventTypeSessionCreated:
		slog.Info("session is fully active")
		if d.onReady != nil {
			d.onReady()
		}

	case realtime.EventTypeResponseTextDelta:
		if event.ItemID == "" {
			return
		}
		d.store.Append(event.ItemID, event.Delta)

	case realtime.EventTypeResponseTextDone:
		if event.ItemID != "" {
			d.store.Append(event.ItemID, "\n")
		}

	case realtime.EventTypeConversationItemCreated:
		d.handleItemCreated(event)

	case realtime.EventTypeResponseAudioDelta:
		if len(event.Audio) == 0 {
			return
		}
		d.player.Enqueue(event.Audio)

	case realtime.EventTypeResponseAudioDone:
		d.player.Finalize()

	case realtime.EventTypeResponseAudioTranscriptDelta:
		if event.ItemID == "" {
			return
		}
		d.store.Append(event.ItemID, event.Delta)

	case realtime.EventTypeResponseAudioTranscriptDone:
		d.transcriptDone.Store(true)

	case realtime.EventTypeConversationItemInputAudioTranscriptionCompleted:
		if event.ItemID == "" {
			slog.Warn("user transcript event without item_id")
			return
		}
		d.store.InsertUserTranscript(event.ItemID, event.Transcript, event.PreviousItemID)

	case realtime.EventTypeResponseFunctionCallArgumentsDone:
		d.wg.Add(1)
		go d.runFunctionCall(event.CallID, event.Arguments)

	case realtime.EventTypeError:
		if event.Err != nil {
			slog.Error("agent reported error", "code", event.Err.Code, "message", event.Err.Message)
		}

	default:
		// Forward compatibility: unknown tags are dropped silently.
	}
}

// handleItemCreated inserts or resolves a conversation item.
func (d *Dispatcher) handleItemCreated(event *realtime.ServerEvent) {
	item := event.Item
	if item == nil {
		return
	}

	switch item.Type {
	case "function_call":
		d.store.InsertFunctionCall(item.ID, item.CallID, event.PreviousItemID)
	case "function_call_output":
		d.store.CompleteFunctionCall(item.CallID, item.ID)
	default:
		d.store.InsertOrUpdate(item.ID, transcript.Role(item.Role), item.Text(), event.PreviousItemID)
	}
}

// runFunctionCall invokes the search collaborator and reports the result (or
// failure) back to the agent, then triggers a response. It runs on its own
// goroutine so the ingress path never blocks on the collaborator.
func (d *Dispatcher) runFunctionCall(callID, arguments string) {
	defer d.wg.Done()

	if d.search == nil {
		slog.Warn("function call received but no searcher configured", "call_id", callID)
		return
	}

	output, err := d.search.Search(context.Background(), arguments)
	if err != nil {
		slog.Error("search failed", "call_id", callID, "error", err)
		d.send(realtime.FunctionErrorEvent(callID))
		d.send(realtime.ResponseCreateEvent())
		return
	}

	d.send(realtime.FunctionOutputEvent(callID, output))
	d.send(realtime.ResponseCreateEvent())
}

// send forwards an outbound event, reporting (not retrying) failures.
func (d *Dispatcher) send(event map[string]interface{}) {
	if err := d.sender.Send(event); err != nil {
		slog.Error("failed to send event", "type", event["type"], "error", err)
	}
}

// TranscriptFinalized reports whether the last audio transcript completed.
func (d *Dispatcher) TranscriptFinalized() bool {
	return d.transcriptDone.Load()
}

// Wait blocks until all in-flight function calls have settled. Intended for
// shutdown and tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
