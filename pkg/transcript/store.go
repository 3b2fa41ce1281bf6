// Package transcript maintains the ordered conversation transcript.
//
// Messages are keyed by the protocol's opaque item ID. Display order follows
// the protocol's previous-item linkage, not arrival order: a new item is
// inserted right after the item it names as predecessor. Delta appends are
// idempotent no-ops for unknown items so that out-of-order delivery never
// fabricates state.
//
// A session restart archives the live set: archived messages keep their
// relative order, stay visible and are never mutated again.
package transcript

import (
	"strings"
	"sync"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleFunction  Role = "function"
)

// Display sentinels for function call progress and inaudible user audio.
const (
	FunctionPendingText = "Retrieving Function Results..."
	FunctionSuccessText = "Function call successful"
	InaudibleText       = "*Inaudible Text*"
)

// Message is one transcript entry.
type Message struct {
	// ItemID is the protocol item identifier, unique within the live set.
	ItemID string

	// Role is the message author.
	Role Role

	// Text is the (possibly still streaming) display text.
	Text string

	// CreatedAt is assigned once at first insertion and never updated.
	CreatedAt time.Time

	// CallID correlates a function placeholder with its eventual output.
	// Not displayed.
	CallID string

	// Old marks a message archived by a session restart.
	Old bool
}

// Store is the transcript store. All methods are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	live     []*Message
	archived []*Message

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// SetClock overrides the timestamp source. Intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// InsertOrUpdate inserts a message or updates an existing one.
//
// If itemID is already present, role (when non-empty) and text replace the
// stored values; CreatedAt never changes. Otherwise the message is inserted
// at the head when previousItemID is empty, immediately after the named item
// when it is known, or at the tail when it is not — the ordering guarantee
// is best-effort under out-of-order delivery.
func (s *Store) InsertOrUpdate(itemID string, role Role, text, previousItemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg := s.find(itemID); msg != nil {
		if role != "" {
			msg.Role = role
		}
		msg.Text = text
		return
	}

	s.insert(&Message{
		ItemID:    itemID,
		Role:      role,
		Text:      text,
		CreatedAt: s.now(),
	}, previousItemID)
}

// Append appends a text delta to an existing message. Unknown itemIDs are a
// silent no-op: appends never create messages.
func (s *Store) Append(itemID, delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg := s.find(itemID); msg != nil {
		msg.Text += delta
	}
}

// AddSystem appends a system message to the live set.
func (s *Store) AddSystem(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.live = append(s.live, &Message{
		Role:      RoleSystem,
		Text:      text,
		CreatedAt: s.now(),
	})
}

// InsertUserTranscript records a completed user audio transcription,
// substituting the inaudible sentinel when the transcript is empty or
// whitespace.
func (s *Store) InsertUserTranscript(itemID, transcript, previousItemID string) {
	text := transcript
	if strings.TrimSpace(text) == "" {
		text = InaudibleText
	}
	s.InsertOrUpdate(itemID, RoleUser, text, previousItemID)
}

// InsertFunctionCall inserts a placeholder for an in-flight function call.
// The call ID is carried on the message for later correlation.
func (s *Store) InsertFunctionCall(itemID, callID, previousItemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg := s.find(itemID); msg != nil {
		msg.Role = RoleFunction
		msg.Text = FunctionPendingText
		msg.CallID = callID
		return
	}

	s.insert(&Message{
		ItemID:    itemID,
		Role:      RoleFunction,
		Text:      FunctionPendingText,
		CreatedAt: s.now(),
		CallID:    callID,
	}, previousItemID)
}

// CompleteFunctionCall resolves a function placeholder with the success
// sentinel. It correlates by call ID first, falls back to the most recent
// pending placeholder, and inserts a fresh function message when neither is
// found. Exactly one message ends up carrying the result.
func (s *Store) CompleteFunctionCall(callID, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if callID != "" {
		for i := len(s.live) - 1; i >= 0; i-- {
			if s.live[i].Role == RoleFunction && s.live[i].CallID == callID {
				s.live[i].Text = FunctionSuccessText
				return
			}
		}
	}

	// Legacy fallback: the placeholder may predate call ID correlation.
	for i := len(s.live) - 1; i >= 0; i-- {
		if s.live[i].Role == RoleFunction && s.live[i].Text == FunctionPendingText {
			s.live[i].Text = FunctionSuccessText
			s.live[i].CallID = callID
			return
		}
	}

	s.live = append(s.live, &Message{
		ItemID:    itemID,
		Role:      RoleFunction,
		Text:      FunctionSuccessText,
		CreatedAt: s.now(),
		CallID:    callID,
	})
}

// Archive moves every live message to the archived set, marking it Old while
// preserving relative order. It returns the number of messages archived.
func (s *Store) Archive() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.live)
	for _, msg := range s.live {
		msg.Old = true
		s.archived = append(s.archived, msg)
	}
	s.live = nil
	return n
}

// Messages returns the display transcript: archived messages first, then the
// live set in link order. The returned slice holds copies.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, 0, len(s.archived)+len(s.live))
	for _, msg := range s.archived {
		out = append(out, *msg)
	}
	for _, msg := range s.live {
		out = append(out, *msg)
	}
	return out
}

// Live returns copies of the live messages in display order.
func (s *Store) Live() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, 0, len(s.live))
	for _, msg := range s.live {
		out = append(out, *msg)
	}
	return out
}

// Len returns the number of live messages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// find returns the live message with the given non-empty itemID, or nil.
func (s *Store) find(itemID string) *Message {
	if itemID == "" {
		return nil
	}
	for _, msg := range s.live {
		if msg.ItemID == itemID {
			return msg
		}
	}
	return nil
}

// insert places msg according to its previous-item link. Callers hold the
// lock.
func (s *Store) insert(msg *Message, previousItemID string) {
	if previousItemID == "" {
		s.live = append([]*Message{msg}, s.live...)
		return
	}

	for i, m := range s.live {
		if m.ItemID == previousItemID {
			s.live = append(s.live, nil)
			copy(s.live[i+2:], s.live[i+1:])
			s.live[i+1] = msg
			return
		}
	}

	// Unknown predecessor: append at the tail.
	s.live = append(s.live, msg)
}
