package realtime

import "encoding/base64"

// Client event types (sent from client to server).
const (
	EventTypeSessionUpdate          = "session.update"
	EventTypeConversationItemCreate = "conversation.item.create"
	EventTypeResponseCreate         = "response.create"
	EventTypeResponseCancel         = "response.cancel"
)

// Server event types (sent from server to client).
const (
	// Error event
	EventTypeError = "error"

	// Session events
	EventTypeSessionCreated = "session.created"
	EventTypeSessionUpdated = "session.updated"

	// Conversation events
	EventTypeConversationItemCreated                          = "conversation.item.created"
	EventTypeConversationItemInputAudioTranscriptionCompleted = "conversation.item.input_audio_transcription.completed"
	EventTypeConversationItemInputAudioTranscriptionFailed    = "conversation.item.input_audio_transcription.failed"

	// Response events
	EventTypeResponseCreated = "response.created"
	EventTypeResponseDone    = "response.done"

	// Response text events
	EventTypeResponseTextDelta = "response.text.delta"
	EventTypeResponseTextDone  = "response.text.done"

	// Response audio events
	EventTypeResponseAudioDelta = "response.audio.delta"
	EventTypeResponseAudioDone  = "response.audio.done"

	// Response audio transcript events
	EventTypeResponseAudioTranscriptDelta = "response.audio_transcript.delta"
	EventTypeResponseAudioTranscriptDone  = "response.audio_transcript.done"

	// Response function call events
	EventTypeResponseFunctionCallArgumentsDelta = "response.function_call_arguments.delta"
	EventTypeResponseFunctionCallArgumentsDone  = "response.function_call_arguments.done"

	// Rate limits event
	EventTypeRateLimitsUpdated = "rate_limits.updated"
)

// ServerEvent represents a server event received over the data channel.
type ServerEvent struct {
	// Type is the event type discriminator.
	Type string `json:"type"`

	// EventID is the unique identifier for this event.
	EventID string `json:"event_id,omitzero"`

	// Session contains session information (for session.created, session.updated).
	Session *SessionResource `json:"session,omitzero"`

	// Item contains the conversation item (for conversation.item.* events).
	Item *ConversationItem `json:"item,omitzero"`

	// PreviousItemID is the display predecessor of the item, if any.
	PreviousItemID string `json:"previous_item_id,omitzero"`

	// ItemID is the ID of the item (for delta and transcription events).
	ItemID string `json:"item_id,omitzero"`

	// Transcript is the transcription text (for input_audio_transcription
	// and audio_transcript events).
	Transcript string `json:"transcript,omitzero"`

	// Delta contains incremental text or arguments. For response.audio.delta
	// it carries base64-encoded audio instead; see Audio.
	Delta string `json:"delta,omitzero"`

	// Audio contains decoded audio bytes, populated after parsing a
	// response.audio.delta event.
	Audio []byte `json:"-"`

	// CallID is the function call ID.
	CallID string `json:"call_id,omitzero"`

	// Name is the function name.
	Name string `json:"name,omitzero"`

	// Arguments is the complete function arguments (for the done event).
	Arguments string `json:"arguments,omitzero"`

	// Err contains error information for error events.
	Err *EventError `json:"error,omitzero"`

	// Raw contains the original JSON message.
	Raw []byte `json:"-"`
}

// decodeAudio populates Audio from the base64 payload carried in Delta.
// The wire protocol reuses the "delta" field for audio chunks.
func (e *ServerEvent) decodeAudio() {
	if e.Type != EventTypeResponseAudioDelta || e.Delta == "" {
		return
	}
	if decoded, err := base64.StdEncoding.DecodeString(e.Delta); err == nil {
		e.Audio = decoded
	}
}

// SessionResource describes the session as reported by the server.
type SessionResource struct {
	ID           string `json:"id,omitzero"`
	Object       string `json:"object,omitzero"`
	Model        string `json:"model,omitzero"`
	ExpiresAt    int64  `json:"expires_at,omitzero"`
	Instructions string `json:"instructions,omitzero"`
	Voice        string `json:"voice,omitzero"`
}

// ConversationItem represents an item in the conversation.
type ConversationItem struct {
	ID        string        `json:"id,omitzero"`
	Object    string        `json:"object,omitzero"`
	Type      string        `json:"type,omitzero"` // "message", "function_call", "function_call_output"
	Status    string        `json:"status,omitzero"`
	Role      string        `json:"role,omitzero"` // "user", "assistant", "system"
	Content   []ContentPart `json:"content,omitzero"`
	CallID    string        `json:"call_id,omitzero"`   // for function_call, function_call_output
	Name      string        `json:"name,omitzero"`      // for function_call
	Arguments string        `json:"arguments,omitzero"` // for function_call
	Output    string        `json:"output,omitzero"`    // for function_call_output
}

// Text returns the display text of the item's first content part.
// Audio parts carry their text in the transcript field.
func (item *ConversationItem) Text() string {
	if len(item.Content) == 0 {
		return ""
	}
	c0 := item.Content[0]
	if c0.Transcript != "" {
		return c0.Transcript
	}
	return c0.Text
}

// ContentPart represents a part of message content.
type ContentPart struct {
	Type       string `json:"type,omitzero"` // "input_text", "input_audio", "text", "audio"
	Text       string `json:"text,omitzero"`
	Audio      string `json:"audio,omitzero"`      // base64 encoded
	Transcript string `json:"transcript,omitzero"` // for audio parts
}
