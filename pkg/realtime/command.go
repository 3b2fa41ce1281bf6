package realtime

import "github.com/google/uuid"

// FunctionErrorOutput is the output payload sent when the search collaborator
// fails. The agent reads it back to the user verbatim.
const FunctionErrorOutput = "AN ERROR OCCURED, UNABLE TO SEARCH"

// generateEventID generates a unique client event ID.
func generateEventID() string {
	return "evt_" + uuid.New().String()[:12]
}

// UserMessageEvent builds a conversation.item.create event carrying a user
// text message.
func UserMessageEvent(text string) map[string]interface{} {
	return map[string]interface{}{
		"event_id": generateEventID(),
		"type":     EventTypeConversationItemCreate,
		"item": map[string]interface{}{
			"type": "message",
			"role": "user",
			"content": []map[string]interface{}{
				{
					"type": "input_text",
					"text": text,
				},
			},
		},
	}
}

// ResponseCreateEvent builds a response.create event, asking the agent to
// generate a response to the conversation so far.
func ResponseCreateEvent() map[string]interface{} {
	return map[string]interface{}{
		"event_id": generateEventID(),
		"type":     EventTypeResponseCreate,
	}
}

// FunctionOutputEvent builds a conversation.item.create event carrying the
// result of a function call.
func FunctionOutputEvent(callID, output string) map[string]interface{} {
	return map[string]interface{}{
		"event_id": generateEventID(),
		"type":     EventTypeConversationItemCreate,
		"item": map[string]interface{}{
			"type":    "function_call_output",
			"call_id": callID,
			"output":  output,
		},
	}
}

// FunctionErrorEvent builds a function call output reporting that the call
// could not be completed.
func FunctionErrorEvent(callID string) map[string]interface{} {
	return FunctionOutputEvent(callID, FunctionErrorOutput)
}

// SessionUpdateEvent builds a session.update event.
func SessionUpdateEvent(config *SessionConfig) map[string]interface{} {
	return map[string]interface{}{
		"event_id": generateEventID(),
		"type":     EventTypeSessionUpdate,
		"session":  config,
	}
}
