package realtime

// Voices available for audio output.
const (
	VoiceAlloy   = "alloy"
	VoiceAsh     = "ash"
	VoiceCoral   = "coral"
	VoiceEcho    = "echo"
	VoiceFable   = "fable"
	VoiceOnyx    = "onyx"
	VoiceNova    = "nova"
	VoiceSage    = "sage"
	VoiceShimmer = "shimmer"
)

// Voices lists every known voice, in dropdown order.
var Voices = []string{
	VoiceAlloy,
	VoiceAsh,
	VoiceCoral,
	VoiceEcho,
	VoiceFable,
	VoiceOnyx,
	VoiceNova,
	VoiceSage,
	VoiceShimmer,
}

// DefaultModel is the realtime model the SDP exchange targets.
const DefaultModel = "gpt-4o-realtime-preview-2024-12-17"

// SessionConfig contains configuration for updating session parameters
// over the wire after connecting.
type SessionConfig struct {
	// Instructions is the system prompt.
	Instructions string `json:"instructions,omitzero"`

	// Voice is the voice ID for audio output.
	Voice string `json:"voice,omitzero"`

	// Tools defines the available functions for the model.
	Tools []Tool `json:"tools,omitzero"`

	// ToolChoice specifies how the model should use tools.
	// Can be a string ("auto", "none", "required") or an object.
	ToolChoice interface{} `json:"tool_choice,omitzero"`
}

// Tool defines a function tool available to the model.
type Tool struct {
	// Type is always "function".
	Type string `json:"type"`

	// Name is the function name.
	Name string `json:"name"`

	// Description describes what the function does.
	Description string `json:"description,omitzero"`

	// Parameters is the JSON Schema for the function parameters.
	Parameters map[string]interface{} `json:"parameters,omitzero"`
}
