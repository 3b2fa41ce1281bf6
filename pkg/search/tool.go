package search

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/jarod-johnson-23/audiobot/pkg/realtime"
)

// ToolName is the function name the agent calls to search.
const ToolName = "search_sections"

// args is the function call argument shape.
type args struct {
	Query string `json:"query" jsonschema:"the search query"`
}

// Tool returns the function tool definition for the search collaborator,
// suitable for a session.update event.
func Tool() (realtime.Tool, error) {
	schema, err := jsonschema.For[args](nil)
	if err != nil {
		return realtime.Tool{}, fmt.Errorf("failed to build argument schema: %w", err)
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return realtime.Tool{}, err
	}
	var params map[string]interface{}
	if err := json.Unmarshal(raw, &params); err != nil {
		return realtime.Tool{}, err
	}

	return realtime.Tool{
		Type:        "function",
		Name:        ToolName,
		Description: "Search the document sections for passages matching a query.",
		Parameters:  params,
	}, nil
}
