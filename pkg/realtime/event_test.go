package realtime

import (
	"encoding/base64"
	"testing"
)

func TestParseEventAudioDelta(t *testing.T) {
	audio := []byte{0x01, 0x02, 0x03, 0x04}
	encoded := base64.StdEncoding.EncodeToString(audio)
	raw := []byte(`{"type":"response.audio.delta","item_id":"item_1","delta":"` + encoded + `"}`)

	event, err := parseEvent(raw)
	if err != nil {
		t.Fatalf("parseEvent failed: %v", err)
	}
	if event.Type != EventTypeResponseAudioDelta {
		t.Errorf("Type = %q", event.Type)
	}
	if len(event.Audio) != len(audio) {
		t.Fatalf("Audio = %v, want %v", event.Audio, audio)
	}
	for i := range audio {
		if event.Audio[i] != audio[i] {
			t.Errorf("Audio[%d] = %d, want %d", i, event.Audio[i], audio[i])
		}
	}
}

func TestParseEventTextDeltaKeepsDelta(t *testing.T) {
	raw := []byte(`{"type":"response.text.delta","item_id":"item_1","delta":"hel"}`)

	event, err := parseEvent(raw)
	if err != nil {
		t.Fatalf("parseEvent failed: %v", err)
	}
	if event.Delta != "hel" || len(event.Audio) != 0 {
		t.Errorf("Delta = %q, Audio = %v", event.Delta, event.Audio)
	}
}

func TestParseEventItemCreated(t *testing.T) {
	raw := []byte(`{
		"type": "conversation.item.created",
		"previous_item_id": "item_0",
		"item": {
			"id": "item_1",
			"type": "message",
			"role": "assistant",
			"content": [{"type": "audio", "transcript": "hi there"}]
		}
	}`)

	event, err := parseEvent(raw)
	if err != nil {
		t.Fatalf("parseEvent failed: %v", err)
	}
	if event.PreviousItemID != "item_0" {
		t.Errorf("PreviousItemID = %q", event.PreviousItemID)
	}
	if event.Item == nil || event.Item.ID != "item_1" {
		t.Fatalf("Item = %+v", event.Item)
	}
	if got := event.Item.Text(); got != "hi there" {
		t.Errorf("Item.Text() = %q", got)
	}
}

func TestItemTextPrefersTranscript(t *testing.T) {
	tests := []struct {
		name string
		item ConversationItem
		want string
	}{
		{"transcript", ConversationItem{Content: []ContentPart{{Transcript: "spoken", Text: "typed"}}}, "spoken"},
		{"text only", ConversationItem{Content: []ContentPart{{Text: "typed"}}}, "typed"},
		{"no content", ConversationItem{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseEventInvalidJSON(t *testing.T) {
	if _, err := parseEvent([]byte("{not json")); err == nil {
		t.Fatal("expected a parse error")
	}
}
